// Package ring provides the bounded single-producer/single-consumer hand-off
// used to move assembled WebSocket messages from the transport's receive
// goroutine to the session's poll loop, plus a last-value Slot for
// level-triggered facts (pong, status, rejection) read by the same poll loop.
package ring
