// Package transport owns a single WebSocket connection: one dial attempt
// per Open, a dedicated receive goroutine that reassembles server-framed
// fragments into logical messages and publishes them into a ring for the
// session to poll, and exactly-once close signaling regardless of whether
// the close originated from the caller, the server, or an I/O error.
package transport
