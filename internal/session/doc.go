// Package session is the orchestrator: it owns one Connection, one Channel
// Manager and one Replay Database per data channel, the req_id generator,
// the level-triggered fact slots (pong, status, rejection), and the
// callback dispatcher. Poll drains the connection's signals and messages
// and applies the ACK/data/rejection routing rules; a transport epoch
// bump triggers exactly one replay of every acknowledged subscription.
package session
