// Package replay implements the per-channel, req_id-keyed acknowledged-
// subscription store: the record of what the session has successfully
// asked the exchange for, replayed verbatim after a reconnect. This is the
// req_id-keyed design named in the requirements document as the one
// Session's tests assume, not the older per-vector design also present in
// the original implementation.
package replay
