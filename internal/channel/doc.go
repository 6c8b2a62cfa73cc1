// Package channel implements the per-channel subscription state machine:
// three disjoint sets of interned symbols (active, pending_subscribe,
// pending_unsubscribe) indexed both by symbol and by the request id that
// put them there, with idempotent registration and ACK/rejection
// processing matching the exchange's actual confirmation semantics.
package channel
