// Package wirekrakmetrics provides Prometheus instrumentation for the
// transport and session layers.
//
// Key metrics:
//   - Transport bytes/messages received and fragment reassembly cost
//   - Connection retry attempts, epoch, and liveness state
//   - Session ACKs, rejections, and replays
//
// Unlike a standalone service, a client library must not register into the
// global default registry — callers embed Wirekrak into their own process
// and own their own registry. Collectors are created against a
// caller-supplied *prometheus.Registry via New.
package wirekrakmetrics
