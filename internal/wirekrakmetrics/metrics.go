package wirekrakmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector Wirekrak exposes. Construct once per
// Session and register it into the caller's registry via New.
type Metrics struct {
	BytesReceivedTotal     prometheus.Counter
	MessagesReceivedTotal  prometheus.Counter
	FragmentsTotal         prometheus.Counter
	AssemblyDuration       prometheus.Histogram
	RingDroppedTotal       prometheus.Counter

	RetryAttemptsTotal prometheus.Counter
	TransportEpoch     prometheus.Gauge
	LivenessWarnings   prometheus.Counter

	AcksTotal       *prometheus.CounterVec
	RejectionsTotal prometheus.Counter
	ReplaysTotal    prometheus.Counter
}

// New creates and registers Wirekrak's collectors into reg. namespace
// prefixes every metric name, letting a caller embed more than one
// Wirekrak session without name collisions (e.g. "wirekrak_trade",
// "wirekrak_book").
func New(reg *prometheus.Registry, namespace string) *Metrics {
	factory := prometheus.WrapRegistererWithPrefix(namespace+"_", reg)

	m := &Metrics{
		BytesReceivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transport_bytes_received_total",
			Help: "Total bytes received from the WebSocket connection.",
		}),
		MessagesReceivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transport_messages_received_total",
			Help: "Total reassembled WebSocket messages received.",
		}),
		FragmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transport_fragments_total",
			Help: "Total read operations consumed while reassembling messages.",
		}),
		AssemblyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transport_assembly_duration_seconds",
			Help:    "Time spent reassembling a single message from frames.",
			Buckets: prometheus.DefBuckets,
		}),
		RingDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transport_ring_dropped_total",
			Help: "Messages dropped because the consumer ring was full.",
		}),
		RetryAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connection_retry_attempts_total",
			Help: "Total reconnect attempts made by the connection.",
		}),
		TransportEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "connection_transport_epoch",
			Help: "Current transport epoch, incremented on every successful connect.",
		}),
		LivenessWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connection_liveness_warnings_total",
			Help: "Total times the liveness watchdog flagged a stale connection.",
		}),
		AcksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_acks_total",
			Help: "Total subscribe/unsubscribe ACKs processed, by outcome.",
		}, []string{"method", "outcome"}),
		RejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_rejections_total",
			Help: "Total rejection notices observed.",
		}),
		ReplaysTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_replays_total",
			Help: "Total replay-on-reconnect episodes executed.",
		}),
	}

	factory.MustRegister(
		m.BytesReceivedTotal,
		m.MessagesReceivedTotal,
		m.FragmentsTotal,
		m.AssemblyDuration,
		m.RingDroppedTotal,
		m.RetryAttemptsTotal,
		m.TransportEpoch,
		m.LivenessWarnings,
		m.AcksTotal,
		m.RejectionsTotal,
		m.ReplaysTotal,
	)

	return m
}
