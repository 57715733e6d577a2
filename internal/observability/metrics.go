package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tcpevents"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	receiverConnections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "connections_total",
			Help:      "Connections accepted by the receiver.",
		},
		[]string{"node"},
	)
	receiverActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "connections_active",
			Help:      "Connections currently open on the receiver.",
		},
		[]string{"node"},
	)
	receiverAuth = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "handshakes_total",
			Help:      "Handshake outcomes by result.",
		},
		[]string{"node", "result"},
	)
	receiverCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "commands_total",
			Help:      "Ready-state commands by kind and peer kind.",
		},
		[]string{"node", "kind", "peer"},
	)
	receiverEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "events_total",
			Help:      "Events dispatched to the host by mode.",
		},
		[]string{"node", "mode"},
	)
	receiverData = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "data_stored_total",
			Help:      "Named data values stored.",
		},
		[]string{"node"},
	)
	clientSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sender",
			Name:      "requests_total",
			Help:      "Outbound requests by operation, peer kind and outcome.",
		},
		[]string{"op", "peer", "success"},
	)
	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sender",
			Name:      "request_duration_seconds",
			Help:      "Outbound request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			receiverConnections, receiverActive, receiverAuth,
			receiverCommands, receiverEvents, receiverData,
			clientSends, clientDuration,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordConnectionOpened(node string) {
	RegisterMetrics()
	receiverConnections.WithLabelValues(node).Inc()
	receiverActive.WithLabelValues(node).Inc()
}

func RecordConnectionClosed(node string) {
	RegisterMetrics()
	receiverActive.WithLabelValues(node).Dec()
}

// RecordHandshake counts one handshake outcome ("full", "legacy", "rejected").
func RecordHandshake(node, result string) {
	RegisterMetrics()
	receiverAuth.WithLabelValues(node, result).Inc()
}

func RecordCommand(node, kind, peer string) {
	RegisterMetrics()
	receiverCommands.WithLabelValues(node, kind, peer).Inc()
}

// RecordEvent counts one dispatch ("single", "start", "end").
func RecordEvent(node, mode string) {
	RegisterMetrics()
	receiverEvents.WithLabelValues(node, mode).Inc()
}

func RecordDataStored(node string) {
	RegisterMetrics()
	receiverData.WithLabelValues(node).Inc()
}

func RecordClientSend(op, peer string, duration time.Duration, success bool) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	clientSends.WithLabelValues(op, peer, successLabel).Inc()
	clientDuration.WithLabelValues(op, successLabel).Observe(duration.Seconds())
}
