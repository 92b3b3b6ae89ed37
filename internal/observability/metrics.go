package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "himd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	decodedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "decoder",
			Name:      "bytes_total",
			Help:      "Bus bytes fed to the decoder.",
		},
	)
	decodedFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "decoder",
			Name:      "frames_total",
			Help:      "Data frames completed, by checksum result.",
		},
		[]string{"result"},
	)
	annotations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "decoder",
			Name:      "annotations_total",
			Help:      "Annotations produced, by category.",
		},
		[]string{"category"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "decoder",
			Name:      "protocol_errors_total",
			Help:      "Protocol errors reported, by kind.",
		},
		[]string{"kind"},
	)
	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "events",
			Name:      "total",
			Help:      "Display events, by stage and type.",
		},
		[]string{"stage", "type"},
	)
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "transport",
			Name:      "deliveries_total",
			Help:      "Event deliveries, by transport and result.",
		},
		[]string{"transport", "result"},
	)
	deliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "himd",
			Subsystem: "transport",
			Name:      "delivery_duration_seconds",
			Help:      "Event delivery duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transport"},
	)
	sequenceGaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "himd",
			Subsystem: "receiver",
			Name:      "sequence_gaps_total",
			Help:      "Events missing between consecutive received sequence numbers.",
		},
		[]string{"source"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			decodedBytes, decodedFrames, annotations, protocolErrors,
			events, deliveries, deliveryDuration, sequenceGaps,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode adds a finished run's byte and frame totals.
func RecordDecode(bytes, frames, checksumErrors uint64) {
	RegisterMetrics()
	decodedBytes.Add(float64(bytes))
	if frames >= checksumErrors {
		decodedFrames.WithLabelValues("ok").Add(float64(frames - checksumErrors))
	}
	decodedFrames.WithLabelValues("checksum_error").Add(float64(checksumErrors))
}

func RecordAnnotation(category string) {
	RegisterMetrics()
	annotations.WithLabelValues(category).Inc()
}

func RecordProtocolError(kind string) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(kind).Inc()
}

// RecordEvent counts an event at stage ("decoded", "received", "applied").
func RecordEvent(stage, kind string) {
	RegisterMetrics()
	events.WithLabelValues(stage, kind).Inc()
}

func RecordDelivery(transport string, duration time.Duration, success bool) {
	RegisterMetrics()
	result := "ok"
	if !success {
		result = "error"
	}
	deliveries.WithLabelValues(transport, result).Inc()
	deliveryDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

func RecordSequenceGap(source string, missing uint64) {
	RegisterMetrics()
	sequenceGaps.WithLabelValues(source).Add(float64(missing))
}
