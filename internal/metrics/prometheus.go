// Package metrics defines the Prometheus metrics exposed by the ADTS stream
// service and helpers for recording them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the ADTS stream service
type Metrics struct {
	// Ingest metrics
	BytesReceived prometheus.Counter
	FramesParsed  prometheus.Counter
	ParseErrors   prometheus.Counter
	ConfigChanges prometheus.Counter
	FrameSize     prometheus.Histogram

	// Stream metrics
	ActiveStreams    prometheus.Gauge
	StreamsCreated   prometheus.Counter
	StreamsDestroyed prometheus.Counter
	StreamDuration   prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Ingest metrics
		BytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adts_bytes_received_total",
			Help: "Total number of stream bytes received",
		}),
		FramesParsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adts_frames_parsed_total",
			Help: "Total number of ADTS frames successfully parsed",
		}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adts_parse_errors_total",
			Help: "Total number of frame parsing errors",
		}),
		ConfigChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adts_config_changes_total",
			Help: "Total number of in-band stream configuration changes",
		}),
		FrameSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adts_frame_size_bytes",
			Help:    "Size of parsed ADTS frames in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10), // 16B to the 8191B frame maximum
		}),

		// Stream metrics
		ActiveStreams: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "adts_active_streams",
			Help: "Current number of active ingest streams",
		}),
		StreamsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adts_streams_created_total",
			Help: "Total number of streams created",
		}),
		StreamsDestroyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adts_streams_destroyed_total",
			Help: "Total number of streams destroyed",
		}),
		StreamDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adts_stream_duration_seconds",
			Help:    "Duration of ingest streams in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17 minutes
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "adts_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adts_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "adts_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordBytesReceived adds to the bytes received counter
func (m *Metrics) RecordBytesReceived(n int) {
	m.BytesReceived.Add(float64(n))
}

// RecordFrameParsed records one successfully parsed frame and its size
func (m *Metrics) RecordFrameParsed(sizeBytes int) {
	m.FramesParsed.Inc()
	m.FrameSize.Observe(float64(sizeBytes))
}

// RecordParseError increments the parse errors counter
func (m *Metrics) RecordParseError() {
	m.ParseErrors.Inc()
}

// RecordConfigChange increments the configuration changes counter
func (m *Metrics) RecordConfigChange() {
	m.ConfigChanges.Inc()
}

// SetActiveStreams sets the current number of active streams
func (m *Metrics) SetActiveStreams(count int) {
	m.ActiveStreams.Set(float64(count))
}

// RecordStreamCreated increments the streams created counter
func (m *Metrics) RecordStreamCreated() {
	m.StreamsCreated.Inc()
}

// RecordStreamDestroyed increments the streams destroyed counter and records duration
func (m *Metrics) RecordStreamDestroyed(durationSeconds float64) {
	m.StreamsDestroyed.Inc()
	m.StreamDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
