// Package metrics provides Prometheus instrumentation for the panel audio service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the panel audio service
type Metrics struct {
	// Recording metrics
	RecordingsStarted prometheus.Counter
	RecordingsStopped prometheus.Counter
	RecordingsDeleted prometheus.Counter
	RecordingActive   prometheus.Gauge
	RecordingDuration prometheus.Histogram
	StoredRecordings  prometheus.Gauge
	StoredBytes       prometheus.Gauge

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionDuration  prometheus.Histogram
	TranscriptionAudioSize prometheus.Histogram

	// Synthesis metrics
	SynthesisRequests  prometheus.Counter
	SynthesisSuccesses prometheus.Counter
	SynthesisFailures  prometheus.Counter
	SynthesisDuration  prometheus.Histogram

	// Token grant metrics
	TokenGrants       prometheus.Counter
	TokenGrantErrors  prometheus.Counter

	// Panel command metrics
	PanelCommands *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Recording metrics
		RecordingsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_recordings_started_total",
			Help: "Total number of capture sessions started",
		}),
		RecordingsStopped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_recordings_stopped_total",
			Help: "Total number of capture sessions stopped and stored",
		}),
		RecordingsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_recordings_deleted_total",
			Help: "Total number of recordings deleted from the store",
		}),
		RecordingActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "panel_recording_active",
			Help: "Whether a capture session is currently in progress (0 or 1)",
		}),
		RecordingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_recording_duration_seconds",
			Help:    "Duration of stored recordings in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8.5 minutes
		}),
		StoredRecordings: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "panel_stored_recordings",
			Help: "Current number of recordings held in the in-memory store",
		}),
		StoredBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "panel_stored_bytes",
			Help: "Total bytes of audio held in the in-memory store",
		}),

		// Transcription metrics
		TranscriptionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_transcription_requests_total",
			Help: "Total number of transcription requests sent",
		}),
		TranscriptionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_transcription_successes_total",
			Help: "Total number of successful transcriptions",
		}),
		TranscriptionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_transcription_failures_total",
			Help: "Total number of failed transcriptions",
		}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_transcription_duration_seconds",
			Help:    "Wall time of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		}),
		TranscriptionAudioSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_transcription_audio_bytes",
			Help:    "Size of uploaded audio in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),

		// Synthesis metrics
		SynthesisRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_synthesis_requests_total",
			Help: "Total number of speech synthesis requests sent",
		}),
		SynthesisSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_synthesis_successes_total",
			Help: "Total number of successful syntheses",
		}),
		SynthesisFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_synthesis_failures_total",
			Help: "Total number of failed syntheses",
		}),
		SynthesisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_synthesis_duration_seconds",
			Help:    "Wall time of synthesis requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),

		// Token grant metrics
		TokenGrants: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_token_grants_total",
			Help: "Total number of short-lived token grants requested",
		}),
		TokenGrantErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panel_token_grant_errors_total",
			Help: "Total number of failed short-lived token grants",
		}),

		// Panel command metrics
		PanelCommands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_commands_total",
			Help: "Total number of panel commands processed by command and outcome",
		}, []string{"command", "outcome"}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_http_requests_total",
			Help: "Total number of HTTP requests by method, endpoint and status code",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "panel_http_request_duration_seconds",
			Help:    "HTTP request duration by method and endpoint",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_http_errors_total",
			Help: "Total number of HTTP error responses by method, endpoint and type",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordHTTPRequest records metrics for a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordHTTPError records an HTTP error response
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}

// RecordPanelCommand records a processed panel command and its outcome
func (m *Metrics) RecordPanelCommand(command, outcome string) {
	m.PanelCommands.WithLabelValues(command, outcome).Inc()
}

// RecordStoreStats updates the store size gauges
func (m *Metrics) RecordStoreStats(recordings int, totalBytes int64) {
	m.StoredRecordings.Set(float64(recordings))
	m.StoredBytes.Set(float64(totalBytes))
}
