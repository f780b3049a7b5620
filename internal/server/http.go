package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voicepanel/panel-audio-service/internal/audio"
	"github.com/voicepanel/panel-audio-service/internal/config"
	"github.com/voicepanel/panel-audio-service/internal/metrics"
	"github.com/voicepanel/panel-audio-service/internal/panel"
	"github.com/voicepanel/panel-audio-service/internal/session"
)

// HTTPServer serves the panel WebSocket endpoint and the monitoring API
type HTTPServer struct {
	server  *http.Server
	logger  *slog.Logger
	config  *config.Config
	session *session.Session
	handler *panel.Handler
	metrics *metrics.Metrics

	// Server state
	startTime time.Time
	mu        sync.RWMutex
}

// NewHTTPServer creates a new HTTP server over the given components
func NewHTTPServer(cfg *config.Config, logger *slog.Logger,
	sess *session.Session, panelHandler *panel.Handler, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    cfg,
		session:   sess,
		handler:   panelHandler,
		metrics:   m,
		startTime: time.Now(),
	}

	// Create HTTP server with routes
	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Panel WebSocket endpoint. The upgrade hijacks the connection, so
	// the metrics wrapper cannot capture a status code here.
	mux.HandleFunc("/panel", h.handlePanel)

	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Recording listing endpoint
	mux.HandleFunc("/recordings", h.withMetrics("/recordings", h.handleRecordings))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Wrap the response writer to capture the status code
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)
	storeStats := h.session.StoreStats()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "panel-audio-service",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"capture": map[string]interface{}{
				"status":    "running",
				"recording": h.session.Recording(),
			},
			"store": map[string]interface{}{
				"status":     "running",
				"recordings": storeStats.Recordings,
			},
			"speech": map[string]interface{}{
				"status":      "running",
				"api_key_set": h.session.HasAPIKey(),
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Return sanitized configuration (remove sensitive data)
	sanitizedConfig := map[string]interface{}{
		"server": map[string]interface{}{
			"port":    h.config.Server.Port,
			"address": h.config.Server.Address,
		},
		"speech": map[string]interface{}{
			"base_url":      h.config.Speech.BaseURL,
			"default_model": h.config.Speech.DefaultModel,
			"default_voice": h.config.Speech.DefaultVoice,
			"token_ttl":     h.config.Speech.TokenTTL,
			"token_scopes":  h.config.Speech.TokenScopes,
			"timeout":       h.config.Speech.Timeout,
			// Note: API key is intentionally omitted for security
		},
		"capture": map[string]interface{}{
			"recorder_command":    h.config.Capture.RecorderCommand,
			"default_sample_rate": h.config.Capture.DefaultSampleRate,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// recordingInfo is one entry of the /recordings response
type recordingInfo struct {
	ID        string         `json:"id"`
	Duration  float64        `json:"duration_seconds"`
	Bytes     int            `json:"bytes"`
	CreatedAt time.Time      `json:"created_at"`
	Format    *audio.WAVInfo `json:"format,omitempty"` // absent for empty captures
}

// handleRecordings implements the /recordings endpoint
func (h *HTTPServer) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recs := h.session.ListRecordings()
	infos := make([]recordingInfo, 0, len(recs))

	for _, rec := range recs {
		info := recordingInfo{
			ID:        rec.ID,
			Duration:  rec.Duration,
			Bytes:     len(rec.Data),
			CreatedAt: rec.CreatedAt,
		}

		if len(rec.Data) > 0 {
			format, err := audio.GetWAVInfo(rec.Data)
			if err != nil {
				h.logger.Warn("Failed to inspect stored recording",
					slog.String("recording_id", rec.ID),
					slog.String("error", err.Error()),
				)
			} else {
				info.Format = format
			}
		}

		infos = append(infos, info)
	}

	response := map[string]interface{}{
		"total_recordings": len(infos),
		"timestamp":        time.Now().UTC(),
		"recordings":       infos,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	storeStats := h.session.StoreStats()
	uptime := time.Since(h.startTime)

	stats := map[string]interface{}{
		"uptime":    uptime.String(),
		"timestamp": time.Now().UTC(),
		"store": map[string]interface{}{
			"recordings":    storeStats.Recordings,
			"total_bytes":   storeStats.TotalBytes,
			"total_seconds": storeStats.TotalSeconds,
		},
		"capture": map[string]interface{}{
			"recording": h.session.Recording(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Panel Audio Service",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"GET /":           "API documentation",
			"GET /panel":      "Panel WebSocket endpoint (JSON commands/events)",
			"GET /health":     "Service health check",
			"GET /config":     "Get service configuration",
			"GET /recordings": "List stored recordings",
			"GET /stats":      "Get recording store statistics",
			"GET /metrics":    "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
