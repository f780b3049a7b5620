package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voicepanel/panel-audio-service/internal/capture"
	"github.com/voicepanel/panel-audio-service/internal/config"
	"github.com/voicepanel/panel-audio-service/internal/metrics"
	"github.com/voicepanel/panel-audio-service/internal/panel"
	"github.com/voicepanel/panel-audio-service/internal/server"
	"github.com/voicepanel/panel-audio-service/internal/session"
	"github.com/voicepanel/panel-audio-service/internal/speech"
	"github.com/voicepanel/panel-audio-service/internal/store"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "panel-audio-service"
	serviceVersion    = "1.0.0"

	// Environment variable consulted when the config file carries no key
	apiKeyEnvVar = "DEEPGRAM_API_KEY"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load optional .env file before reading the environment
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The environment supplies the API key when the config file omits it.
	// The panel can still replace it at runtime.
	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv(apiKeyEnvVar)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary (without sensitive data)
	logger.Info("Configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("address", cfg.Server.Address),
		slog.String("speech_base_url", cfg.Speech.BaseURL),
		slog.String("default_model", cfg.Speech.DefaultModel),
		slog.String("default_voice", cfg.Speech.DefaultVoice),
		slog.String("recorder_command", cfg.Capture.RecorderCommand),
		slog.Int("default_sample_rate", cfg.Capture.DefaultSampleRate),
		slog.Bool("api_key_set", cfg.Speech.APIKey != ""),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Initialize recording store and capture pipeline
	recordings := store.New()
	source := capture.NewRecorderSource(cfg.Capture.RecorderCommand)
	captureMgr := capture.NewManager(source, recordings, logger)
	logger.Info("Capture pipeline initialized",
		slog.String("recorder_command", cfg.Capture.RecorderCommand),
	)

	// Initialize speech provider client
	speechClient, err := speech.NewClient(speech.Config{
		BaseURL:      cfg.Speech.BaseURL,
		DefaultModel: cfg.Speech.DefaultModel,
		TokenTTL:     cfg.Speech.GetTokenTTLDuration(),
		TokenScopes:  cfg.Speech.TokenScopes,
		Timeout:      cfg.Speech.GetTimeoutDuration(),
	}, logger)
	if err != nil {
		logger.Error("Failed to create speech client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Speech client initialized",
		slog.String("base_url", cfg.Speech.BaseURL),
	)

	// Initialize session and panel command handler
	sess := session.New(session.Config{
		DefaultVoice:      cfg.Speech.DefaultVoice,
		DefaultSampleRate: cfg.Capture.DefaultSampleRate,
		APIKey:            cfg.Speech.APIKey,
	}, recordings, captureMgr, speechClient, logger, appMetrics)
	panelHandler := panel.NewHandler(sess, logger, appMetrics)

	// Initialize and start HTTP server
	httpServer := server.NewHTTPServer(cfg, logger, sess, panelHandler, appMetrics)
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("listen_address", fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Finalize an in-flight capture so the recorder process does not leak
	if sess.Recording() {
		if _, err := sess.StopRecording(); err != nil {
			logger.Error("Error stopping active recording", slog.String("error", err.Error()))
		}
	}

	// Log final store statistics
	stats := sess.StoreStats()
	logger.Info("Final store statistics",
		slog.Int("recordings", stats.Recordings),
		slog.Int64("total_bytes", stats.TotalBytes),
		slog.Float64("total_seconds", stats.TotalSeconds),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
