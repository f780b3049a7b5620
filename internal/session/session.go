package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/voicepanel/panel-audio-service/internal/capture"
	"github.com/voicepanel/panel-audio-service/internal/metrics"
	"github.com/voicepanel/panel-audio-service/internal/speech"
	"github.com/voicepanel/panel-audio-service/internal/store"
)

// wavContentType declares the container of captured audio on upload.
// The capture pipeline always produces mono WAV.
const wavContentType = "audio/wav"

// Session owns the credential state and wires panel operations to the
// recording store, the capture manager, and the speech client. One
// Session exists per process; its lifetime matches the panel's.
type Session struct {
	store   *store.Store
	capture *capture.Manager
	speech  *speech.Client
	logger  *slog.Logger
	metrics *metrics.Metrics

	defaultVoice      string
	defaultSampleRate int

	// Credential state, set by the panel at runtime
	apiKey             string
	useShortLivedToken bool
	credMu             sync.RWMutex
}

// Config contains session defaults
type Config struct {
	DefaultVoice      string
	DefaultSampleRate int
	APIKey            string // optional initial key from configuration
}

// New creates a session over the given components
func New(cfg Config, recordings *store.Store, captureMgr *capture.Manager,
	speechClient *speech.Client, logger *slog.Logger, m *metrics.Metrics) *Session {

	return &Session{
		store:             recordings,
		capture:           captureMgr,
		speech:            speechClient,
		logger:            logger,
		metrics:           m,
		defaultVoice:      cfg.DefaultVoice,
		defaultSampleRate: cfg.DefaultSampleRate,
		apiKey:            cfg.APIKey,
	}
}

// SetAPIKey replaces the stored API key
func (s *Session) SetAPIKey(key string) {
	s.credMu.Lock()
	defer s.credMu.Unlock()
	s.apiKey = key

	s.logger.Info("API key updated", slog.Bool("set", key != ""))
}

// SetUseShortLivedToken toggles short-lived token mode
func (s *Session) SetUseShortLivedToken(value bool) {
	s.credMu.Lock()
	defer s.credMu.Unlock()
	s.useShortLivedToken = value

	s.logger.Info("Short-lived token mode updated", slog.Bool("enabled", value))
}

// credentials returns the current credential state
func (s *Session) credentials() (string, bool) {
	s.credMu.RLock()
	defer s.credMu.RUnlock()
	return s.apiKey, s.useShortLivedToken
}

// HasAPIKey reports whether an API key has been set
func (s *Session) HasAPIKey() bool {
	key, _ := s.credentials()
	return key != ""
}

// StartRecording opens a capture session. A sample rate of zero selects
// the configured default. Recording requires an API key up front so a
// finished capture is never stranded without a way to transcribe it.
func (s *Session) StartRecording(sampleRate int) error {
	if !s.HasAPIKey() {
		return speech.ErrMissingCredential
	}

	if sampleRate == 0 {
		sampleRate = s.defaultSampleRate
	}

	if err := s.capture.Start(sampleRate); err != nil {
		return err
	}

	s.metrics.RecordingsStarted.Inc()
	s.metrics.RecordingActive.Set(1)

	return nil
}

// StopRecording finalizes the active capture into a stored recording
func (s *Session) StopRecording() (*store.Recording, error) {
	rec, err := s.capture.Stop()
	if err != nil {
		return nil, err
	}

	s.metrics.RecordingsStopped.Inc()
	s.metrics.RecordingActive.Set(0)
	s.metrics.RecordingDuration.Observe(rec.Duration)
	s.recordStoreStats()

	return rec, nil
}

// Transcribe looks up a recording and sends it for batch transcription
func (s *Session) Transcribe(ctx context.Context, recordingID string,
	opts speech.TranscriptionOptions) (*speech.TranscriptResult, error) {

	rec, err := s.store.Get(recordingID)
	if err != nil {
		return nil, err
	}

	apiKey, shortLived := s.credentials()

	s.metrics.TranscriptionRequests.Inc()
	s.metrics.TranscriptionAudioSize.Observe(float64(len(rec.Data)))
	if shortLived {
		s.metrics.TokenGrants.Inc()
	}

	startTime := time.Now()
	result, err := s.speech.Transcribe(ctx, apiKey, shortLived, rec.Data, wavContentType, opts)
	s.metrics.TranscriptionDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		s.metrics.TranscriptionFailures.Inc()
		s.recordAuthFailure(err)
		s.logger.Error("Transcription failed",
			slog.String("recording_id", recordingID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.metrics.TranscriptionSuccesses.Inc()
	s.logger.Info("Transcription completed",
		slog.String("recording_id", recordingID),
		slog.Int("transcript_length", len(result.Transcript)),
	)

	return result, nil
}

// Synthesize converts text to speech. An empty voice selects the
// configured default.
func (s *Session) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = s.defaultVoice
	}

	apiKey, shortLived := s.credentials()

	s.metrics.SynthesisRequests.Inc()
	if shortLived && apiKey != "" {
		s.metrics.TokenGrants.Inc()
	}

	startTime := time.Now()
	audio, err := s.speech.Synthesize(ctx, apiKey, shortLived, text, voice)
	s.metrics.SynthesisDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		s.metrics.SynthesisFailures.Inc()
		s.recordAuthFailure(err)
		s.logger.Error("Synthesis failed",
			slog.String("voice", voice),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.metrics.SynthesisSuccesses.Inc()

	return audio, nil
}

// DeleteRecording removes a recording from the store. Deleting an absent
// id is a no-op.
func (s *Session) DeleteRecording(id string) {
	s.store.Delete(id)
	s.metrics.RecordingsDeleted.Inc()
	s.recordStoreStats()

	s.logger.Info("Recording deleted", slog.String("recording_id", id))
}

// PlayRecording returns a stored recording for playback
func (s *Session) PlayRecording(id string) (*store.Recording, error) {
	return s.store.Get(id)
}

// Recording reports whether a capture session is in progress
func (s *Session) Recording() bool {
	return s.capture.Active()
}

// ListRecordings returns all stored recordings in creation order
func (s *Session) ListRecordings() []*store.Recording {
	return s.store.List()
}

// StoreStats returns current recording store statistics
func (s *Session) StoreStats() store.Stats {
	return s.store.GetStats()
}

func (s *Session) recordAuthFailure(err error) {
	var authErr *speech.AuthError
	if errors.As(err, &authErr) {
		s.metrics.TokenGrantErrors.Inc()
	}
}

func (s *Session) recordStoreStats() {
	stats := s.store.GetStats()
	s.metrics.RecordStoreStats(stats.Recordings, stats.TotalBytes)
}
