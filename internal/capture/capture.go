package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voicepanel/panel-audio-service/internal/audio"
	"github.com/voicepanel/panel-audio-service/internal/store"
)

var (
	// ErrAlreadyRecording is returned by Start while a session is active.
	ErrAlreadyRecording = errors.New("a recording is already in progress")

	// ErrNotRecording is returned by Stop when no session is active.
	ErrNotRecording = errors.New("no recording is in progress")

	// ErrDeviceUnavailable is returned when the platform audio input
	// cannot be opened, typically because the system recorder binary is
	// not installed.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
)

// session holds the state of the single in-progress recording
type session struct {
	chunks     [][]byte
	startTime  time.Time
	sampleRate int
	done       chan struct{} // closed when the drain goroutine exits
}

// Manager manages the lifecycle of a single active recording.
// At most one capture session exists at a time; Start fails with
// ErrAlreadyRecording while one is active.
type Manager struct {
	source Source
	store  *store.Store
	logger *slog.Logger

	active *session
	mu     sync.Mutex
}

// NewManager creates a capture manager using the given input source
func NewManager(source Source, recordings *store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		source: source,
		store:  recordings,
		logger: logger,
	}
}

// Start opens the audio input at the given sample rate and begins
// accumulating chunks in arrival order.
func (m *Manager) Start(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return ErrAlreadyRecording
	}

	chunks, err := m.source.Start(sampleRate)
	if err != nil {
		return err
	}

	s := &session{
		startTime:  time.Now(),
		sampleRate: sampleRate,
		done:       make(chan struct{}),
	}
	m.active = s

	// Single-writer accumulation: only this goroutine appends chunks,
	// and Stop only reads them after the channel is drained.
	go func() {
		defer close(s.done)
		for chunk := range chunks {
			s.chunks = append(s.chunks, chunk)
		}
	}()

	m.logger.Info("Recording started",
		slog.Int("sample_rate", sampleRate),
	)

	return nil
}

// Stop halts the input, concatenates accumulated chunks in arrival order,
// wraps them into a WAV container, and stores the resulting recording.
func (m *Manager) Stop() (*store.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNotRecording
	}

	s := m.active

	if err := m.source.Stop(); err != nil {
		return nil, fmt.Errorf("failed to stop audio input: %w", err)
	}

	// Wait for the drain goroutine so no trailing chunks are dropped
	<-s.done

	duration := time.Since(s.startTime).Seconds()

	var pcm []byte
	for _, chunk := range s.chunks {
		pcm = append(pcm, chunk...)
	}

	// Killing the recorder can cut the S16 stream mid-sample. Trim the
	// dangling byte instead of failing the whole capture.
	if len(pcm)%2 != 0 {
		pcm = pcm[:len(pcm)-1]
	}

	// An empty capture still becomes a recording; transcription rejects
	// it later with an empty-audio error.
	var data []byte
	if len(pcm) > 0 {
		encoded, err := audio.EncodeWAV(pcm, s.sampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to encode recording: %w", err)
		}
		data = encoded
	}

	rec := &store.Recording{
		ID:         m.store.NextID(),
		Data:       data,
		Duration:   duration,
		SampleRate: s.sampleRate,
		CreatedAt:  time.Now(),
	}

	if err := m.store.Put(rec); err != nil {
		return nil, fmt.Errorf("failed to store recording: %w", err)
	}

	// The session stays active until the recording is safely stored, so
	// a failed stop never drops the accumulated chunks
	m.active = nil

	m.logger.Info("Recording stopped",
		slog.String("recording_id", rec.ID),
		slog.Float64("duration_seconds", rec.Duration),
		slog.Int("bytes", len(rec.Data)),
	)

	return rec, nil
}

// Active reports whether a capture session is in progress
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}
