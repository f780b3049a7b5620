package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/voicepanel/panel-audio-service/internal/capture"
	"github.com/voicepanel/panel-audio-service/internal/metrics"
	"github.com/voicepanel/panel-audio-service/internal/speech"
	"github.com/voicepanel/panel-audio-service/internal/store"
)

// Prometheus collectors register globally, so the test binary shares one set
var (
	testMetrics     *metrics.Metrics
	testMetricsOnce sync.Once
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics()
	})
	return testMetrics
}

// fakeSource is an in-memory capture source driven by the test
type fakeSource struct {
	ch chan []byte
}

func (f *fakeSource) Start(sampleRate int) (<-chan []byte, error) {
	f.ch = make(chan []byte, 16)
	return f.ch, nil
}

func (f *fakeSource) Stop() error {
	close(f.ch)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, baseURL string) (*Session, *fakeSource, *store.Store) {
	t.Helper()

	logger := testLogger()
	recordings := store.New()
	src := &fakeSource{}
	captureMgr := capture.NewManager(src, recordings, logger)

	speechClient, err := speech.NewClient(speech.Config{
		BaseURL:      baseURL,
		DefaultModel: "nova-3",
		TokenTTL:     time.Hour,
		TokenScopes:  []string{"usage:write"},
		Timeout:      5 * time.Second,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create speech client: %v", err)
	}

	sess := New(Config{
		DefaultVoice:      "aura-asteria-en",
		DefaultSampleRate: 16000,
	}, recordings, captureMgr, speechClient, logger, sharedMetrics())

	return sess, src, recordings
}

func TestStartRecordingRequiresAPIKey(t *testing.T) {
	sess, _, _ := newTestSession(t, "http://127.0.0.1:1")

	err := sess.StartRecording(16000)
	if !errors.Is(err, speech.ErrMissingCredential) {
		t.Errorf("Expected ErrMissingCredential, got %v", err)
	}
}

func TestStartStopRecording(t *testing.T) {
	sess, src, _ := newTestSession(t, "http://127.0.0.1:1")
	sess.SetAPIKey("my-api-key")

	if err := sess.StartRecording(0); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}

	if !sess.Recording() {
		t.Error("Expected session to report an active recording")
	}

	src.ch <- []byte("AA")
	src.ch <- []byte("BB")

	rec, err := sess.StopRecording()
	if err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}

	// Zero sample rate selects the configured default
	if rec.SampleRate != 16000 {
		t.Errorf("Expected default sample rate 16000, got %d", rec.SampleRate)
	}

	if sess.Recording() {
		t.Error("Expected session to be idle after stop")
	}
}

func TestStartRecordingConflict(t *testing.T) {
	sess, _, _ := newTestSession(t, "http://127.0.0.1:1")
	sess.SetAPIKey("my-api-key")

	if err := sess.StartRecording(16000); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}

	err := sess.StartRecording(8000)
	if !errors.Is(err, capture.ErrAlreadyRecording) {
		t.Errorf("Expected ErrAlreadyRecording, got %v", err)
	}

	if _, err := sess.StopRecording(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
}

func TestStopRecordingIdle(t *testing.T) {
	sess, _, _ := newTestSession(t, "http://127.0.0.1:1")

	_, err := sess.StopRecording()
	if !errors.Is(err, capture.ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording, got %v", err)
	}
}

func TestTranscribeUnknownRecording(t *testing.T) {
	sess, _, _ := newTestSession(t, "http://127.0.0.1:1")
	sess.SetAPIKey("my-api-key")

	_, err := sess.Transcribe(context.Background(), "rec-404", speech.TranscriptionOptions{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTranscribeEmptyRecording(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	sess, _, recordings := newTestSession(t, server.URL)
	sess.SetAPIKey("my-api-key")

	// Stopping with no delivered chunks produces an empty recording
	if err := sess.StartRecording(16000); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	rec, err := sess.StopRecording()
	if err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}

	if _, err := recordings.Get(rec.ID); err != nil {
		t.Fatalf("Empty recording not stored: %v", err)
	}

	_, err = sess.Transcribe(context.Background(), rec.ID, speech.TranscriptionOptions{})
	if !errors.Is(err, speech.ErrEmptyAudio) {
		t.Errorf("Expected ErrEmptyAudio, got %v", err)
	}

	if requests != 0 {
		t.Errorf("Expected no network requests for empty recording, got %d", requests)
	}
}

func TestTranscribeRoundTrip(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"testing one two"}]}]}}`))
	}))
	defer server.Close()

	sess, src, _ := newTestSession(t, server.URL)
	sess.SetAPIKey("my-api-key")

	if err := sess.StartRecording(16000); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	src.ch <- []byte("pcmdata!")
	rec, err := sess.StopRecording()
	if err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}

	result, err := sess.Transcribe(context.Background(), rec.ID, speech.TranscriptionOptions{Punctuate: true})
	if err != nil {
		t.Fatalf("Failed to transcribe: %v", err)
	}

	if result.Transcript != "testing one two" {
		t.Errorf("Transcript = %q, want \"testing one two\"", result.Transcript)
	}

	if gotContentType != "audio/wav" {
		t.Errorf("Content-Type = %q, want \"audio/wav\"", gotContentType)
	}
}

func TestSynthesizeDefaultVoice(t *testing.T) {
	var gotVoice string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVoice = r.URL.Query().Get("model")
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	sess, _, _ := newTestSession(t, server.URL)
	sess.SetAPIKey("my-api-key")

	audio, err := sess.Synthesize(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Failed to synthesize: %v", err)
	}

	if len(audio) == 0 {
		t.Error("Expected audio bytes")
	}

	if gotVoice != "aura-asteria-en" {
		t.Errorf("Voice = %q, want configured default", gotVoice)
	}
}

func TestSynthesizeMissingCredential(t *testing.T) {
	sess, _, _ := newTestSession(t, "http://127.0.0.1:1")

	_, err := sess.Synthesize(context.Background(), "hello", "aura-asteria-en")
	if !errors.Is(err, speech.ErrMissingCredential) {
		t.Errorf("Expected ErrMissingCredential, got %v", err)
	}
}

func TestDeleteRecording(t *testing.T) {
	sess, src, recordings := newTestSession(t, "http://127.0.0.1:1")
	sess.SetAPIKey("my-api-key")

	if err := sess.StartRecording(16000); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	src.ch <- []byte("xx")
	rec, err := sess.StopRecording()
	if err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}

	sess.DeleteRecording(rec.ID)

	if _, err := recordings.Get(rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op
	sess.DeleteRecording(rec.ID)
}

func TestPlayRecording(t *testing.T) {
	sess, src, _ := newTestSession(t, "http://127.0.0.1:1")
	sess.SetAPIKey("my-api-key")

	if err := sess.StartRecording(16000); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	src.ch <- []byte("xx")
	rec, err := sess.StopRecording()
	if err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}

	got, err := sess.PlayRecording(rec.ID)
	if err != nil {
		t.Fatalf("Failed to play recording: %v", err)
	}

	if got.ID != rec.ID {
		t.Errorf("Played id %s, want %s", got.ID, rec.ID)
	}

	_, err = sess.PlayRecording("rec-404")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
}
