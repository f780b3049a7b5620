package panel

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/voicepanel/panel-audio-service/internal/audio"
	"github.com/voicepanel/panel-audio-service/internal/metrics"
	"github.com/voicepanel/panel-audio-service/internal/session"
	"github.com/voicepanel/panel-audio-service/internal/speech"
)

// Handler dispatches panel commands to session operations and translates
// results and failures into panel events. Unknown command tags are
// rejected with an error event rather than ignored.
type Handler struct {
	session *session.Session
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler creates a panel command handler
func NewHandler(sess *session.Session, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		session: sess,
		logger:  logger,
		metrics: m,
	}
}

// Handle processes one panel command and returns the event to send back,
// or nil for commands that produce no event.
func (h *Handler) Handle(ctx context.Context, cmd Command) *Event {
	event := h.dispatch(ctx, cmd)

	outcome := "ok"
	if event != nil && event.Error != "" {
		outcome = "error"
	}
	h.metrics.RecordPanelCommand(cmd.Command, outcome)

	return event
}

func (h *Handler) dispatch(ctx context.Context, cmd Command) *Event {
	switch cmd.Command {
	case CmdSetAPIKey:
		h.session.SetAPIKey(cmd.APIKey)
		return nil

	case CmdSetUseShortLivedToken:
		h.session.SetUseShortLivedToken(cmd.Value != nil && *cmd.Value)
		return nil

	case CmdStartRecording:
		if err := h.session.StartRecording(cmd.SampleRate); err != nil {
			return &Event{Event: EventError, Error: err.Error()}
		}
		return &Event{Event: EventRecordingStarted}

	case CmdStopRecording:
		rec, err := h.session.StopRecording()
		if err != nil {
			return &Event{Event: EventError, Error: err.Error()}
		}
		return &Event{
			Event:    EventRecordingStopped,
			AudioID:  rec.ID,
			Duration: Float64Ptr(rec.Duration),
		}

	case CmdTranscribeAudio:
		result, err := h.session.Transcribe(ctx, cmd.AudioID, transcriptionOptions(cmd))
		if err != nil {
			return &Event{Event: EventTranscriptionError, Error: err.Error()}
		}
		return &Event{
			Event:      EventTranscriptionResult,
			Transcript: result.Transcript,
			FullResult: result.FullResult,
		}

	case CmdSynthesizeSpeech:
		audio, err := h.session.Synthesize(ctx, cmd.Text, cmd.Voice)
		if err != nil {
			return &Event{Event: EventTTSError, Error: err.Error()}
		}
		return &Event{
			Event:     EventTTSResult,
			AudioData: base64.StdEncoding.EncodeToString(audio),
		}

	case CmdDeleteAudio:
		h.session.DeleteRecording(cmd.AudioID)
		return nil

	case CmdPlayAudio:
		rec, err := h.session.PlayRecording(cmd.AudioID)
		if err != nil {
			return &Event{Event: EventPlayAudioError, Error: err.Error()}
		}
		event := &Event{
			Event:     EventPlayAudioResult,
			AudioID:   rec.ID,
			AudioData: base64.StdEncoding.EncodeToString(rec.Data),
		}
		// Report the playable length from the container itself; empty
		// captures have no container and no playable length
		if duration, err := audio.GetWAVDuration(rec.Data); err == nil {
			event.Duration = Float64Ptr(duration)
		}
		return event

	default:
		h.logger.Warn("Rejected unknown panel command",
			slog.String("command", cmd.Command),
		)
		return &Event{
			Event: EventError,
			Error: fmt.Sprintf("unknown command %q", cmd.Command),
		}
	}
}

// transcriptionOptions maps a transcribeAudio command onto request options
func transcriptionOptions(cmd Command) speech.TranscriptionOptions {
	return speech.TranscriptionOptions{
		Model:        cmd.Model,
		Language:     cmd.Language,
		SampleRate:   cmd.SampleRate,
		Multichannel: cmd.Multichannel,
		Punctuate:    cmd.Punctuate,
		Dictation:    cmd.Dictation,
		Paragraphs:   cmd.Paragraphs,
		SmartFormat:  cmd.SmartFormat,
		Utterances:   cmd.Utterances,
		Diarize:      cmd.Diarize,
		Keyterms:     cmd.Keyterms,
	}
}
