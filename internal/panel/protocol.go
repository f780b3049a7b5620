package panel

import "encoding/json"

// Command names accepted from the panel UI
const (
	CmdSetAPIKey             = "setApiKey"
	CmdSetUseShortLivedToken = "setUseShortLivedToken"
	CmdStartRecording        = "startRecording"
	CmdStopRecording         = "stopRecording"
	CmdTranscribeAudio       = "transcribeAudio"
	CmdSynthesizeSpeech      = "synthesizeSpeech"
	CmdDeleteAudio           = "deleteAudio"
	CmdPlayAudio             = "playAudio"
)

// Event names sent back to the panel UI
const (
	EventRecordingStarted    = "recordingStarted"
	EventRecordingStopped    = "recordingStopped"
	EventTranscriptionResult = "transcriptionResult"
	EventTranscriptionError  = "transcriptionError"
	EventTTSResult           = "ttsResult"
	EventTTSError            = "ttsError"
	EventPlayAudioResult     = "playAudioResult"
	EventPlayAudioError      = "playAudioError"
	EventError               = "error"
)

// Command is sent from the panel UI to the service. The Command field
// selects the variant; the remaining fields are populated per variant.
type Command struct {
	Command string `json:"command"`

	// setApiKey
	APIKey string `json:"apiKey,omitempty"`

	// setUseShortLivedToken
	Value *bool `json:"value,omitempty"`

	// startRecording, transcribeAudio
	SampleRate int `json:"sampleRate,omitempty"`

	// transcribeAudio, deleteAudio, playAudio
	AudioID string `json:"audioId,omitempty"`

	// transcribeAudio
	Model        string   `json:"model,omitempty"`
	Language     string   `json:"language,omitempty"`
	Multichannel bool     `json:"multichannel,omitempty"`
	Punctuate    bool     `json:"punctuate,omitempty"`
	Dictation    bool     `json:"dictation,omitempty"`
	Paragraphs   bool     `json:"paragraphs,omitempty"`
	SmartFormat  bool     `json:"smartFormat,omitempty"`
	Utterances   bool     `json:"utterances,omitempty"`
	Diarize      bool     `json:"diarize,omitempty"`
	Keyterms     []string `json:"keyterms,omitempty"`

	// synthesizeSpeech
	Text  string `json:"text,omitempty"`
	Voice string `json:"voice,omitempty"`
}

// Event is sent from the service to the panel UI in response to commands.
// Audio payloads cross the boundary base64-encoded.
type Event struct {
	Event string `json:"event"`

	// recordingStopped, playAudioResult
	AudioID  string   `json:"audioId,omitempty"`
	Duration *float64 `json:"duration,omitempty"`

	// transcriptionResult
	Transcript string          `json:"transcript,omitempty"`
	FullResult json.RawMessage `json:"fullResult,omitempty"`

	// ttsResult, playAudioResult
	AudioData string `json:"audioData,omitempty"`

	// *Error events
	Error string `json:"error,omitempty"`
}

// BoolPtr returns a pointer to a bool value. Convenience for building commands.
func BoolPtr(b bool) *bool { return &b }

// Float64Ptr returns a pointer to a float64 value
func Float64Ptr(f float64) *float64 { return &f }
