package speech

import (
	"net/url"
	"strconv"
)

// TranscriptionOptions configures a single batch transcription request.
// It is passed by value per request and never persisted.
type TranscriptionOptions struct {
	Model      string
	Language   string
	SampleRate int

	Multichannel bool
	Punctuate    bool
	Dictation    bool
	Paragraphs   bool
	SmartFormat  bool
	Utterances   bool
	Diarize      bool

	Keyterms []string
}

// QueryString encodes the options as the listen endpoint query string.
// Boolean feature flags appear only when true; absent flags mean the
// provider default. Keyterms become one repeated entry per item in list
// order. An empty language means provider-side auto-detect.
func (o TranscriptionOptions) QueryString(defaultModel string) string {
	values := url.Values{}

	model := o.Model
	if model == "" {
		model = defaultModel
	}
	values.Set("model", model)

	if o.SampleRate > 0 {
		values.Set("sample_rate", strconv.Itoa(o.SampleRate))
	}

	flags := []struct {
		name string
		set  bool
	}{
		{"multichannel", o.Multichannel},
		{"punctuate", o.Punctuate},
		{"dictation", o.Dictation},
		{"paragraphs", o.Paragraphs},
		{"smart_format", o.SmartFormat},
		{"utterances", o.Utterances},
		{"diarize", o.Diarize},
	}
	for _, flag := range flags {
		if flag.set {
			values.Set(flag.name, "true")
		}
	}

	for _, keyterm := range o.Keyterms {
		values.Add("keyterm", keyterm)
	}

	if o.Language != "" {
		values.Set("language", o.Language)
	}

	return values.Encode()
}
