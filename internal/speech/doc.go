// Package speech implements the HTTP client for the speech provider API.
// It handles short-lived token grants, scheme-aware authorization headers,
// batch transcription query construction, and text-to-speech synthesis.
package speech
