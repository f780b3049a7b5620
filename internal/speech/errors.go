package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when an operation requires an API
	// key and none has been set.
	ErrMissingCredential = errors.New("no API key has been set")

	// ErrEmptyAudio is returned when a transcription is requested for a
	// zero-length recording. No network call is made in that case.
	ErrEmptyAudio = errors.New("recording contains no audio data")

	// ErrMalformedResponse is returned when the provider response does not
	// contain the expected transcript structure.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// AuthError reports a failed short-lived token grant.
type AuthError struct {
	Status string // HTTP status text from the token endpoint
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token grant failed: %s", e.Status)
}

// APIError reports a non-success response from a provider data endpoint.
type APIError struct {
	Op         string // "transcription" or "synthesis"
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s request failed: %s: %s", e.Op, e.Status, e.Body)
}
