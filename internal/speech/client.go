package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Config contains speech provider client configuration
type Config struct {
	BaseURL      string
	DefaultModel string
	TokenTTL     time.Duration
	TokenScopes  []string
	Timeout      time.Duration
}

// TranscriptResult carries the extracted transcript together with the
// full provider response for consumers that want word timings, speaker
// labels, or other metadata.
type TranscriptResult struct {
	Transcript string          `json:"transcript"`
	FullResult json.RawMessage `json:"full_result"`
}

// listenResponse mirrors the transcript path of the provider response
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Client is the HTTP client for the speech provider's batch transcription
// and synthesis endpoints.
type Client struct {
	config     Config
	auth       *TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new speech provider client
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if config.DefaultModel == "" {
		config.DefaultModel = "nova-3"
	}

	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		config:     config,
		auth:       NewTokenProvider(config.BaseURL, config.TokenTTL, config.TokenScopes, httpClient),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Transcribe uploads a complete audio buffer to the batch transcription
// endpoint and returns the extracted transcript plus the full response.
// A zero-length buffer fails before any network call, including the token
// grant.
func (c *Client) Transcribe(ctx context.Context, apiKey string, shortLived bool,
	audioData []byte, contentType string, opts TranscriptionOptions) (*TranscriptResult, error) {

	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudio
	}

	cred, err := c.auth.Resolve(ctx, apiKey, shortLived)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	endpoint := c.config.BaseURL + "/v1/listen?" + opts.QueryString(c.config.DefaultModel)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audioData))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription request: %w", err)
	}

	req.Header.Set("Authorization", cred.AuthorizationHeader())
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", requestID)

	startTime := time.Now()
	c.logger.Debug("Sending transcription request",
		slog.String("request_id", requestID),
		slog.Int("audio_bytes", len(audioData)),
		slog.String("content_type", contentType),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Op:         "transcription",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(respBody),
		}
	}

	var parsed listenResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", ErrMalformedResponse)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return nil, fmt.Errorf("no transcript in response: %w", ErrMalformedResponse)
	}

	c.logger.Info("Transcription completed",
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(startTime)),
	)

	return &TranscriptResult{
		Transcript: parsed.Results.Channels[0].Alternatives[0].Transcript,
		FullResult: json.RawMessage(respBody),
	}, nil
}

// speakRequest is the synthesis request body
type speakRequest struct {
	Text string `json:"text"`
}

// Synthesize converts text to speech with the given voice and returns the
// raw audio bytes unmodified; the caller interprets the container format.
func (c *Client) Synthesize(ctx context.Context, apiKey string, shortLived bool,
	text, voice string) ([]byte, error) {

	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	cred, err := c.auth.Resolve(ctx, apiKey, shortLived)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(speakRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	requestID := uuid.New().String()
	endpoint := c.config.BaseURL + "/v1/speak?" + url.Values{"model": {voice}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}

	req.Header.Set("Authorization", cred.AuthorizationHeader())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Op:         "synthesis",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(respBody),
		}
	}

	c.logger.Info("Synthesis completed",
		slog.String("request_id", requestID),
		slog.String("voice", voice),
		slog.Int("audio_bytes", len(respBody)),
		slog.Duration("elapsed", time.Since(startTime)),
	)

	return respBody, nil
}
