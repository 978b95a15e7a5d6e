// Package gen calls the Gemini generateContent endpoint and turns its
// replies into announcement text, schedule extractions, persona lines and
// puzzle words.
package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Errors for the generation client.
var (
	// ErrMissingAPIKey is returned before any network attempt when no
	// API key is configured.
	ErrMissingAPIKey = errors.New("gemini api key not configured")

	// ErrRetriesExhausted is returned after all retry attempts failed
	// on rate limiting or connection errors.
	ErrRetriesExhausted = errors.New("failed to reach generation service after multiple retries")

	// ErrBadResponse is returned when a 200 reply does not carry the
	// expected candidates/content/parts shape. Never retried.
	ErrBadResponse = errors.New("generation response was not in the expected format")
)

// StatusError is a non-2xx, non-429 upstream status. Never retried.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation service returned status %d", e.Code)
}

const (
	// DefaultBaseURL is the Gemini REST endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the generation model used for every call.
	DefaultModel = "gemini-2.5-flash-preview-09-2025"

	// DefaultMaxAttempts is the total attempt count for one call.
	DefaultMaxAttempts = 3
)

// Part is one text fragment of a content block.
type Part struct {
	Text string `json:"text"`
}

// Content is an ordered list of parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Schema declares the structured-output shape for extraction calls.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// GenerationConfig constrains the reply to a declared schema.
type GenerationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	ResponseSchema   *Schema `json:"responseSchema"`
}

// Request is the generateContent request body.
type Request struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type response struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// Config holds client configuration.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxAttempts int

	// InitialBackoff is the first retry wait; doubles per attempt with
	// no jitter so retry timing is reproducible. Zero means one second.
	InitialBackoff time.Duration

	HTTPClient *http.Client
}

// Client performs generateContent calls with exponential-backoff retry on
// rate limiting and connection failure.
type Client struct {
	apiKey         string
	model          string
	baseURL        string
	maxAttempts    int
	initialBackoff time.Duration
	http           *http.Client
}

// NewClient creates a Client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	c := &Client{
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		baseURL:        cfg.BaseURL,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		http:           cfg.HTTPClient,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = time.Second
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// Generate posts the request and returns the first candidate's text.
// 429 and connection failures are retried with deterministic doubling
// (1s, 2s, ...); any other non-2xx status aborts immediately.
func (c *Client) Generate(ctx context.Context, req *Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	var text string
	operation := func() error {
		t, err := c.attempt(ctx, url, body)
		if err != nil {
			return err
		}
		text = t
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)), ctx))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) || errors.Is(err, ErrBadResponse) || ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
	}
	return text, nil
}

// attempt performs a single HTTP exchange. A retryable error return means
// the backoff policy may try again; permanent failures are wrapped.
func (c *Client) attempt(ctx context.Context, url string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Connection failure: retryable.
		log.Warn().Err(err).Msg("Generation request failed, will retry")
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		log.Warn().Msg("Generation service rate limited, will retry")
		return "", fmt.Errorf("rate limited (status %d)", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(errBody)).
			Msg("Generation service error")
		return "", backoff.Permanent(&StatusError{Code: resp.StatusCode})
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: %v", ErrBadResponse, err))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", backoff.Permanent(ErrBadResponse)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
