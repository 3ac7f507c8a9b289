// Package voice wraps the ElevenLabs text-to-speech streaming API. The
// client is optional: a nil client means voice is disabled and every
// synthesis call reports unavailable. Voice failures are never fatal to
// the narrative flow.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const baseURL = "https://api.elevenlabs.io/v1/text-to-speech"

// Synthesizer converts narrative text into an audio stream. Implemented
// by Client; mocked in tests.
type Synthesizer interface {
	Enabled() bool
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// Config holds the voice provider settings.
type Config struct {
	APIKey  string
	VoiceID string
	Model   string
	Timeout time.Duration
}

// Client streams synthesized speech from ElevenLabs.
type Client struct {
	apiKey     string
	voiceID    string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Synthesizer = (*Client)(nil)

// NewClient creates a voice client. Returns nil when no API key is
// configured, which disables voice features.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		model:      cfg.Model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("VoiceClient"),
	}
}

// Enabled reports whether the client is configured.
func (c *Client) Enabled() bool { return c != nil }

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize converts text into an audio/mpeg byte stream. Emphasis
// markers are stripped before synthesis so they are not read aloud.
// The caller must close the returned stream.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if c == nil {
		return nil, fmt.Errorf("voice client is not configured")
	}

	cleaned := strings.ReplaceAll(text, "*", "")

	body, err := json.Marshal(synthesizeRequest{Text: cleaned, ModelID: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/stream", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Voice synthesis request failed", zap.Error(err))
		return nil, fmt.Errorf("voice synthesis request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		// Read a bounded error body for the log only.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Voice synthesis returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return nil, fmt.Errorf("voice provider returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}
