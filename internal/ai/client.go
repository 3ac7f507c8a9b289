// Package ai wraps the external chat-completion API used for narrative
// generation. The adapter performs exactly one call per request and
// classifies failures; retry policy, if any, belongs to the caller.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"espectral-server/internal/prompt"
)

// FailureKind classifies why a generation call failed.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network"
	FailureRateLimit FailureKind = "rate-limit"
	FailureProvider  FailureKind = "provider-error"
	FailureEmpty     FailureKind = "empty-response"
)

// GenerationError is returned for any failed generation call instead of
// letting transport errors escape the adapter boundary.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator is the narrative generation contract consumed by the game
// service. Implemented by Client; mocked in tests.
type Generator interface {
	Generate(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error)
}

// Config holds the generator client settings.
type Config struct {
	APIKey  string
	BaseURL string // empty for the default OpenAI endpoint
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat-completion API.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

var _ Generator = (*Client)(nil)

// NewClient creates a generator client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		client:  openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger.Named("AIClient"),
	}
}

// Generate performs a single chat-completion call and returns the
// narrative text. Any failure comes back as a *GenerationError.
func (c *Client) Generate(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error) {
	if len(messages) == 0 {
		return "", &GenerationError{Kind: FailureEmpty, Err: errors.New("messages cannot be empty")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		genErr := classify(err)
		c.logger.Error("Chat completion failed",
			zap.String("model", c.model),
			zap.String("kind", string(genErr.Kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", genErr
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("Chat completion returned no content", zap.String("model", c.model))
		return "", &GenerationError{Kind: FailureEmpty, Err: errors.New("received empty response from API")}
	}

	c.logger.Debug("Chat completion succeeded",
		zap.String("model", c.model),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// classify maps transport and provider errors onto failure kinds.
func classify(err error) *GenerationError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &GenerationError{Kind: FailureRateLimit, Err: err}
		default:
			return &GenerationError{Kind: FailureProvider, Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &GenerationError{Kind: FailureNetwork, Err: err}
	}
	return &GenerationError{Kind: FailureNetwork, Err: err}
}
