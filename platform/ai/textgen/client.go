// Package textgen provides a client for the hosted text-generation service
// used to write lead summaries.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("text generation returned no content")

// Config configures the text-generation client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client sends single-turn prompts to the messages endpoint.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
}

// NewClient creates a new text-generation client. Retries are disabled: a
// failed call is recovered by the caller's deterministic fallback.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Generate sends prompt as a single user message and returns the text of the
// first content block.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("text generation request: %w", err)
	}

	if len(msg.Content) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(msg.Content[0].Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
