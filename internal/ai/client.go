// Package ai wraps the chat-completions oracle used to read customer
// messages: field extraction, order confirmation and contextual replies.
//
// Every call runs under the configured timeout. A timeout, transport error
// or unusable response is returned as an error; deciding what an error means
// for the conversation is left to the caller.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
)

// ErrMalformedOutput is returned when the model answers with something that
// cannot be interpreted, e.g. invalid JSON from the field extractor.
var ErrMalformedOutput = errors.New("ai: malformed response from model")

// ErrEmptyResponse is returned when the model returns no choices or an empty message.
var ErrEmptyResponse = errors.New("ai: empty response from model")

// Client sends single-prompt chat completions
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a client from the OpenAI settings.
func NewClient(cfg config.OpenAIConfig) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// complete sends prompt as the system message and returns the trimmed answer.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
