// Package llm provides language-model completion backends used for mood
// inference: OpenAI chat completions and a local Ollama instance.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherbeats/internal/resilience"
)

const DefaultOpenAIModel = openai.GPT3Dot5Turbo

var (
	ErrMissingAPIKey = errors.New("llm api key is not configured")
	ErrEmptyReply    = errors.New("llm returned an empty reply")
)

// OpenAIClient completes prompts with the OpenAI chat completions API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	circuit *gobreaker.CircuitBreaker
}

// NewOpenAIClient builds a client. baseURL overrides the API root (for
// proxies and tests); empty keeps the default.
func NewOpenAIClient(httpClient *http.Client, apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		circuit: resilience.NewBreaker("openai"),
	}, nil
}

// Complete sends the system and user messages and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := resilience.Execute(c.circuit, func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
