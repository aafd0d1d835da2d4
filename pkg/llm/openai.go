package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient narrates through any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	system      string
	temperature float32
	logger      *zap.Logger
}

// Config holds configuration for creating a provider client.
type Config struct {
	Endpoint string // Base URL; empty uses the provider default
	Model    string // Model name, e.g., "gpt-4o"
	APIKey   string // Optional for local endpoints
	System   string // System message sent with every prompt
}

// NewOpenAIClient creates a new OpenAI-compatible narrator.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		system:      cfg.System,
		temperature: 0.7,
		logger:      logger.Named("llm.openai"),
	}, nil
}

// Generate implements Narrator.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if c.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	c.logger.Debug("Narration request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Error("Narration request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = c.model
		return "", llmErr
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &Error{Type: ErrorTypeEmpty, Message: "no content in response", Model: c.model}
	}

	c.logger.Info("Narration request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Model implements Narrator.
func (c *OpenAIClient) Model() string {
	return c.model
}

var _ Narrator = (*OpenAIClient)(nil)
