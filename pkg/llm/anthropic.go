package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const anthropicMaxTokens = 2000

// AnthropicClient narrates through the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	system string
	logger *zap.Logger
}

// NewAnthropicClient creates a new Anthropic narrator.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		system: cfg.System,
		logger: logger.Named("llm.anthropic"),
	}, nil
}

// Generate implements Narrator.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("Narration request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    c.system,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("Narration request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = c.model
		return "", llmErr
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &Error{Type: ErrorTypeEmpty, Message: "no content in response", Model: c.model}
	}

	c.logger.Info("Narration request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Model implements Narrator.
func (c *AnthropicClient) Model() string {
	return c.model
}

func extractText(resp anthropic.MessagesResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			b.WriteString(*block.Text)
		}
	}
	return b.String()
}

var _ Narrator = (*AnthropicClient)(nil)
