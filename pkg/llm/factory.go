package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/config"
	"github.com/ekaya-inc/ekaya-discovery/pkg/retry"
)

// systemMessage frames every narration request.
const systemMessage = "You are a senior business analyst helping a client describe the software they need. " +
	"Answer with plain prose only, without markdown headings or code blocks."

// NewNarrator builds the Narrator selected by cfg. An empty provider yields a
// Narrator failing with apperrors.ErrNotConfigured.
func NewNarrator(cfg *config.NarrationConfig, logger *zap.Logger) (Narrator, error) {
	if !cfg.IsConfigured() {
		logger.Info("Narration disabled: no provider configured")
		return Unconfigured(), nil
	}

	clientCfg := &Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		System:   systemMessage,
	}

	var inner Narrator
	switch cfg.Provider {
	case config.NarrationProviderOpenAI:
		c, err := NewOpenAIClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai narrator: %w", err)
		}
		inner = c
	case config.NarrationProviderAnthropic:
		c, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic narrator: %w", err)
		}
		inner = c
	default:
		return nil, fmt.Errorf("unknown narration provider %q", cfg.Provider)
	}

	logger.Info("Narration enabled",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))

	return NewGuarded(inner, NewCircuitBreaker(DefaultCircuitBreakerConfig()), retry.DefaultConfig(), logger), nil
}
