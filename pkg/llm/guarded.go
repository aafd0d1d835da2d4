package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/logging"
	"github.com/ekaya-inc/ekaya-discovery/pkg/retry"
)

// Guarded wraps a Narrator with retries for transient failures and a circuit
// breaker that fails fast while the provider is down.
type Guarded struct {
	inner   Narrator
	breaker *CircuitBreaker
	retry   *retry.Config
	logger  *zap.Logger
}

// NewGuarded wraps inner. A nil retryCfg uses retry.DefaultConfig.
func NewGuarded(inner Narrator, breaker *CircuitBreaker, retryCfg *retry.Config, logger *zap.Logger) *Guarded {
	return &Guarded{
		inner:   inner,
		breaker: breaker,
		retry:   retryCfg,
		logger:  logger.Named("llm.guard"),
	}
}

// Generate implements Narrator.
func (g *Guarded) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.breaker.Allow(); err != nil {
		return "", NewError(ErrorTypeEndpoint, "circuit open", false, err)
	}

	cfg := g.retry.With(func(attempt int, err error, wait time.Duration) {
		g.logger.Debug("Retrying narration",
			zap.String("model", g.inner.Model()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.String("error", logging.SanitizeError(err)))
	})

	var text string
	err := retry.DoIfRetryable(ctx, cfg, func() error {
		var genErr error
		text, genErr = g.inner.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		g.breaker.RecordFailure()
		return "", ClassifyError(err)
	}

	g.breaker.RecordSuccess()
	return text, nil
}

// Model implements Narrator.
func (g *Guarded) Model() string {
	return g.inner.Model()
}

var _ Narrator = (*Guarded)(nil)
