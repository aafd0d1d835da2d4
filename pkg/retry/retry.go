// Package retry re-runs calls to flaky collaborators (diagram renderer,
// narration providers) with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	JitterFactor     float64 // 0.0-1.0, fraction of the delay randomly added or removed
	MaxSameErrorType int     // After N consecutive same-kind errors, give up; 0 disables

	// OnRetry, if set, is called before each wait with the 1-based number of
	// the failed attempt.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultConfig retries 3 times starting at 200ms, doubling up to 5s, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       3,
		InitialDelay:     200 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 3,
	}
}

// With returns a copy of c with onRetry installed. c may be nil.
func (c *Config) With(onRetry func(attempt int, err error, wait time.Duration)) *Config {
	cp := DefaultConfig()
	if c != nil {
		*cp = *c
	}
	cp.OnRetry = onRetry
	return cp
}

func (c *Config) nextDelay(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * c.Multiplier)
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// RetryableError is an error that declares its own retryability.
type RetryableError interface {
	error
	IsRetryable() bool
}

// transientMarkers maps message fragments of transient failures to the kind
// used for same-error detection. Order matters: status codes win over
// generic wording.
var transientMarkers = []struct {
	fragment string
	kind     string
}{
	{"503", "503"},
	{"502", "502"},
	{"504", "504"},
	{"500", "500"},
	{"429", "429"},
	{"connection refused", "connection"},
	{"connection reset", "connection"},
	{"broken pipe", "connection"},
	{"no such host", "dns"},
	{"network is unreachable", "network"},
	{"temporary failure", "network"},
	{"timeout", "timeout"},
	{"timed out", "timeout"},
	{"rate limit", "rate_limit"},
	{"too many requests", "rate_limit"},
	{"service unavailable", "503"},
}

// kindOf returns the transient kind of err, or "" if err does not look transient.
func kindOf(err error) string {
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m.fragment) {
			return m.kind
		}
	}
	return ""
}

// IsRetryable reports whether err is transient. An error anywhere in the
// chain implementing RetryableError decides; otherwise known transient
// network and HTTP failure messages are matched.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re RetryableError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}
	return kindOf(err) != ""
}

// DoIfRetryable runs fn until it succeeds, returns a non-transient error, or
// the retries run out. After MaxSameErrorType consecutive failures of the same
// kind the error is treated as permanent. Waiting respects ctx.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var (
		lastErr  error
		lastKind string
		sameKind int
	)
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		kind := kindOf(err)
		if kind == "" {
			kind = "declared"
		}
		if kind == lastKind {
			sameKind++
			if cfg.MaxSameErrorType > 0 && sameKind >= cfg.MaxSameErrorType {
				return fmt.Errorf("repeated error (%d times, type=%s): %w", sameKind, kind, err)
			}
		} else {
			sameKind = 1
			lastKind = kind
		}

		if attempt == cfg.MaxRetries {
			break
		}

		wait := applyJitter(delay, cfg.JitterFactor)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, wait)
		}
		select {
		case <-time.After(wait):
			delay = cfg.nextDelay(delay)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
