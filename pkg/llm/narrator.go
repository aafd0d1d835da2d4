// Package llm generates free-form prose for the discovery wizard: per-field
// suggestions and whole-record reviews. Output is opaque text; callers never
// parse it.
package llm

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
)

// Narrator turns a prompt into text.
// Use this interface for dependency injection to enable mocking in tests.
type Narrator interface {
	// Generate returns the completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model name, or "" when unconfigured.
	Model() string
}

// unconfigured is the Narrator used when no provider is selected.
type unconfigured struct{}

// Unconfigured returns a Narrator whose every call fails with apperrors.ErrNotConfigured.
func Unconfigured() Narrator {
	return unconfigured{}
}

func (unconfigured) Generate(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("%w: no narration provider selected", apperrors.ErrNotConfigured)
}

func (unconfigured) Model() string { return "" }

var _ Narrator = unconfigured{}
