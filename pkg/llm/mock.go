package llm

import (
	"context"
	"sync"
)

// MockNarrator is a configurable mock for testing narration.
// Set GenerateFunc to control behavior in tests.
type MockNarrator struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns Response and nil error.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Response is returned when GenerateFunc is nil.
	Response string

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	mu      sync.Mutex
	prompts []string
}

// NewMockNarrator creates a mock that answers every prompt with response.
func NewMockNarrator(response string) *MockNarrator {
	return &MockNarrator{Response: response}
}

// Generate implements Narrator.
func (m *MockNarrator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return m.Response, nil
}

// Model implements Narrator.
func (m *MockNarrator) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Prompts returns the prompts received so far.
func (m *MockNarrator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns the number of Generate calls.
func (m *MockNarrator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

var _ Narrator = (*MockNarrator)(nil)
