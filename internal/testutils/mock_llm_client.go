// Package testutils provides shared test doubles for the voting service.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/palate-app/palate/internal/ports"
)

// MockLLMClient implements ports.LLMClient with canned responses keyed
// by prompt substring, recording every prompt it receives. It is safe
// for concurrent use.
type MockLLMClient struct {
	mu        sync.Mutex
	model     string
	responses []MockResponse
	fallback  string
	err       error
	prompts   []string
}

// MockResponse maps a prompt substring to a canned response.
type MockResponse struct {
	// Pattern is matched as a substring of the prompt.
	Pattern string
	// Response is returned for matching prompts.
	Response string
}

var _ ports.LLMClient = (*MockLLMClient)(nil)

// NewMockLLMClient creates a mock client reporting the given model name.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{model: model}
}

// AddResponse registers a pattern-matched response. Patterns are checked
// in registration order, first match wins.
func (m *MockLLMClient) AddResponse(r MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r)
}

// SetFallbackResponse sets the response returned when no pattern
// matches.
func (m *MockLLMClient) SetFallbackResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// FailWith makes every Complete call return err.
func (m *MockLLMClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns a copy of every prompt received so far.
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Complete returns the first pattern-matched response, the fallback, or
// the configured error. Context cancellation is honored first.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, _ map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	if m.err != nil {
		return "", m.err
	}
	for _, r := range m.responses {
		if r.Pattern != "" && strings.Contains(prompt, r.Pattern) {
			return r.Response, nil
		}
	}
	return m.fallback, nil
}

// EstimateTokens approximates four characters per token.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel returns the mock model name.
func (m *MockLLMClient) GetModel() string { return m.model }
