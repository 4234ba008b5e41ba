package model

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/chatmesh/core"
)

// Provider enumerates supported model backends. The set is closed; mapping a
// provider to a concrete adapter happens in an explicit factory table so that
// adding a case is a compile-checked change.
type Provider string

const (
	// ProviderGroq targets the Groq OpenAI-compatible endpoint.
	ProviderGroq Provider = "groq"
	// ProviderOpenAI targets the OpenAI Chat Completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic targets the Anthropic Messages API.
	ProviderAnthropic Provider = "anthropic"
)

// Providers returns the closed set of supported providers.
func Providers() []Provider {
	return []Provider{ProviderGroq, ProviderOpenAI, ProviderAnthropic}
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Map flattens the usage into the open key/count shape persisted with a
// message pair.
func (u *TokenUsage) Map() map[string]int {
	if u == nil {
		return nil
	}
	return map[string]int{
		"prompt_tokens":     u.PromptTokens,
		"completion_tokens": u.CompletionTokens,
		"total_tokens":      u.TotalTokens,
	}
}

// Response is the completed model output for one generation call.
type Response struct {
	Message core.Message `json:"message"`
	Usage   *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string   `json:"name"`
	Provider Provider `json:"provider"`
}

// Model is the minimal interface the workflow engine needs to drive
// generation. GenerateResponse is the sole suspending boundary call to the
// remote backend; implementations must propagate provider failures rather
// than returning a placeholder.
type Model interface {
	GenerateResponse(ctx context.Context, messages []core.Message) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Config carries the cross-provider generation settings consumed by adapter
// constructors. Adapters apply Timeout at the request boundary; there is no
// implicit unbounded call.
type Config struct {
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
	APIKey      string
}

// DefaultConfig returns the baseline generation configuration.
func DefaultConfig() Config {
	return Config{Temperature: 0, MaxTokens: 4096, Timeout: 30 * time.Second}
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed by the content of the last message in the request.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	err       error
	calls     [][]core.Message
}

// NewMockModel constructs a MockModel for the given name and provider tag.
func NewMockModel(name string, provider Provider) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every subsequent generation call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the recorded message slices of all generation calls.
func (m *MockModel) Calls() [][]core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([][]core.Message, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GenerateResponse implements Model; returns the canned completion for the
// last message or a derived default.
func (m *MockModel) GenerateResponse(ctx context.Context, messages []core.Message) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	recorded := make([]core.Message, len(messages))
	copy(recorded, messages)
	m.calls = append(m.calls, recorded)

	last := messages[len(messages)-1].Content
	full := m.responses[last]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", last)
	}

	return &Response{
		Message: core.NewAssistantMessage(full),
		Usage:   &TokenUsage{PromptTokens: len(messages), CompletionTokens: 1, TotalTokens: len(messages) + 1},
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
