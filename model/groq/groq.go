// Package groq provides a model wrapper for the Groq inference API. Groq
// exposes an OpenAI-compatible Chat Completions endpoint, so the adapter
// reuses the OpenAI client pointed at the Groq base URL.
package groq

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const baseURL = "https://api.groq.com/openai/v1"

// SupportedModels is the registered set of Groq model names accepted by the
// factory.
var SupportedModels = []string{
	"llama-3.2-1b-preview",
	"llama-3.3-70b-versatile",
	"mixtral-8x7b-32768",
}

// Options configure the Groq model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	Timeout             time.Duration
	APIKey              string
}

// Model wraps the Groq Chat Completions endpoint behind the generic
// model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new Groq model. The API key defaults to the
// GROQ_API_KEY environment variable.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               "llama-3.3-70b-versatile",
		Temperature:         0,
		MaxCompletionTokens: 4096,
		Timeout:             30 * time.Second,
		APIKey:              os.Getenv("GROQ_API_KEY"),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
	)

	return &Model{client: &client, opts: opts}
}

// GenerateResponse implements model.Model using a non-streaming completion.
func (m *Model) GenerateResponse(ctx context.Context, messages []core.Message) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(messages),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("groq api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &model.Response{
		Message: core.NewAssistantMessage(resp.Choices[0].Message.Content),
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// buildMessages converts normalized messages into OpenAI-compatible chat
// messages.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// Info returns metadata describing this Groq model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: model.ProviderGroq}
}
