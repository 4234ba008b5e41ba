// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/model"
)

// SupportedModels is the registered set of Anthropic model names accepted by
// the factory.
var SupportedModels = []string{
	string(anthropic.ModelClaude3_5Sonnet20241022),
	string(anthropic.ModelClaude3_5Haiku20241022),
	string(anthropic.ModelClaude3OpusLatest),
}

// Options configure the Anthropic model adapter (model id, temperature, max
// tokens, request timeout, API key).
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0,
		MaxTokens:   4096,
		Timeout:     30 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithRequestTimeout(opts.Timeout)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0,
		MaxTokens:   4096,
		Timeout:     30 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// GenerateResponse implements model.Model against the Messages API.
func (m *Model) GenerateResponse(ctx context.Context, messages []core.Message) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.opts.Model),
		Messages:    buildMessages(messages),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}

	// System instructions travel outside the message list.
	if systemBlocks := extractSystemMessage(messages); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var textBuilder strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			textBuilder.WriteString(block.AsText().Text)
		}
	}

	return &model.Response{
		Message: core.NewAssistantMessage(textBuilder.String()),
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// buildMessages converts ChatMesh messages to the Anthropic message format.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	for _, msg := range messages {
		if msg.Role == core.RoleSystem {
			continue // handled separately
		}

		switch msg.Role {
		case core.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			// Human and unknown roles map to user messages.
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return out
}

// extractSystemMessage collects system message blocks.
func extractSystemMessage(messages []core.Message) []anthropic.TextBlockParam {
	var systemBlocks []anthropic.TextBlockParam

	for _, msg := range messages {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
				Text: msg.Content,
			})
		}
	}

	return systemBlocks
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: model.ProviderAnthropic}
}
