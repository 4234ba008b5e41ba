package bot

import (
	"slices"

	"github.com/hupe1980/chatmesh/model"
	"github.com/hupe1980/chatmesh/model/anthropic"
	"github.com/hupe1980/chatmesh/model/groq"
	"github.com/hupe1980/chatmesh/model/openai"
)

// modelEntry binds a provider to its registered model names and adapter
// constructor.
type modelEntry struct {
	models []string
	build  func(name string, cfg model.Config) model.Model
}

// modelRegistry is the explicit factory table over the closed provider enum.
// Adding a provider means adding exactly one entry here.
var modelRegistry = map[model.Provider]modelEntry{
	model.ProviderGroq: {
		models: groq.SupportedModels,
		build: func(name string, cfg model.Config) model.Model {
			return groq.NewModel(func(o *groq.Options) {
				o.Model = name
				o.Temperature = cfg.Temperature
				o.MaxCompletionTokens = cfg.MaxTokens
				o.Timeout = cfg.Timeout
				if cfg.APIKey != "" {
					o.APIKey = cfg.APIKey
				}
			})
		},
	},
	model.ProviderOpenAI: {
		models: openai.SupportedModels,
		build: func(name string, cfg model.Config) model.Model {
			return openai.NewModel(func(o *openai.Options) {
				o.Model = name
				o.Temperature = cfg.Temperature
				o.MaxCompletionTokens = cfg.MaxTokens
				o.Timeout = cfg.Timeout
				o.APIKey = cfg.APIKey
			})
		},
	},
	model.ProviderAnthropic: {
		models: anthropic.SupportedModels,
		build: func(name string, cfg model.Config) model.Model {
			return anthropic.NewModel(func(o *anthropic.Options) {
				o.Model = name
				o.Temperature = cfg.Temperature
				o.MaxTokens = cfg.MaxTokens
				o.Timeout = cfg.Timeout
				o.APIKey = cfg.APIKey
			})
		},
	},
}

// NewModel validates the provider and model name and constructs the matching
// adapter. Unknown providers fail with UnsupportedProviderError, names
// outside the provider's registered set with UnsupportedModelError; the
// factory never substitutes another model.
func NewModel(provider model.Provider, name string, optFns ...func(c *model.Config)) (model.Model, error) {
	entry, ok := modelRegistry[provider]
	if !ok {
		return nil, &model.UnsupportedProviderError{Provider: provider}
	}
	if !slices.Contains(entry.models, name) {
		return nil, &model.UnsupportedModelError{Provider: provider, Name: name, Supported: entry.models}
	}

	cfg := model.DefaultConfig()
	for _, fn := range optFns {
		fn(&cfg)
	}

	return entry.build(name, cfg), nil
}
