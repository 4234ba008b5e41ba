// Package chatmesh provides a high-level façade over the conversation
// workflow engine and service abstractions (models, storage & logging)
// enabling rapid construction of bounded-memory conversational agents. Most
// applications interact with this package by:
//  1. Creating a ChatMesh via New() (optionally overriding the default
//     in-memory conversation store)
//  2. Resolving a cached agent for a model configuration via Agent()
//  3. Running turns via Chat() with an opaque thread id
//
// The façade delegates turn handling to bot.Bot while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable conversation
// store and a structured logger.
package chatmesh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/chatmesh/bot"
	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/logging"
	"github.com/hupe1980/chatmesh/model"
	"github.com/hupe1980/chatmesh/storage"
	"github.com/hupe1980/chatmesh/workflow"
)

// Options configures the ChatMesh instance.
type Options struct {
	// StorageBackend selects the conversation store shared by all agents.
	StorageBackend storage.Backend
	// StorageOptions configure the selected backend.
	StorageOptions []func(o *storage.Options)
	// Store overrides StorageBackend with an existing store when set.
	Store core.ConversationStore

	// SummarizeThreshold is the message count above which agents compress
	// conversation history.
	SummarizeThreshold int

	// RequestTimeout bounds every model provider call.
	RequestTimeout time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentConfig identifies an agent configuration. Agents are cached by the
// (provider, model, temperature) triple so repeated requests reuse the same
// instance instead of reconstructing the workflow.
type AgentConfig struct {
	Provider    model.Provider
	ModelName   string
	Temperature float64
}

func (c AgentConfig) key() string {
	return fmt.Sprintf("%s:%s:%g", c.Provider, c.ModelName, c.Temperature)
}

// ChatMesh is the high-level façade aggregating the shared conversation
// store and the process-wide agent cache. The cache uses compute-if-absent
// under a mutex: two concurrent first requests for the same configuration
// construct exactly one agent.
type ChatMesh struct {
	opts  Options
	store core.ConversationStore

	mu     sync.Mutex
	agents map[string]*bot.Bot
}

// New creates a new ChatMesh instance with optional overrides. An unset
// store is initialized with the configured backend (in-memory by default).
func New(optFns ...func(o *Options)) (*ChatMesh, error) {
	opts := Options{
		StorageBackend:     storage.BackendInMemory,
		SummarizeThreshold: workflow.DefaultSummarizeThreshold,
		RequestTimeout:     30 * time.Second,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = storage.New(opts.StorageBackend, opts.StorageOptions...)
		if err != nil {
			return nil, fmt.Errorf("create conversation store: %w", err)
		}
	}

	return &ChatMesh{opts: opts, store: store, agents: make(map[string]*bot.Bot)}, nil
}

// Store returns the shared conversation store.
func (m *ChatMesh) Store() core.ConversationStore { return m.store }

// Agent returns the cached agent for the configuration, constructing it on
// first use. Construction happens at most once per key; the cache lives for
// the process lifetime with no eviction.
func (m *ChatMesh) Agent(cfg AgentConfig) (*bot.Bot, error) {
	key := cfg.key()

	m.mu.Lock()
	defer m.mu.Unlock()

	if agent, ok := m.agents[key]; ok {
		return agent, nil
	}

	agent, err := bot.NewBuilder(func(o *bot.BuilderOptions) { o.Logger = m.opts.Logger }).
		WithModel(cfg.Provider, cfg.ModelName, func(c *model.Config) {
			c.Temperature = cfg.Temperature
			c.Timeout = m.opts.RequestTimeout
		}).
		WithStorageInstance(m.store).
		WithWorkflow(bot.WorkflowChat, func(o *workflow.ChatOptions) {
			o.SummarizeThreshold = m.opts.SummarizeThreshold
		}).
		WithTemperature(cfg.Temperature).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}

	m.agents[key] = agent

	return agent, nil
}

// Chat resolves the agent for the configuration and runs one turn on the
// given thread.
func (m *ChatMesh) Chat(ctx context.Context, cfg AgentConfig, message, threadID string) (string, error) {
	agent, err := m.Agent(cfg)
	if err != nil {
		return "", err
	}
	return agent.Chat(ctx, message, threadID), nil
}

// OpenConversation returns the id of the owner's newest conversation without
// any message pairs, or creates a fresh one titled "New Chat". It backs the
// "reuse the empty conversation instead of stacking new ones" behavior of
// chat frontends.
func (m *ChatMesh) OpenConversation(ctx context.Context, ownerID string) (string, error) {
	summaries, err := m.store.UserConversations(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("list conversations: %w", err)
	}

	// Summaries arrive newest first.
	for _, s := range summaries {
		if s.MessageCount == 0 {
			return s.ID, nil
		}
	}

	return m.store.CreateConversation(ctx, ownerID, "New Chat")
}
