package chatmesh

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/chatmesh/bot"
	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	assert.NotNil(t, m.Store())
}

func TestNew_StoreOverride(t *testing.T) {
	store := newRecordingStore()

	m, err := New(func(o *Options) { o.Store = store })
	require.NoError(t, err)
	assert.Same(t, store, m.Store().(*recordingStore))
}

func TestAgent_CachesByConfiguration(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	cfg := AgentConfig{Provider: model.ProviderGroq, ModelName: "llama-3.3-70b-versatile", Temperature: 0.5}

	first, err := m.Agent(cfg)
	require.NoError(t, err)
	second, err := m.Agent(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second, "identical configurations share one agent")

	other, err := m.Agent(AgentConfig{Provider: model.ProviderGroq, ModelName: "llama-3.3-70b-versatile", Temperature: 0.9})
	require.NoError(t, err)
	assert.NotSame(t, first, other, "temperature is part of the cache key")
	assert.Equal(t, 0.9, other.Temperature())
}

func TestAgent_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	cfg := AgentConfig{Provider: model.ProviderOpenAI, ModelName: "gpt-4o-mini", Temperature: 0}

	agents := make([]*bot.Bot, 16)
	var wg sync.WaitGroup
	for i := range agents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agent, err := m.Agent(cfg)
			assert.NoError(t, err)
			agents[i] = agent
		}(i)
	}
	wg.Wait()

	for _, agent := range agents[1:] {
		assert.Same(t, agents[0], agent)
	}
}

func TestAgent_InvalidConfiguration(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	_, err = m.Agent(AgentConfig{Provider: "cohere", ModelName: "command-r"})
	require.Error(t, err)

	var perr *model.UnsupportedProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestOpenConversation(t *testing.T) {
	ctx := context.Background()

	m, err := New()
	require.NoError(t, err)

	// First call creates a fresh conversation.
	first, err := m.OpenConversation(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// While it stays empty, repeated calls reuse it instead of stacking new
	// conversations.
	again, err := m.OpenConversation(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Once a message lands, the next call opens a new conversation.
	saved, err := m.Store().SaveMessage(ctx, first, core.MessagePair{UserMessage: "hi", AIMessage: "hello"})
	require.NoError(t, err)
	require.True(t, saved)

	next, err := m.OpenConversation(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, next)

	// Other owners never see it.
	other, err := m.OpenConversation(ctx, "user-2")
	require.NoError(t, err)
	assert.NotEqual(t, next, other)
}

// recordingStore is a minimal ConversationStore stand-in for override tests.
type recordingStore struct {
	mu    sync.Mutex
	calls []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{}
}

func (s *recordingStore) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
}

func (s *recordingStore) CreateConversation(context.Context, string, string) (string, error) {
	s.record("create")
	return "thread-1", nil
}

func (s *recordingStore) SaveMessage(context.Context, string, core.MessagePair) (bool, error) {
	s.record("save")
	return true, nil
}

func (s *recordingStore) LoadConversation(context.Context, string, int) ([]core.MessagePair, error) {
	s.record("load")
	return []core.MessagePair{}, nil
}

func (s *recordingStore) UserConversations(context.Context, string) ([]core.ConversationSummary, error) {
	s.record("list")
	return []core.ConversationSummary{}, nil
}
