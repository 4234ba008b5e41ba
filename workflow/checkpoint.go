package workflow

import (
	"sync"

	"github.com/hupe1980/chatmesh/core"
)

// Checkpointer stores per-thread working state between workflow runs. It is
// process-local convenience only; durable truth lives in the conversation
// store and the reconcile node rebuilds working memory from it on every run.
type Checkpointer interface {
	Load(threadID string) (core.ConversationState, bool)
	Save(threadID string, state core.ConversationState)
}

// MemorySaver is a volatile Checkpointer keeping states in a process local
// map. Safe for concurrent access; states are cloned on both load and save.
type MemorySaver struct {
	mu     sync.RWMutex
	states map[string]core.ConversationState
}

// NewMemorySaver constructs an empty in-memory checkpointer.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{states: make(map[string]core.ConversationState)}
}

// Load returns a clone of the thread's checkpointed state.
func (m *MemorySaver) Load(threadID string) (core.ConversationState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[threadID]
	if !ok {
		return core.ConversationState{}, false
	}
	return state.Clone(), true
}

// Save stores a clone of the thread's state.
func (m *MemorySaver) Save(threadID string, state core.ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[threadID] = state.Clone()
}
