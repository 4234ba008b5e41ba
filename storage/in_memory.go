package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/chatmesh/core"
)

// InMemoryStore is a volatile ConversationStore implementation keeping
// conversations in a process local map. It is safe for concurrent access and
// best suited for tests or ephemeral demo servers. Returned slices are copies
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*core.Conversation)}
}

// CreateConversation allocates a new conversation and returns its id.
func (s *InMemoryStore) CreateConversation(_ context.Context, ownerID, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &core.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conv.ID] = conv

	return conv.ID, nil
}

// SaveMessage appends a message pair to an existing conversation. A missing
// conversation yields (false, nil); it is not an error condition.
func (s *InMemoryStore) SaveMessage(_ context.Context, threadID string, pair core.MessagePair) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[threadID]
	if !ok {
		return false, nil
	}

	now := time.Now()
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = now
	}
	pair.UpdatedAt = now

	conv.Pairs = append(conv.Pairs, pair)
	conv.UpdatedAt = now

	return true, nil
}

// LoadConversation returns message pairs in chronological order. A positive
// limit restricts the result to the newest limit pairs. Unknown threads yield
// an empty slice.
func (s *InMemoryStore) LoadConversation(_ context.Context, threadID string, limit int) ([]core.MessagePair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[threadID]
	if !ok {
		return []core.MessagePair{}, nil
	}

	pairs := conv.Pairs
	if limit > 0 && limit < len(pairs) {
		pairs = pairs[len(pairs)-limit:]
	}

	out := make([]core.MessagePair, len(pairs))
	copy(out, pairs)

	return out, nil
}

// UserConversations lists the owner's conversations newest first by update
// time.
func (s *InMemoryStore) UserConversations(_ context.Context, ownerID string) ([]core.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := []core.ConversationSummary{}
	for _, conv := range s.conversations {
		if conv.OwnerID != ownerID {
			continue
		}
		summaries = append(summaries, core.ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Pairs),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}
