package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/chatmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.ConversationStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveMessage(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	threadID, err := store.CreateConversation(ctx, "user-1", "greetings")
	require.NoError(t, err)
	require.NotEmpty(t, threadID)

	saved, err := store.SaveMessage(ctx, threadID, core.MessagePair{
		UserMessage: "hi",
		AIMessage:   "hello",
		Status:      core.StatusCompleted,
	})
	require.NoError(t, err)
	assert.True(t, saved)

	// A missing conversation is reported, not treated as an error.
	saved, err = store.SaveMessage(ctx, "no-such-thread", core.MessagePair{UserMessage: "hi"})
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestInMemoryStore_LoadConversation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	threadID, err := store.CreateConversation(ctx, "user-1", "numbers")
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		_, err := store.SaveMessage(ctx, threadID, core.MessagePair{
			UserMessage: fmt.Sprintf("question %d", i),
			AIMessage:   fmt.Sprintf("answer %d", i),
		})
		require.NoError(t, err)
	}

	t.Run("chronological order", func(t *testing.T) {
		pairs, err := store.LoadConversation(ctx, threadID, 0)
		require.NoError(t, err)
		require.Len(t, pairs, 4)
		assert.Equal(t, "question 1", pairs[0].UserMessage)
		assert.Equal(t, "question 4", pairs[3].UserMessage)
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		pairs, err := store.LoadConversation(ctx, threadID, 1)
		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, "question 4", pairs[0].UserMessage)
	})

	t.Run("unknown thread yields empty slice", func(t *testing.T) {
		pairs, err := store.LoadConversation(ctx, "no-such-thread", 0)
		require.NoError(t, err)
		assert.NotNil(t, pairs)
		assert.Empty(t, pairs)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		pairs, err := store.LoadConversation(ctx, threadID, 0)
		require.NoError(t, err)
		pairs[0].UserMessage = "mutated"

		again, err := store.LoadConversation(ctx, threadID, 0)
		require.NoError(t, err)
		assert.Equal(t, "question 1", again[0].UserMessage)
	})
}

func TestInMemoryStore_UserConversations(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	oldID, err := store.CreateConversation(ctx, "user-1", "old chat")
	require.NoError(t, err)
	_, err = store.CreateConversation(ctx, "someone-else", "not mine")
	require.NoError(t, err)
	newID, err := store.CreateConversation(ctx, "user-1", "new chat")
	require.NoError(t, err)

	// Touch the newer conversation so update time ordering is unambiguous.
	time.Sleep(time.Millisecond)
	_, err = store.SaveMessage(ctx, newID, core.MessagePair{UserMessage: "hi", AIMessage: "hello"})
	require.NoError(t, err)

	summaries, err := store.UserConversations(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, newID, summaries[0].ID)
	assert.Equal(t, 1, summaries[0].MessageCount)
	assert.Equal(t, oldID, summaries[1].ID)
	assert.Equal(t, 0, summaries[1].MessageCount)
}

func TestNew_BackendSelection(t *testing.T) {
	store, err := New(BackendInMemory)
	require.NoError(t, err)
	assert.IsType(t, &InMemoryStore{}, store)

	_, err = New(Backend("cassandra"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
