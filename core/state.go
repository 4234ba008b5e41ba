package core

// ConversationState is the working memory of one conversation turn, threaded
// through workflow nodes. Messages are kept in chronological insertion order;
// Summary is the cumulative compression of everything pruned so far and only
// ever grows, never shrinks, unless explicitly reset.
//
// The state is short-lived: it is rebuilt from the last persisted message pair
// on every turn, so a process-local copy can always be reconstructed without a
// shared live checkpoint store.
type ConversationState struct {
	ThreadID   string         `json:"thread_id"`
	Messages   []Message      `json:"messages"`
	Summary    string         `json:"summary"`
	TokensUsed map[string]int `json:"tokens_used,omitempty"`
}

// NewConversationState creates an empty state for the given thread.
func NewConversationState(threadID string) ConversationState {
	return ConversationState{ThreadID: threadID}
}

// Clone returns a deep copy safe for independent mutation.
func (s ConversationState) Clone() ConversationState {
	clone := ConversationState{ThreadID: s.ThreadID, Summary: s.Summary}
	if s.Messages != nil {
		clone.Messages = make([]Message, len(s.Messages))
		copy(clone.Messages, s.Messages)
	}
	if s.TokensUsed != nil {
		clone.TokensUsed = make(map[string]int, len(s.TokensUsed))
		for k, v := range s.TokensUsed {
			clone.TokensUsed[k] = v
		}
	}
	return clone
}

// LastAssistantMessage returns the most recent assistant message, or false
// when the state holds none.
func (s ConversationState) LastAssistantMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}
