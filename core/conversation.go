package core

import (
	"context"
	"time"
)

// Status tracks the lifecycle of a persisted message pair.
type Status string

const (
	// StatusProcessing marks a pair whose turn is still in flight.
	StatusProcessing Status = "processing"
	// StatusCompleted marks a successfully finished turn.
	StatusCompleted Status = "completed"
	// StatusFailed marks a turn whose model invocation failed.
	StatusFailed Status = "failed"
)

// MessagePair is one persisted conversational turn: the user message, the
// assistant reply and the metadata captured while producing it. A pair is
// written exactly once per turn, including failed turns.
type MessagePair struct {
	UserMessage string `json:"user_message"`
	AIMessage   string `json:"ai_message"`

	// Summary is the cumulative conversation summary snapshot at the time
	// the pair was written. Reconciliation adopts it on the next turn.
	Summary string `json:"summary,omitempty"`

	// TokensUsed is an open key/count map; a detailed breakdown is not part
	// of the contract and backends must tolerate it being empty.
	TokensUsed map[string]int `json:"tokens_used,omitempty"`

	ModelVersion   string  `json:"model_version,omitempty"`
	Status         Status  `json:"status"`
	ProcessingTime float64 `json:"processing_time,omitempty"` // seconds
	ErrorMessage   string  `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Conversation groups an ordered collection of message pairs under an owner.
type Conversation struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Pairs     []MessagePair `json:"pairs,omitempty"`
}

// ConversationSummary is the listing shape returned when enumerating an
// owner's conversations.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// ConversationStore persists conversations and their message pairs.
//
// Contract:
//   - SaveMessage returns (false, nil) when the conversation does not exist;
//     a missing conversation is not an error condition.
//   - LoadConversation returns pairs in chronological order (oldest first)
//     and an empty slice, never an error, for an unknown thread. A positive
//     limit restricts the result to the newest limit pairs.
//   - UserConversations returns summaries ordered newest first by update time.
type ConversationStore interface {
	CreateConversation(ctx context.Context, ownerID, title string) (string, error)
	SaveMessage(ctx context.Context, threadID string, pair MessagePair) (bool, error)
	LoadConversation(ctx context.Context, threadID string, limit int) ([]MessagePair, error)
	UserConversations(ctx context.Context, ownerID string) ([]ConversationSummary, error)
}
