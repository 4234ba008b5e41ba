package core

import "github.com/google/uuid"

// Role identifies the author of a conversational message.
type Role string

const (
	// RoleHuman marks a message written by the end user.
	RoleHuman Role = "human"
	// RoleSystem marks an instruction message injected by the workflow.
	RoleSystem Role = "system"
	// RoleAssistant marks a message produced by the model.
	RoleAssistant Role = "assistant"
)

// Message is a single conversational message. ID is a stable identity token
// assigned at construction so messages stay distinguishable even when role
// and content collide.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message with a fresh identity token.
func NewMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// NewHumanMessage creates a user-authored message.
func NewHumanMessage(content string) Message { return NewMessage(RoleHuman, content) }

// NewSystemMessage creates an instruction message.
func NewSystemMessage(content string) Message { return NewMessage(RoleSystem, content) }

// NewAssistantMessage creates a model-authored message.
func NewAssistantMessage(content string) Message { return NewMessage(RoleAssistant, content) }
