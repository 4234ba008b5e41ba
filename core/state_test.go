package core

import "testing"

func TestConversationState_Clone(t *testing.T) {
	s := NewConversationState("t1")
	s.Messages = append(s.Messages, NewHumanMessage("hi"), NewAssistantMessage("hello"))
	s.Summary = "greeting"
	s.TokensUsed = map[string]int{"total_tokens": 10}

	clone := s.Clone()
	clone.Messages[0].Content = "changed"
	clone.TokensUsed["total_tokens"] = 99
	clone.Summary = "other"

	if s.Messages[0].Content != "hi" {
		t.Error("clone should not share message backing array")
	}
	if s.TokensUsed["total_tokens"] != 10 {
		t.Error("clone should not share token usage map")
	}
	if s.Summary != "greeting" {
		t.Error("clone should not affect original summary")
	}
}

func TestConversationState_LastAssistantMessage(t *testing.T) {
	s := NewConversationState("t1")
	if _, ok := s.LastAssistantMessage(); ok {
		t.Fatal("empty state should have no assistant message")
	}

	s.Messages = append(s.Messages,
		NewAssistantMessage("first"),
		NewHumanMessage("question"),
		NewAssistantMessage("second"),
	)

	msg, ok := s.LastAssistantMessage()
	if !ok || msg.Content != "second" {
		t.Fatalf("expected newest assistant message, got %+v", msg)
	}
}

func TestNewMessage_AssignsUniqueIdentity(t *testing.T) {
	a := NewHumanMessage("same content")
	b := NewHumanMessage("same content")

	if a.ID == "" || b.ID == "" {
		t.Fatal("messages must carry identity tokens")
	}
	if a.ID == b.ID {
		t.Error("identity tokens must be unique per message")
	}
	if a.Role != RoleHuman {
		t.Errorf("unexpected role: %s", a.Role)
	}
}
