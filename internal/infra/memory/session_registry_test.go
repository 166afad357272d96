package memory

import (
	"testing"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/quiz"
)

func TestSessionRegistryLifecycle(t *testing.T) {
	registry := NewSessionRegistry()

	session := quiz.NewSession("s1", "alice", []domain.Question{{ID: "q1", CorrectAnswer: "right"}})
	registry.Put(session)

	got, ok := registry.Get("s1")
	if !ok || got.ID() != "s1" {
		t.Fatalf("expected session present")
	}

	registry.Delete("s1")
	if _, ok := registry.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
