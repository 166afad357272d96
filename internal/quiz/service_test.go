package quiz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
	"trivia-session-service/internal/quiz"
)

func TestStartSessionAndPlayThrough(t *testing.T) {
	ctx := context.Background()
	service, leaderboard := newTestService(t, 5)

	session, err := service.StartSession(ctx, "alice", "history", domain.DifficultyEasy, 3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.Phase() != quiz.PhaseAwaitingAnswer {
		t.Fatalf("expected awaiting answer, got %v", session.Phase())
	}

	for i := 0; i < 3; i++ {
		if err := service.Submit(ctx, session.ID(), "right"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		done, err := service.Advance(ctx, session.ID())
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if done != (i == 2) {
			t.Fatalf("advance %d: done=%v", i, done)
		}
	}

	summary, err := session.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CorrectCount != 3 || summary.AccuracyPercent != 100 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	// The summary reached the sink and the session left the registry.
	snapshot, err := leaderboard.Snapshot(ctx, 0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].User != "alice" {
		t.Fatalf("expected alice on the leaderboard, got %+v", snapshot.Entries)
	}
	if err := service.Submit(ctx, session.ID(), "right"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("completed session should be gone, got %v", err)
	}
}

func TestSkipOnFinalQuestionDeliversSummary(t *testing.T) {
	ctx := context.Background()
	service, leaderboard := newTestService(t, 1)

	session, err := service.StartSession(ctx, "alice", "history", domain.DifficultyEasy, 1)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	result, err := service.UseLifeline(ctx, session.ID(), domain.LifelineSkip)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !result.Done {
		t.Fatalf("skipping the only question should complete the session")
	}

	snapshot, err := leaderboard.Snapshot(ctx, 0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].User != "alice" || snapshot.Entries[0].Score != quiz.BasePoints {
		t.Fatalf("expected alice's skip score on the leaderboard, got %+v", snapshot.Entries)
	}
	if _, err := service.Get(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("completed session should be gone, got %v", err)
	}
}

func TestStartSessionToleratesShortSupply(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, 2)

	session, err := service.StartSession(ctx, "alice", "history", domain.DifficultyEasy, 10)
	if err != nil {
		t.Fatalf("short supply should not fail the start: %v", err)
	}
	if got := len(session.Review()); got != 2 {
		t.Fatalf("expected the 2 available questions, got %d", got)
	}
}

func TestStartSessionFailsWithoutQuestions(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, 3)

	if _, err := service.StartSession(ctx, "alice", "no-such-exam", domain.DifficultyEasy, 5); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func TestAbortDiscardsSession(t *testing.T) {
	ctx := context.Background()
	service, leaderboard := newTestService(t, 3)

	session, err := service.StartSession(ctx, "alice", "history", domain.DifficultyEasy, 3)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := service.Submit(ctx, session.ID(), "right"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	service.Abort(ctx, session.ID())
	if _, err := service.Get(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("aborted session should be gone, got %v", err)
	}
	snapshot, err := leaderboard.Snapshot(ctx, 0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := len(snapshot.Entries); got != 0 {
		t.Fatalf("aborted session must not reach the leaderboard, got %d entries", got)
	}
}

func newTestService(t *testing.T, bankSize int) (*quiz.Service, *memory.Leaderboard) {
	t.Helper()
	bank := make([]domain.Question, 0, bankSize)
	for i := 0; i < bankSize; i++ {
		bank = append(bank, domain.Question{
			ID:               "q" + string(rune('0'+i)),
			Text:             "Pick the right answer",
			Category:         "history",
			Difficulty:       domain.DifficultyEasy,
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"wrong-1", "wrong-2", "wrong-3"},
		})
	}
	source := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		memory.StaticBankKey("history", domain.DifficultyEasy): bank,
	}), 5*time.Minute)
	leaderboard := memory.NewLeaderboard()
	return quiz.NewService(source, memory.NewSessionRegistry(), leaderboard), leaderboard
}
