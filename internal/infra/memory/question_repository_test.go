package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-session-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string][]domain.Question{
			StaticBankKey("history", domain.DifficultyEasy): sampleBankQuestions(5),
		}),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.Fetch(context.Background(), "history", domain.DifficultyEasy, 3); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.Fetch(context.Background(), "history", domain.DifficultyEasy, 3); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

// A cache miss takes the cache lock while computing the jittered expiry,
// which also uses the repository rng; the two must never hold the same lock
// at once.
func TestQuestionRepositoryCacheMissReturns(t *testing.T) {
	repo := NewQuestionRepository(NewStaticQuestionLoader(map[string][]domain.Question{
		StaticBankKey("history", domain.DifficultyEasy): sampleBankQuestions(5),
	}), time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := repo.Fetch(context.Background(), "history", domain.DifficultyEasy, 3)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Fetch did not return on a cache miss")
	}
}

func TestQuestionRepositorySamplesWithoutReplacement(t *testing.T) {
	repo := NewQuestionRepository(NewStaticQuestionLoader(map[string][]domain.Question{
		StaticBankKey("history", domain.DifficultyEasy): sampleBankQuestions(10),
	}), time.Minute)

	qs, err := repo.Fetch(context.Background(), "history", domain.DifficultyEasy, 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(qs) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(qs))
	}
	seen := make(map[string]bool)
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in sample", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestQuestionRepositoryShortSupply(t *testing.T) {
	repo := NewQuestionRepository(NewStaticQuestionLoader(map[string][]domain.Question{
		StaticBankKey("history", domain.DifficultyEasy): sampleBankQuestions(2),
	}), time.Minute)

	qs, err := repo.Fetch(context.Background(), "history", domain.DifficultyEasy, 10)
	if !errors.Is(err, domain.ErrShortSupply) {
		t.Fatalf("expected ErrShortSupply, got %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("short supply should still return the bank, got %d", len(qs))
	}

	if _, err := repo.Fetch(context.Background(), "geography", domain.DifficultyEasy, 5); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, examTag string, difficulty domain.Difficulty) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadBank(ctx, examTag, difficulty)
}

func sampleBankQuestions(n int) []domain.Question {
	qs := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, domain.Question{
			ID:               "q" + string(rune('0'+i)),
			Text:             "Pick the right answer",
			Category:         "history",
			Difficulty:       domain.DifficultyEasy,
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"wrong-1", "wrong-2", "wrong-3"},
		})
	}
	return qs
}
