package quiz

import (
	"testing"

	"trivia-session-service/internal/domain"
)

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:               "q1",
		Text:             "What is 2 + 2?",
		Category:         "math",
		Difficulty:       domain.DifficultyEasy,
		CorrectAnswer:    "4",
		IncorrectAnswers: []string{"3", "5", "22"},
	}
}

func TestMultiplierSteps(t *testing.T) {
	cases := []struct {
		streak int
		want   float64
	}{
		{0, 1.0}, {1, 1.0}, {2, 1.0},
		{3, 1.1}, {4, 1.1}, {5, 1.1},
		{6, 1.2}, {7, 1.2}, {8, 1.2},
	}
	for _, c := range cases {
		got := Multiplier(c.streak)
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("multiplier(%d) = %v, want %v", c.streak, got, c.want)
		}
	}
}

func TestEvaluateCorrectAnswer(t *testing.T) {
	q := sampleQuestion()

	// Base 10 + 15s bonus at x1.0.
	out := Evaluate("4", q, 0, 15)
	if !out.Correct || out.Points != 25 || out.NewStreak != 1 {
		t.Fatalf("expected 25 points streak 1, got %+v", out)
	}
	if out.Milestone {
		t.Fatalf("streak 1 must not be a milestone")
	}

	// Streak 3 before answering at timeLeft 0: round(10 * 1.1) = 11.
	out = Evaluate("4", q, 3, 0)
	if out.Points != 11 || out.NewStreak != 4 {
		t.Fatalf("expected 11 points streak 4, got %+v", out)
	}
	if !out.Milestone {
		t.Fatalf("streak 4 should trigger the milestone signal")
	}
}

func TestEvaluateWrongAndTimeout(t *testing.T) {
	q := sampleQuestion()

	out := Evaluate("5", q, 7, 12)
	if out.Correct || out.Points != 0 || out.NewStreak != 0 {
		t.Fatalf("wrong answer must zero points and streak, got %+v", out)
	}

	out = Evaluate(domain.SelectedTimeout, q, 9, 30)
	if out.Correct || out.Points != 0 || out.NewStreak != 0 {
		t.Fatalf("timeout must zero points and streak, got %+v", out)
	}
}

// A question whose correct answer happens to equal the timeout sentinel must
// still be unanswerable by timing out.
func TestEvaluateTimeoutSentinelNeverCorrect(t *testing.T) {
	q := sampleQuestion()
	q.CorrectAnswer = domain.SelectedTimeout
	out := Evaluate(domain.SelectedTimeout, q, 0, 10)
	if out.Correct {
		t.Fatalf("timeout may never score as correct")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	q := sampleQuestion()
	first := Evaluate("4", q, 4, 9)
	second := Evaluate("4", q, 4, 9)
	if first != second {
		t.Fatalf("evaluate must be deterministic: %+v vs %+v", first, second)
	}
}

// Five correct answers with decreasing time left. The multiplier uses the
// streak counted before each answer (0,1,2,3,4), so the bump to x1.1 lands on
// the fourth answer.
func TestEvaluateStreakProgression(t *testing.T) {
	q := sampleQuestion()
	timeLefts := []int{15, 12, 9, 6, 3}
	wantPoints := []int{25, 22, 19, 18, 14} // round((10+t) * multiplier(prior streak))
	streak := 0
	total := 0
	for i, tl := range timeLefts {
		out := Evaluate("4", q, streak, tl)
		if out.Points != wantPoints[i] {
			t.Fatalf("answer %d: points %d, want %d", i, out.Points, wantPoints[i])
		}
		if out.NewStreak != i+1 {
			t.Fatalf("answer %d: streak %d, want %d", i, out.NewStreak, i+1)
		}
		streak = out.NewStreak
		total += out.Points
	}
	if total != 98 {
		t.Fatalf("total score %d, want 98", total)
	}
}
