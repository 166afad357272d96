package quiz

import (
	"math"

	"trivia-session-service/internal/domain"
)

// BasePoints is the flat per-question value before time bonus and multiplier.
const BasePoints = 10

// streakStep is how many consecutive correct answers buy one multiplier bump.
const streakStep = 3

// Multiplier returns the streak multiplier for a streak counted before the
// current answer: 1 + floor(streak/3) * 0.1.
func Multiplier(streak int) float64 {
	if streak < 0 {
		streak = 0
	}
	return 1 + float64(streak/streakStep)*0.1
}

// Evaluate scores a single resolved question. selected is the player's answer
// text, or domain.SelectedTimeout when the clock expired. streak is counted
// before this answer; timeLeft is the countdown value at resolution.
//
// Evaluate is pure: same inputs, same Outcome, no hidden state. Calling it
// twice for the same question index is a programmer error and must be guarded
// by the session state machine.
func Evaluate(selected string, q domain.Question, streak, timeLeft int) domain.Outcome {
	correct := selected != domain.SelectedTimeout && selected == q.CorrectAnswer
	if !correct {
		return domain.Outcome{QuestionID: q.ID}
	}

	timeBonus := timeLeft
	if timeBonus < 0 {
		timeBonus = 0
	}
	points := int(math.Round(float64(BasePoints+timeBonus) * Multiplier(streak)))
	newStreak := streak + 1
	return domain.Outcome{
		QuestionID: q.ID,
		Correct:    true,
		Points:     points,
		NewStreak:  newStreak,
		Milestone:  newStreak > 2,
	}
}
