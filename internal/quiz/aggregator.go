package quiz

import (
	"math"
	"time"

	"trivia-session-service/internal/domain"
)

// xpPerLevel is the XP span of one level.
const xpPerLevel = 100

// ApplyOutcome folds one resolved question into the running totals: score and
// XP grow by the awarded points, the streak is replaced, and exactly one of
// the correct/wrong counters is incremented. QuestionIndex advances here,
// which is what keeps CorrectCount+WrongCount == QuestionIndex after every
// recorded outcome.
//
// XP mirrors score in this design. The level is a one-way ratchet: a later
// downward XP correction never lowers an already-reached level.
func ApplyOutcome(state *domain.SessionState, o domain.Outcome) {
	state.Score += o.Points
	state.Streak = o.NewStreak
	if o.Correct {
		state.CorrectCount++
	} else {
		state.WrongCount++
	}
	state.XP = state.Score
	if lvl := state.XP/xpPerLevel + 1; lvl > state.Level {
		state.Level = lvl
	}
	state.QuestionIndex++
}

// AccuracyPercent is the rounded share of correct answers, 0 when nothing was
// answered.
func AccuracyPercent(correct, wrong int) int {
	answered := correct + wrong
	if answered == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(answered)))
}

// TierFor maps final accuracy onto the fixed performance tiers.
func TierFor(accuracyPercent int) domain.Tier {
	switch {
	case accuracyPercent >= 80:
		return domain.TierExcellent
	case accuracyPercent >= 60:
		return domain.TierGood
	case accuracyPercent >= 40:
		return domain.TierFair
	default:
		return domain.TierPoor
	}
}

// BuildSummary produces the terminal record for a finished session.
func BuildSummary(sessionID, user string, state domain.SessionState, finishedAt time.Time) domain.Summary {
	accuracy := AccuracyPercent(state.CorrectCount, state.WrongCount)
	return domain.Summary{
		SessionID:       sessionID,
		User:            user,
		FinalScore:      state.Score,
		XPGained:        state.XP,
		Level:           state.Level,
		CorrectCount:    state.CorrectCount,
		WrongCount:      state.WrongCount,
		AccuracyPercent: accuracy,
		Tier:            TierFor(accuracy),
		FinishedAt:      finishedAt,
	}
}
