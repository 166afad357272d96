package quiz

import (
	"math/rand"

	"trivia-session-service/internal/domain"
)

// lifelineSet tracks one-time-use power-up availability for a session.
// Consumption is monotonic; the set is rebuilt only on session start.
type lifelineSet struct {
	available domain.Lifelines
}

func newLifelineSet() lifelineSet {
	return lifelineSet{available: domain.NewLifelines()}
}

// consume flips a lifeline to used. It reports false if the lifeline was
// already consumed or the kind is unknown.
func (l *lifelineSet) consume(kind domain.Lifeline) bool {
	switch kind {
	case domain.LifelineFiftyFifty:
		if !l.available.FiftyFifty {
			return false
		}
		l.available.FiftyFifty = false
	case domain.LifelineFreeze:
		if !l.available.Freeze {
			return false
		}
		l.available.Freeze = false
	case domain.LifelineSkip:
		if !l.available.Skip {
			return false
		}
		l.available.Skip = false
	default:
		return false
	}
	return true
}

func (l *lifelineSet) snapshot() domain.Lifelines {
	return l.available
}

// pickHidden selects the incorrect answers the 50/50 lifeline hides: exactly
// two when at least two exist, otherwise every incorrect answer there is.
// The correct answer is never a candidate.
func pickHidden(q domain.Question, rnd *rand.Rand) []string {
	incorrect := q.IncorrectAnswers
	if len(incorrect) <= 2 {
		return append([]string(nil), incorrect...)
	}
	order := rnd.Perm(len(incorrect))
	return []string{incorrect[order[0]], incorrect[order[1]]}
}
