package domain

import "time"

// Difficulty selects a question bank and the per-question countdown length.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// CountdownSeconds maps difficulty to the starting countdown duration.
// Unknown difficulties fall back to a short 15-second timer.
func (d Difficulty) CountdownSeconds() int {
	switch d {
	case DifficultyEasy:
		return 60
	case DifficultyMedium:
		return 50
	case DifficultyHard:
		return 40
	default:
		return 15
	}
}

// Question is a single multiple-choice question. Immutable once fetched.
type Question struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	CorrectAnswer    string     `json:"correctAnswer"`
	IncorrectAnswers []string   `json:"incorrectAnswers"`
}

// Sentinel values stored in AnsweredQuestion.UserSelected for questions that
// were never answered by a click.
const (
	SelectedTimeout = "timeout"
	SelectedSkipped = "skipped"
)

// AnsweredQuestion is a Question as it was presented: answers are shuffled
// once when the question is first rendered and fixed for its lifetime.
// UserSelected is set exactly once, when the player answers, times out, or
// skips, and never mutated afterward.
type AnsweredQuestion struct {
	Question
	ShuffledAnswers []string `json:"shuffledAnswers"`
	UserSelected    string   `json:"userSelected,omitempty"`
}

// Outcome is the result of evaluating one resolved question.
type Outcome struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
	NewStreak  int    `json:"newStreak"`
	// Milestone flags a correct answer that pushed the streak above 2; the
	// presentation layer uses it to trigger a celebration effect.
	Milestone bool `json:"milestone,omitempty"`
}

// Lifeline identifies a one-time-use power-up.
type Lifeline string

const (
	LifelineFiftyFifty Lifeline = "fiftyFifty"
	LifelineFreeze     Lifeline = "freeze"
	LifelineSkip       Lifeline = "skip"
)

// Lifelines tracks availability; each flag flips available -> consumed once
// per session and resets only on a fresh session start.
type Lifelines struct {
	FiftyFifty bool `json:"fiftyFifty"`
	Freeze     bool `json:"freeze"`
	Skip       bool `json:"skip"`
}

// NewLifelines returns the all-available starting set.
func NewLifelines() Lifelines {
	return Lifelines{FiftyFifty: true, Freeze: true, Skip: true}
}

// SessionState is the single live snapshot of a session's running totals.
// Invariants: QuestionIndex is a valid index into the question sequence
// while the session is in progress and equals its length once complete;
// CorrectCount+WrongCount == QuestionIndex after every recorded outcome.
type SessionState struct {
	QuestionIndex int       `json:"questionIndex"`
	Score         int       `json:"score"`
	Streak        int       `json:"streak"`
	CorrectCount  int       `json:"correctCount"`
	WrongCount    int       `json:"wrongCount"`
	XP            int       `json:"xp"`
	Level         int       `json:"level"`
	Lifelines     Lifelines `json:"lifelines"`
	IsFrozen      bool      `json:"isFrozen"`
	TimeLeft      int       `json:"timeLeft"`
}

// NewSessionState returns the reset state a session starts from.
func NewSessionState() SessionState {
	return SessionState{Level: 1, Lifelines: NewLifelines()}
}

// Tier is the qualitative performance label derived from final accuracy.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierPoor      Tier = "poor"
)

// Summary is the terminal record emitted once a session completes.
type Summary struct {
	SessionID       string    `json:"sessionId"`
	User            string    `json:"user"`
	FinalScore      int       `json:"finalScore"`
	XPGained        int       `json:"xpGained"`
	Level           int       `json:"level"`
	CorrectCount    int       `json:"correctCount"`
	WrongCount      int       `json:"wrongCount"`
	AccuracyPercent int       `json:"accuracyPercent"`
	Tier            Tier      `json:"tier"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// LeaderboardEntry is a snapshot-friendly view of a recorded summary.
type LeaderboardEntry struct {
	User  string `json:"user"`
	Score int    `json:"score"`
	Level int    `json:"level"`
}

// Leaderboard captures the ordered scoreboard across sessions.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
