package quiz

import (
	"math/rand"
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// Phase is the session state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseAwaitingAnswer: a question is presented and the clock is running.
	PhaseAwaitingAnswer
	// PhaseLocked: the current question is resolved and the result is showing.
	PhaseLocked
	// PhaseComplete is terminal; a new playthrough requires a fresh session.
	PhaseComplete
)

// EventType names the signals the engine emits for a presentation layer.
type EventType string

const (
	EventQuestionPresented EventType = "questionPresented"
	EventTick              EventType = "tick"
	EventLowTime           EventType = "lowTime"
	EventAnswerResolved    EventType = "answerResolved"
	EventStreakMilestone   EventType = "streakMilestone"
	EventLifelineApplied   EventType = "lifelineApplied"
	EventSessionComplete   EventType = "sessionComplete"
)

// lowTimeThreshold is the remaining-seconds mark that triggers the warning signal.
const lowTimeThreshold = 5

// defaultFreezeDelay is how long the freeze lifeline suspends the clock.
const defaultFreezeDelay = 10 * time.Second

// QuestionView is the presentation-safe projection of the current question;
// it never carries the correct answer.
type QuestionView struct {
	Index           int      `json:"index"`
	Total           int      `json:"total"`
	Text            string   `json:"text"`
	Category        string   `json:"category"`
	Answers         []string `json:"answers"`
	DurationSeconds int      `json:"durationSeconds"`
}

// Event is one engine signal plus the state snapshot it left behind.
type Event struct {
	Type     EventType
	Question *QuestionView
	TimeLeft int
	Outcome  *domain.Outcome
	Summary  *domain.Summary
	Lifeline domain.Lifeline
	Hidden   []string
	State    domain.SessionState
}

// LifelineResult reports the immediate effect of a consumed lifeline.
type LifelineResult struct {
	Lifeline domain.Lifeline
	// Hidden lists the answers removed by the 50/50 lifeline.
	Hidden []string
	// Done reports that skipping the final question completed the session.
	Done bool
}

// Session is one player's playthrough from the first question to the final
// resolution. The clock tick, the player's submission, and the deferred
// freeze-expiry are the only asynchronous event sources; all three funnel
// through the session mutex, and a per-question resolved flag makes the first
// of {submit, timeout} win while the loser is a silent no-op.
type Session struct {
	id   string
	user string

	mu        sync.Mutex
	phase     Phase
	questions []domain.AnsweredQuestion
	state     domain.SessionState
	lifelines lifelineSet
	resolved  bool
	summary   *domain.Summary
	aborted   bool

	clock       *clock
	freezeDelay time.Duration
	freezeTimer *time.Timer

	rnd *rand.Rand
	now func() time.Time

	subscribers map[chan Event]struct{}
}

// NewSession builds an idle session over the given question list. The list
// order is randomized on Start; Start fails with domain.ErrNoQuestions when
// the list is empty.
func NewSession(id, user string, questions []domain.Question) *Session {
	return NewSessionWithTiming(id, user, questions, time.Second, defaultFreezeDelay)
}

// NewSessionWithTiming is test-only: it shrinks the tick interval and the
// freeze-lifeline delay so timing behavior can be exercised deterministically.
func NewSessionWithTiming(id, user string, questions []domain.Question, tick, freezeDelay time.Duration) *Session {
	answered := make([]domain.AnsweredQuestion, 0, len(questions))
	for _, q := range questions {
		answered = append(answered, domain.AnsweredQuestion{Question: q})
	}
	s := &Session{
		id:          id,
		user:        user,
		phase:       PhaseIdle,
		questions:   answered,
		state:       domain.NewSessionState(),
		lifelines:   newLifelineSet(),
		freezeDelay: freezeDelay,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
		subscribers: make(map[chan Event]struct{}),
	}
	s.clock = newClock(tick, s.handleTick, s.handleExpiry)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// User returns the player this session belongs to.
func (s *Session) User() string { return s.user }

// Start transitions Idle -> InProgress: resets state, shuffles question and
// answer order, and presents question 0.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return domain.ErrAlreadyStarted
	}
	if len(s.questions) == 0 {
		return domain.ErrNoQuestions
	}

	s.state = domain.NewSessionState()
	s.lifelines = newLifelineSet()
	s.rnd.Shuffle(len(s.questions), func(i, j int) {
		s.questions[i], s.questions[j] = s.questions[j], s.questions[i]
	})
	for i := range s.questions {
		s.questions[i].ShuffledAnswers = s.shuffleAnswers(s.questions[i].Question)
		s.questions[i].UserSelected = ""
	}
	s.presentLocked()
	return nil
}

// shuffleAnswers produces the fixed answer order for one question via
// Fisher-Yates (rand.Shuffle), not a random comparator.
func (s *Session) shuffleAnswers(q domain.Question) []string {
	answers := make([]string, 0, 1+len(q.IncorrectAnswers))
	answers = append(answers, q.CorrectAnswer)
	answers = append(answers, q.IncorrectAnswers...)
	s.rnd.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
	return answers
}

func (s *Session) presentLocked() {
	q := &s.questions[s.state.QuestionIndex]
	duration := q.Difficulty.CountdownSeconds()

	s.cancelFreezeTimerLocked()
	s.resolved = false
	s.phase = PhaseAwaitingAnswer
	s.state.IsFrozen = false
	s.state.TimeLeft = duration
	// Start bumps the clock generation, so a freeze scheduled on an earlier
	// question can never thaw this one.
	s.clock.Start(duration)

	s.broadcastLocked(Event{
		Type:     EventQuestionPresented,
		Question: s.questionViewLocked(),
		TimeLeft: duration,
	})
}

func (s *Session) questionViewLocked() *QuestionView {
	q := &s.questions[s.state.QuestionIndex]
	answers := append([]string(nil), q.ShuffledAnswers...)
	return &QuestionView{
		Index:           s.state.QuestionIndex,
		Total:           len(s.questions),
		Text:            q.Text,
		Category:        q.Category,
		Answers:         answers,
		DurationSeconds: q.Difficulty.CountdownSeconds(),
	}
}

// Submit records the player's answer for the current question. A submission
// after the question is already resolved (double click, or losing the race
// against the timeout) is a silent no-op.
func (s *Session) Submit(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseAwaitingAnswer:
	case PhaseLocked:
		return nil
	default:
		return domain.ErrSessionNotActive
	}
	if s.resolved {
		return nil
	}
	s.resolveLocked(answer)
	return nil
}

// handleExpiry is the clock's timeout callback; it loses silently if a manual
// submission resolved the question first.
func (s *Session) handleExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingAnswer || s.resolved {
		return
	}
	s.resolveLocked(domain.SelectedTimeout)
}

func (s *Session) handleTick(timeLeft int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingAnswer {
		return
	}
	s.state.TimeLeft = timeLeft
	s.broadcastLocked(Event{Type: EventTick, TimeLeft: timeLeft})
	if timeLeft == lowTimeThreshold {
		s.broadcastLocked(Event{Type: EventLowTime, TimeLeft: timeLeft})
	}
}

// resolveLocked is the single decision point per question: it runs at most
// once, for whichever of {submit, timeout, skip} arrives first.
func (s *Session) resolveLocked(selected string) {
	q := &s.questions[s.state.QuestionIndex]
	timeLeft := s.clock.TimeLeft()
	s.clock.Stop()
	s.cancelFreezeTimerLocked()

	q.UserSelected = selected
	outcome := Evaluate(selected, q.Question, s.state.Streak, timeLeft)
	s.applyOutcomeLocked(outcome)
}

func (s *Session) applyOutcomeLocked(outcome domain.Outcome) {
	ApplyOutcome(&s.state, outcome)
	s.resolved = true
	s.phase = PhaseLocked
	s.state.IsFrozen = false

	s.broadcastLocked(Event{Type: EventAnswerResolved, Outcome: &outcome})
	if outcome.Milestone {
		s.broadcastLocked(Event{Type: EventStreakMilestone, Outcome: &outcome})
	}
}

// Advance moves Locked -> next question, or -> Complete when the list is
// exhausted. Advancing while the current question is still unanswered is
// rejected; that is what prevents double-advance and double-score.
func (s *Session) Advance() (done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseLocked {
		return false, domain.ErrNotLocked
	}
	if s.state.QuestionIndex >= len(s.questions) {
		s.completeLocked()
		return true, nil
	}
	s.presentLocked()
	return false, nil
}

func (s *Session) completeLocked() {
	s.phase = PhaseComplete
	summary := BuildSummary(s.id, s.user, s.state, s.now())
	s.summary = &summary
	s.broadcastLocked(Event{Type: EventSessionComplete, Summary: &summary})
}

// UseLifeline consumes a lifeline and applies its effect to the current
// question. Each returns domain.ErrLifelineUsed once consumed.
func (s *Session) UseLifeline(kind domain.Lifeline) (LifelineResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingAnswer {
		return LifelineResult{}, domain.ErrSessionNotActive
	}
	switch kind {
	case domain.LifelineFiftyFifty, domain.LifelineFreeze, domain.LifelineSkip:
	default:
		return LifelineResult{}, domain.ErrUnknownLifeline
	}
	if !s.lifelines.consume(kind) {
		return LifelineResult{}, domain.ErrLifelineUsed
	}
	s.state.Lifelines = s.lifelines.snapshot()

	result := LifelineResult{Lifeline: kind}
	switch kind {
	case domain.LifelineFiftyFifty:
		result.Hidden = pickHidden(s.questions[s.state.QuestionIndex].Question, s.rnd)
		s.broadcastLocked(Event{Type: EventLifelineApplied, Lifeline: kind, Hidden: result.Hidden})
	case domain.LifelineFreeze:
		s.freezeLocked()
		s.broadcastLocked(Event{Type: EventLifelineApplied, Lifeline: kind})
	case domain.LifelineSkip:
		s.broadcastLocked(Event{Type: EventLifelineApplied, Lifeline: kind})
		s.skipLocked()
		result.Done = s.phase == PhaseComplete
	}
	return result, nil
}

// freezeLocked suspends the clock and schedules the automatic thaw. The thaw
// captures the clock generation so that, if the session has moved to another
// question before it fires, it is a no-op instead of unfreezing an unrelated
// countdown.
func (s *Session) freezeLocked() {
	s.clock.Freeze()
	s.state.IsFrozen = true
	gen := s.clock.Generation()
	s.freezeTimer = time.AfterFunc(s.freezeDelay, func() { s.thaw(gen) })
}

func (s *Session) thaw(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock.Generation() != gen || s.phase != PhaseAwaitingAnswer {
		return
	}
	s.clock.Unfreeze()
	s.state.IsFrozen = false
}

func (s *Session) cancelFreezeTimerLocked() {
	if s.freezeTimer != nil {
		s.freezeTimer.Stop()
		s.freezeTimer = nil
	}
}

// skipLocked resolves the current question with the flat point value: no time
// bonus, no streak credit, and the streak is neither incremented nor reset.
// The question advances immediately.
func (s *Session) skipLocked() {
	q := &s.questions[s.state.QuestionIndex]
	s.clock.Stop()
	s.cancelFreezeTimerLocked()

	q.UserSelected = domain.SelectedSkipped
	s.applyOutcomeLocked(domain.Outcome{
		QuestionID: q.ID,
		Correct:    true,
		Points:     BasePoints,
		NewStreak:  s.state.Streak,
	})

	if s.state.QuestionIndex >= len(s.questions) {
		s.completeLocked()
		return
	}
	s.presentLocked()
}

// Abort cancels an in-progress session: the clock stops, any pending freeze
// thaw is invalidated, and nothing beyond the already-resolved questions is
// committed. No summary is emitted.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseComplete || s.phase == PhaseIdle {
		s.phase = PhaseComplete
		return
	}
	s.clock.Stop()
	s.cancelFreezeTimerLocked()
	s.aborted = true
	s.phase = PhaseComplete
}

// Phase reports the state machine position.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// State returns a copy of the running totals.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Summary returns the terminal summary; it exists only after a completed
// (not aborted) session.
func (s *Session) Summary() (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil || s.aborted {
		return domain.Summary{}, domain.ErrSessionNotComplete
	}
	return *s.summary, nil
}

// Review returns the answer transcript: every question in presentation order
// with its shuffled answers and what the player selected.
func (s *Session) Review() []domain.AnsweredQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AnsweredQuestion, len(s.questions))
	copy(out, s.questions)
	return out
}

// Subscribe returns a channel of engine events. The current question is
// replayed to the new subscriber so late joiners render immediately. The
// caller must invoke the cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	if s.phase == PhaseAwaitingAnswer {
		ch <- s.withStateLocked(Event{
			Type:     EventQuestionPresented,
			Question: s.questionViewLocked(),
			TimeLeft: s.state.TimeLeft,
		})
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) withStateLocked(ev Event) Event {
	ev.State = s.state
	return ev
}

func (s *Session) broadcastLocked(ev Event) {
	ev = s.withStateLocked(ev)
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest pending event so a slow subscriber cannot
			// block the state machine.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
