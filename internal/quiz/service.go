package quiz

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"trivia-session-service/internal/domain"
)

// QuestionSource produces the question list for a session. Implementations
// that cannot satisfy amount return the questions they do have together with
// domain.ErrShortSupply; the service proceeds with the short list rather than
// failing (degrade-gracefully policy).
type QuestionSource interface {
	Fetch(ctx context.Context, examTag string, difficulty domain.Difficulty, amount int) ([]domain.Question, error)
}

// SessionRegistry stores live session engines (in-memory, Redis-marked, etc).
type SessionRegistry interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// SummarySink receives the terminal summary of each completed session for an
// external store to persist. The engine never reads back confirmation.
type SummarySink interface {
	RecordSummary(ctx context.Context, summary domain.Summary) error
}

// Service contains the quiz session use cases.
type Service struct {
	source   QuestionSource
	sessions SessionRegistry
	sink     SummarySink
}

func NewService(source QuestionSource, sessions SessionRegistry, sink SummarySink) *Service {
	return &Service{source: source, sessions: sessions, sink: sink}
}

// StartSession fetches questions and starts a fresh session for the user.
// A short supply is tolerated; an empty one fails with domain.ErrNoQuestions.
func (s *Service) StartSession(ctx context.Context, user, examTag string, difficulty domain.Difficulty, amount int) (*Session, error) {
	questions, err := s.source.Fetch(ctx, examTag, difficulty, amount)
	if err != nil {
		if !errors.Is(err, domain.ErrShortSupply) {
			return nil, err
		}
		log.Printf("short supply for %s/%s: wanted %d, got %d", examTag, difficulty, amount, len(questions))
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	session := NewSession(uuid.NewString(), user, questions)
	if err := session.Start(); err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return session, nil
}

// Get looks up a live session.
func (s *Service) Get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Submit records an answer on the session's current question.
func (s *Service) Submit(_ context.Context, sessionID, answer string) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	return session.Submit(answer)
}

// UseLifeline applies a lifeline to the session's current question. Skipping
// the final question completes the session, so that path commits the summary
// the same way Advance does.
func (s *Service) UseLifeline(ctx context.Context, sessionID string, kind domain.Lifeline) (LifelineResult, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return LifelineResult{}, err
	}
	result, err := session.UseLifeline(kind)
	if err != nil {
		return result, err
	}
	if result.Done {
		if err := s.commitSummary(ctx, sessionID, session); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Advance moves the session past a resolved question. When the session
// completes, its summary is handed to the sink; a sink failure is logged, not
// surfaced, since the playthrough itself succeeded.
func (s *Service) Advance(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return false, err
	}
	done, err := session.Advance()
	if err != nil || !done {
		return done, err
	}
	return true, s.commitSummary(ctx, sessionID, session)
}

// commitSummary hands the terminal summary to the sink and drops the session
// from the registry. Every completion path funnels through here.
func (s *Service) commitSummary(ctx context.Context, sessionID string, session *Session) error {
	summary, err := session.Summary()
	if err != nil {
		return err
	}
	if s.sink != nil {
		if err := s.sink.RecordSummary(ctx, summary); err != nil {
			log.Printf("record summary for %s: %v", sessionID, err)
		}
	}
	s.sessions.Delete(sessionID)
	return nil
}

// Abort cancels a session: the clock stops, pending lifeline timers are
// invalidated, and no summary is committed.
func (s *Service) Abort(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Abort()
	s.sessions.Delete(sessionID)
}
