package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session matches the given ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoQuestions means the supply produced an empty list; the session does not start.
	ErrNoQuestions = errors.New("cannot start: no questions")
	// ErrShortSupply means fewer questions than requested were available. The
	// caller receives the short list alongside this error and may proceed.
	ErrShortSupply = errors.New("fewer questions available than requested")
	// ErrBankNotFound indicates no question bank exists for the exam tag and difficulty.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrSessionNotActive is returned for submissions against an idle or finished session.
	ErrSessionNotActive = errors.New("session is not in progress")
	// ErrAlreadyStarted guards a second Start on the same session instance.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrNotLocked rejects Advance while the current question is still unanswered.
	ErrNotLocked = errors.New("current question is not resolved yet")
	// ErrSessionNotComplete is returned when a summary is requested too early.
	ErrSessionNotComplete = errors.New("session is not complete")
	// ErrLifelineUsed signals a lifeline that was already consumed this session.
	ErrLifelineUsed = errors.New("lifeline not available")
	// ErrUnknownLifeline rejects lifeline kinds the engine does not know.
	ErrUnknownLifeline = errors.New("unknown lifeline")
)
