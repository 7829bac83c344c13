// Package interview implements the per-candidate interview session state
// machine.
//
// A session walks one candidate through one test: question sequencing,
// answer intake (text or voice), scoring, and atomic per-turn persistence.
// Registration is the manager's validation phase — a session object only
// exists once a candidate identity and a non-empty test have been accepted,
// and from then on it is either in progress or completed. An abandoned
// session is simply one that never reaches completion; it leaves no trace
// beyond the turns already persisted.
//
// The caller (the API layer) must serialize calls into a single session;
// distinct sessions are fully independent.
package interview

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State names a phase of the session lifecycle.
type State string

const (
	// StateInProgress means the session has unanswered questions left.
	StateInProgress State = "in_progress"

	// StateCompleted means every question was answered and persisted. The
	// session object is kept only so the candidate can fetch the summary.
	StateCompleted State = "completed"
)

// Session is one candidate's run through one test. All fields are owned by
// the session; question texts are snapshotted at registration so later test
// edits never affect a running interview.
type Session struct {
	mu sync.Mutex

	id        string
	firstName string
	lastName  string
	testName  string
	questions []string
	idx       int
	state     State
	results   []TurnResult
	started   time.Time
}

// TurnResult is the in-memory record of one answered question, kept for the
// end-of-session summary. Nil score/feedback mean automated scoring failed
// and the turn awaits human review.
type TurnResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Score    *float64 `json:"score,omitempty"`
	Feedback *string  `json:"feedback,omitempty"`
}

// ID returns the session handle.
func (s *Session) ID() string { return s.id }

// Summary is a point-in-time snapshot of a session.
type Summary struct {
	SessionID string       `json:"session_id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	TestName  string       `json:"test_name"`
	State     State        `json:"state"`
	Answered  int          `json:"answered"`
	Total     int          `json:"total"`
	Results   []TurnResult `json:"results"`
}

// summaryLocked builds a snapshot; the caller holds s.mu.
func (s *Session) summaryLocked() *Summary {
	return &Summary{
		SessionID: s.id,
		FirstName: s.firstName,
		LastName:  s.lastName,
		TestName:  s.testName,
		State:     s.state,
		Answered:  s.idx,
		Total:     len(s.questions),
		Results:   append([]TurnResult(nil), s.results...),
	}
}

// advanceLocked moves past the question just persisted; the caller holds
// s.mu. The >= guard treats a corrupted index as completed rather than
// panicking — by construction idx only ever moves to idx+1.
func (s *Session) advanceLocked() {
	s.idx++
	if s.idx >= len(s.questions) {
		s.state = StateCompleted
	}
}

// ValidationError reports rejected registration input. It is
// user-correctable; retrying without changing the input will fail again.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistError reports a failed turn save. It is retryable: the session did
// not advance, and resubmitting the same answer will try the save again.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persisting turn: %v", e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

var (
	// ErrEmptyAnswer rejects an empty submission; the session re-prompts
	// the same question.
	ErrEmptyAnswer = errors.New("empty answer")

	// ErrSessionNotFound means the handle matches no live session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted rejects operations on a finished session.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrVoiceNotConfigured means no recognizer chain was set up.
	ErrVoiceNotConfigured = errors.New("voice answers not configured")
)
