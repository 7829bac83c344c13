// Package store defines the persistence gateway consumed by the interview
// core. Durable storage itself lives in an external results service — this
// package only carries the record types and the Gateway contract, plus the
// in-memory and REST client implementations in subpackages.
package store

import (
	"context"
	"errors"
	"time"
)

// Turn is the atomic unit of interview progress: one persisted
// (question, answer, scores) record. Question text is snapshotted at answer
// time, so later question edits never rewrite history.
type Turn struct {
	// ID uniquely identifies the turn (UUID, assigned by the session layer).
	ID string `json:"id"`

	// TestName references the test the question belonged to.
	TestName string `json:"test_name"`

	// FirstName and LastName carry the candidate identity. Candidates are
	// not deduplicated — identical names are indistinguishable downstream.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Question is the question text as asked (snapshot).
	Question string `json:"question"`

	// Answer is the candidate's raw answer text.
	Answer string `json:"answer"`

	// AutoScore and AutoFeedback are set together or not at all. Both nil
	// means automated scoring failed and the turn awaits human review.
	AutoScore    *float64 `json:"auto_score,omitempty"`
	AutoFeedback *string  `json:"auto_feedback,omitempty"`

	// HumanScore is the reviewer-assigned score; nil means not yet reviewed.
	// A re-save overwrites (last write wins).
	HumanScore *float64 `json:"human_score,omitempty"`

	// Timestamp is when the turn was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// TimeRange bounds a turn query. A zero From or To leaves that side open;
// the zero TimeRange matches everything.
type TimeRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both sides.
func (r TimeRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Gateway is the persistence contract the interview core consumes.
// Implementations must persist each turn atomically (all fields or none) and
// resolve concurrent writes to the same turn deterministically (last write
// wins). Reads are snapshots — callers never hold references into gateway
// state.
type Gateway interface {
	// ListTests returns the names of all available tests.
	ListTests(ctx context.Context) ([]string, error)

	// ListQuestions returns the questions of a test in insertion order.
	ListQuestions(ctx context.Context, testName string) ([]string, error)

	// SaveTurn durably records one turn.
	SaveTurn(ctx context.Context, turn *Turn) error

	// QueryTurns returns the turns recorded for a test, optionally bounded
	// by a time window.
	QueryTurns(ctx context.Context, testName string, window TimeRange) ([]Turn, error)

	// UpdateHumanScore sets (or overwrites) the human score of a turn.
	UpdateHumanScore(ctx context.Context, turnID string, score float64) error
}

// Sentinel errors shared by gateway implementations.
var (
	ErrTestNotFound    = errors.New("test not found")
	ErrTurnNotFound    = errors.New("turn not found")
	ErrScoreOutOfRange = errors.New("score out of range")
)
