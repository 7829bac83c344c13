// Package memory implements the persistence gateway in process memory.
//
// It backs tests and standalone runs where no external results service is
// available. Data does not survive a restart — production deployments should
// point the daemon at a results service via the "rest" store backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/store"
)

// Gateway is an in-memory store.Gateway.
type Gateway struct {
	mu        sync.RWMutex
	tests     []string            // insertion order
	questions map[string][]string // test name -> questions, insertion order
	turns     []store.Turn
	index     map[string]int // turn ID -> position in turns
}

// New creates a gateway seeded with the given tests. Question order within
// each test is preserved as given.
func New(seed map[string][]string) *Gateway {
	g := &Gateway{
		questions: make(map[string][]string),
		index:     make(map[string]int),
	}
	for name, qs := range seed {
		g.tests = append(g.tests, name)
		g.questions[name] = append([]string(nil), qs...)
	}
	return g
}

// AddTest registers a test with its questions, replacing any previous
// definition under the same name.
func (g *Gateway) AddTest(name string, questions []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.questions[name]; !ok {
		g.tests = append(g.tests, name)
	}
	g.questions[name] = append([]string(nil), questions...)
}

// ListTests returns all test names in registration order.
func (g *Gateway) ListTests(ctx context.Context) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.tests...), nil
}

// ListQuestions returns the questions of a test in insertion order.
func (g *Gateway) ListQuestions(ctx context.Context, testName string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	qs, ok := g.questions[testName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTestNotFound, testName)
	}
	return append([]string(nil), qs...), nil
}

// SaveTurn records a copy of the turn. Saving an ID twice overwrites the
// earlier record in place (last write wins).
func (g *Gateway) SaveTurn(ctx context.Context, turn *store.Turn) error {
	if turn.ID == "" {
		return fmt.Errorf("turn ID must not be empty")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if pos, ok := g.index[turn.ID]; ok {
		g.turns[pos] = *turn
		return nil
	}
	g.index[turn.ID] = len(g.turns)
	g.turns = append(g.turns, *turn)
	return nil
}

// QueryTurns returns a snapshot of the turns for a test within the window.
func (g *Gateway) QueryTurns(ctx context.Context, testName string, window store.TimeRange) ([]store.Turn, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []store.Turn
	for _, t := range g.turns {
		if t.TestName == testName && window.Contains(t.Timestamp) {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateHumanScore sets the human score on a turn, overwriting any earlier
// review. The score must lie within [0, 5].
func (g *Gateway) UpdateHumanScore(ctx context.Context, turnID string, score float64) error {
	if score < provider.ScoreMin || score > provider.ScoreMax {
		return fmt.Errorf("%w: human score %v outside [%v, %v]",
			store.ErrScoreOutOfRange, score, provider.ScoreMin, provider.ScoreMax)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	pos, ok := g.index[turnID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrTurnNotFound, turnID)
	}
	s := score
	g.turns[pos].HumanScore = &s
	return nil
}
