// Package stats aggregates persisted turns into agreement reports between
// automated and human scoring.
//
// All computation is pure and side-effect-free: Compute takes a snapshot of
// turns and never mutates them, so re-running it against the same input
// always yields the same report.
package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/nZiben/ai-interviewer/internal/store"
)

// Engine reads persisted turns through the gateway and computes reports.
type Engine struct {
	gateway store.Gateway
}

// New creates a stats engine over the given gateway.
func New(gateway store.Gateway) *Engine {
	return &Engine{gateway: gateway}
}

// Report is the aggregate over the turns of one test.
type Report struct {
	TestName string `json:"test_name"`

	// Turns is the number of records considered. Zero means "no data" —
	// every summary below is empty and Agreement is nil.
	Turns int `json:"turns"`

	Automated ScoreSummary `json:"automated"`
	Human     ScoreSummary `json:"human"`

	// Agreement compares automated vs. human scores on turns carrying both.
	// Nil when no turn has both scores.
	Agreement *Agreement `json:"agreement,omitempty"`

	// Questions breaks the same aggregates down per question, in first-seen
	// order.
	Questions []QuestionStats `json:"questions,omitempty"`
}

// ScoreSummary aggregates one score column.
type ScoreSummary struct {
	// Count is the number of turns carrying this score.
	Count int `json:"count"`

	// Mean uses the unrounded score values. Nil when Count is zero.
	Mean *float64 `json:"mean,omitempty"`

	// Histogram buckets scores into 1..5 by nearest integer (index 0 is
	// bucket 1). Fractional scores round; anything rounding below 1 lands
	// in bucket 1. Rounding applies to the histogram only, never to Mean.
	Histogram [5]int `json:"histogram"`
}

// Agreement measures how closely automated and human scores track each
// other on turns scored by both.
type Agreement struct {
	// Pairs is the number of turns carrying both scores.
	Pairs int `json:"pairs"`

	// MeanAbsDiff is the mean absolute difference between the two scores.
	// Zero means perfect agreement.
	MeanAbsDiff float64 `json:"mean_abs_diff"`
}

// QuestionStats carries the per-question breakdown.
type QuestionStats struct {
	Question  string       `json:"question"`
	Automated ScoreSummary `json:"automated"`
	Human     ScoreSummary `json:"human"`
	Agreement *Agreement   `json:"agreement,omitempty"`
}

// Evaluate queries the turns of a test (optionally bounded by a time window)
// and computes the report.
func (e *Engine) Evaluate(ctx context.Context, testName string, window store.TimeRange) (*Report, error) {
	turns, err := e.gateway.QueryTurns(ctx, testName, window)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	return Compute(testName, turns), nil
}

// Compute builds the report for a set of turns. Zero turns produce a
// "no data" report rather than a fault.
func Compute(testName string, turns []store.Turn) *Report {
	report := &Report{
		TestName: testName,
		Turns:    len(turns),
	}
	if len(turns) == 0 {
		return report
	}

	report.Automated, report.Human, report.Agreement = summarize(turns)

	// Per-question breakdown, preserving first-seen order.
	byQuestion := make(map[string][]store.Turn)
	var order []string
	for _, t := range turns {
		if _, seen := byQuestion[t.Question]; !seen {
			order = append(order, t.Question)
		}
		byQuestion[t.Question] = append(byQuestion[t.Question], t)
	}
	for _, q := range order {
		auto, human, agreement := summarize(byQuestion[q])
		report.Questions = append(report.Questions, QuestionStats{
			Question:  q,
			Automated: auto,
			Human:     human,
			Agreement: agreement,
		})
	}
	return report
}

func summarize(turns []store.Turn) (auto, human ScoreSummary, agreement *Agreement) {
	var absDiffSum float64
	var pairs int

	for _, t := range turns {
		if t.AutoScore != nil {
			auto.add(*t.AutoScore)
		}
		if t.HumanScore != nil {
			human.add(*t.HumanScore)
		}
		if t.AutoScore != nil && t.HumanScore != nil {
			pairs++
			absDiffSum += math.Abs(*t.AutoScore - *t.HumanScore)
		}
	}

	auto.finalize()
	human.finalize()
	if pairs > 0 {
		agreement = &Agreement{Pairs: pairs, MeanAbsDiff: absDiffSum / float64(pairs)}
	}
	return auto, human, agreement
}

// add folds one score into the summary, using Mean as a running sum until
// finalize divides it.
func (s *ScoreSummary) add(score float64) {
	if s.Mean == nil {
		s.Mean = new(float64)
	}
	*s.Mean += score
	s.Count++
	s.Histogram[bucket(score)]++
}

func (s *ScoreSummary) finalize() {
	if s.Count > 0 {
		*s.Mean /= float64(s.Count)
	}
}

// bucket maps a score onto histogram index 0..4 (buckets 1..5) by nearest
// integer, clamped into range so a 0.3 automated score still shows up.
func bucket(score float64) int {
	b := int(math.Round(score))
	if b < 1 {
		b = 1
	}
	if b > 5 {
		b = 5
	}
	return b - 1
}
