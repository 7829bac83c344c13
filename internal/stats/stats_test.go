package stats

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/nZiben/ai-interviewer/internal/store"
	"github.com/nZiben/ai-interviewer/internal/store/memory"
)

func ptr(f float64) *float64 { return &f }

func TestComputeEmpty(t *testing.T) {
	report := Compute("empty-test", nil)
	if report.Turns != 0 {
		t.Errorf("turns = %d, want 0", report.Turns)
	}
	if report.Automated.Mean != nil || report.Human.Mean != nil {
		t.Error("means set on a no-data report")
	}
	if report.Agreement != nil {
		t.Error("agreement set on a no-data report")
	}
	if report.Questions != nil {
		t.Error("question breakdown set on a no-data report")
	}
}

func TestComputeMeans(t *testing.T) {
	turns := []store.Turn{
		{Question: "q1", AutoScore: ptr(3), HumanScore: ptr(4)},
		{Question: "q1", AutoScore: ptr(5)},
		{Question: "q2", HumanScore: ptr(2)},
		{Question: "q2"}, // unscored turn counts toward Turns only
	}
	report := Compute("t", turns)

	if report.Turns != 4 {
		t.Errorf("turns = %d, want 4", report.Turns)
	}
	if report.Automated.Count != 2 || *report.Automated.Mean != 4 {
		t.Errorf("automated = %+v, want count 2 mean 4", report.Automated)
	}
	if report.Human.Count != 2 || *report.Human.Mean != 3 {
		t.Errorf("human = %+v, want count 2 mean 3", report.Human)
	}
}

func TestComputeMeanIsUnrounded(t *testing.T) {
	turns := []store.Turn{
		{Question: "q", AutoScore: ptr(3.5)},
		{Question: "q", AutoScore: ptr(4)},
	}
	report := Compute("t", turns)
	if *report.Automated.Mean != 3.75 {
		t.Errorf("mean = %v, want 3.75 (no rounding)", *report.Automated.Mean)
	}
}

func TestComputeHistogram(t *testing.T) {
	turns := []store.Turn{
		{Question: "q", AutoScore: ptr(0.3)}, // rounds to 0, clamps into bucket 1
		{Question: "q", AutoScore: ptr(1.4)}, // bucket 1
		{Question: "q", AutoScore: ptr(3.5)}, // rounds to 4
		{Question: "q", AutoScore: ptr(5)},   // bucket 5
	}
	report := Compute("t", turns)

	want := [5]int{2, 0, 0, 1, 1}
	if report.Automated.Histogram != want {
		t.Errorf("histogram = %v, want %v", report.Automated.Histogram, want)
	}
}

func TestComputeAgreement(t *testing.T) {
	turns := []store.Turn{
		{Question: "q", AutoScore: ptr(4), HumanScore: ptr(4)},
		{Question: "q", AutoScore: ptr(2), HumanScore: ptr(3)},
		{Question: "q", AutoScore: ptr(5)}, // no human score, excluded from pairs
	}
	report := Compute("t", turns)

	if report.Agreement == nil {
		t.Fatal("agreement missing")
	}
	if report.Agreement.Pairs != 2 {
		t.Errorf("pairs = %d, want 2", report.Agreement.Pairs)
	}
	if math.Abs(report.Agreement.MeanAbsDiff-0.5) > 1e-9 {
		t.Errorf("mean abs diff = %v, want 0.5", report.Agreement.MeanAbsDiff)
	}
}

func TestComputePerfectAgreement(t *testing.T) {
	turns := []store.Turn{
		{Question: "q", AutoScore: ptr(3), HumanScore: ptr(3)},
		{Question: "q", AutoScore: ptr(5), HumanScore: ptr(5)},
	}
	report := Compute("t", turns)
	if report.Agreement.MeanAbsDiff != 0 {
		t.Errorf("mean abs diff = %v, want 0 for identical scores", report.Agreement.MeanAbsDiff)
	}
}

func TestComputeQuestionBreakdown(t *testing.T) {
	turns := []store.Turn{
		{Question: "first", AutoScore: ptr(4)},
		{Question: "second", AutoScore: ptr(2)},
		{Question: "first", AutoScore: ptr(2)},
	}
	report := Compute("t", turns)

	if len(report.Questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(report.Questions))
	}
	if report.Questions[0].Question != "first" || report.Questions[1].Question != "second" {
		t.Errorf("question order = %q, %q, want first-seen order",
			report.Questions[0].Question, report.Questions[1].Question)
	}
	if *report.Questions[0].Automated.Mean != 3 {
		t.Errorf("first question mean = %v, want 3", *report.Questions[0].Automated.Mean)
	}
}

func TestEvaluateQueriesWindow(t *testing.T) {
	gateway := memory.New(map[string][]string{"t": {"q"}})
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	_ = gateway.SaveTurn(ctx, &store.Turn{ID: "in", TestName: "t", Question: "q", AutoScore: ptr(4), Timestamp: base})
	_ = gateway.SaveTurn(ctx, &store.Turn{ID: "out", TestName: "t", Question: "q", AutoScore: ptr(1), Timestamp: base.Add(48 * time.Hour)})

	engine := New(gateway)
	report, err := engine.Evaluate(ctx, "t", store.TimeRange{From: base, To: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Turns != 1 {
		t.Fatalf("turns = %d, want only the in-window turn", report.Turns)
	}
	if *report.Automated.Mean != 4 {
		t.Errorf("mean = %v, want 4", *report.Automated.Mean)
	}
}
