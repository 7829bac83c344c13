package scorer

import (
	"errors"
	"testing"

	"github.com/nZiben/ai-interviewer/internal/provider"
)

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantScore float64
		wantErr   bool
	}{
		{name: "plain json", content: `{"score": 4, "feedback": "solid"}`, wantScore: 4},
		{name: "fractional score", content: `{"score": 3.5, "feedback": "ok"}`, wantScore: 3.5},
		{name: "numeric string score", content: `{"score": "4.5", "feedback": "good"}`, wantScore: 4.5},
		{name: "markdown fenced", content: "```json\n{\"score\": 2, \"feedback\": \"thin\"}\n```", wantScore: 2},
		{name: "boundary low", content: `{"score": 0, "feedback": "nothing"}`, wantScore: 0},
		{name: "boundary high", content: `{"score": 5, "feedback": "perfect"}`, wantScore: 5},
		{name: "word score", content: `{"score": "nine", "feedback": "?"}`, wantErr: true},
		{name: "missing score", content: `{"feedback": "no score"}`, wantErr: true},
		{name: "above range", content: `{"score": 7, "feedback": "overshoot"}`, wantErr: true},
		{name: "below range", content: `{"score": -1, "feedback": "undershoot"}`, wantErr: true},
		{name: "not json", content: "I'd give this a 4 out of 5.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := ParseEvaluation("test", tt.content)
			if tt.wantErr {
				var scoringErr *provider.ScoringError
				if !errors.As(err, &scoringErr) {
					t.Fatalf("err = %v, want *provider.ScoringError", err)
				}
				if scoringErr.Reason != "unparseable score" {
					t.Errorf("reason = %q, want %q", scoringErr.Reason, "unparseable score")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEvaluation: %v", err)
			}
			if eval.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", eval.Score, tt.wantScore)
			}
		})
	}
}

func TestUserPrompt(t *testing.T) {
	got := UserPrompt("What is a goroutine?", "A lightweight thread.")
	want := "Question: What is a goroutine?\nAnswer: A lightweight thread."
	if got != want {
		t.Errorf("UserPrompt = %q, want %q", got, want)
	}
}
