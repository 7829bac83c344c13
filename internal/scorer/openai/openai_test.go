package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nZiben/ai-interviewer/internal/config"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/scorer"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding chat request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestEvaluate(t *testing.T) {
	srv := chatServer(t, `{"score": 4.5, "feedback": "clear and mostly complete"}`)
	defer srv.Close()

	s := New(config.OpenAIScorerConfig{APIKey: "test", Model: "gpt-4o", Endpoint: srv.URL})
	eval, err := s.Evaluate(context.Background(), "What is a mutex?", "A lock around shared state.")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.Score != 4.5 {
		t.Errorf("score = %v, want 4.5", eval.Score)
	}
	if eval.Feedback != "clear and mostly complete" {
		t.Errorf("feedback = %q", eval.Feedback)
	}
}

func TestEvaluateUnparseableScore(t *testing.T) {
	srv := chatServer(t, `{"score": "nine", "feedback": "??"}`)
	defer srv.Close()

	s := New(config.OpenAIScorerConfig{APIKey: "test", Model: "gpt-4o", Endpoint: srv.URL})
	_, err := s.Evaluate(context.Background(), "q", "a")

	var scoringErr *provider.ScoringError
	if !errors.As(err, &scoringErr) {
		t.Fatalf("err = %v, want *provider.ScoringError", err)
	}
	if scoringErr.Reason != "unparseable score" {
		t.Errorf("reason = %q, want %q", scoringErr.Reason, "unparseable score")
	}
}

func TestEvaluateEmptyAnswerSkipsModel(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s := New(config.OpenAIScorerConfig{APIKey: "test", Model: "gpt-4o", Endpoint: srv.URL})
	eval, err := s.Evaluate(context.Background(), "q", "   ")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if called {
		t.Error("empty answer reached the model")
	}
	if eval.Score != 0 || eval.Feedback != scorer.EmptyAnswerFeedback {
		t.Errorf("got %+v, want score 0 with canned feedback", eval)
	}
}

func TestEvaluateBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(config.OpenAIScorerConfig{APIKey: "test", Model: "gpt-4o", Endpoint: srv.URL})
	_, err := s.Evaluate(context.Background(), "q", "a")

	var scoringErr *provider.ScoringError
	if !errors.As(err, &scoringErr) {
		t.Fatalf("err = %v, want *provider.ScoringError", err)
	}
	if scoringErr.Reason != "backend unreachable" {
		t.Errorf("reason = %q, want %q", scoringErr.Reason, "backend unreachable")
	}
}
