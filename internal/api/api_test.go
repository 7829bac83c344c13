package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nZiben/ai-interviewer/internal/interview"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/stats"
	"github.com/nZiben/ai-interviewer/internal/store"
	"github.com/nZiben/ai-interviewer/internal/store/memory"
)

type fixedScorer struct{ score float64 }

func (f *fixedScorer) Name() string { return "fixed" }
func (f *fixedScorer) Close() error { return nil }
func (f *fixedScorer) Evaluate(ctx context.Context, question, answer string) (*provider.Evaluation, error) {
	return &provider.Evaluation{Score: f.score, Feedback: "ok"}, nil
}

func newTestServer() (http.Handler, *memory.Gateway) {
	gateway := memory.New(map[string][]string{
		"onboarding": {"What is a goroutine?", "What does defer do?"},
	})
	manager := interview.NewManager(gateway, &fixedScorer{score: 4})
	srv := New(0, manager, stats.New(gateway), gateway)
	return srv.Handler(), gateway
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/sessions", RegisterRequest{
		FirstName: "Ann", LastName: "Lee", TestName: "onboarding",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body)
	}
	var resp RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding register response: %v", err)
	}
	return resp.SessionID
}

func TestRegisterValidationStatus(t *testing.T) {
	h, _ := newTestServer()
	rec := doJSON(t, h, http.MethodPost, "/sessions", RegisterRequest{LastName: "Lee", TestName: "onboarding"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing first name", rec.Code)
	}
}

func TestRegisterUnknownTestStatus(t *testing.T) {
	h, _ := newTestServer()
	rec := doJSON(t, h, http.MethodPost, "/sessions", RegisterRequest{
		FirstName: "Ann", LastName: "Lee", TestName: "ghost",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown test", rec.Code)
	}
}

func TestInterviewFlow(t *testing.T) {
	h, _ := newTestServer()
	id := register(t, h)

	rec := doJSON(t, h, http.MethodGet, "/sessions/"+id+"/question", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("question status = %d: %s", rec.Code, rec.Body)
	}
	var prompt interview.QuestionPrompt
	_ = json.Unmarshal(rec.Body.Bytes(), &prompt)
	if prompt.Text != "What is a goroutine?" {
		t.Errorf("question = %q", prompt.Text)
	}

	rec = doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "A lightweight thread."})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "It defers execution."})
	if rec.Code != http.StatusOK {
		t.Fatalf("final answer status = %d: %s", rec.Code, rec.Body)
	}
	var result interview.SubmitResult
	_ = json.Unmarshal(rec.Body.Bytes(), &result)
	if result.State != interview.StateCompleted {
		t.Errorf("state = %s, want completed", result.State)
	}

	// Further answers conflict with the completed session.
	rec = doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "extra"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 on completed session", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/sessions/"+id+"/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary interview.Summary
	_ = json.Unmarshal(rec.Body.Bytes(), &summary)
	if summary.Answered != 2 || len(summary.Results) != 2 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestEmptyAnswerStatus(t *testing.T) {
	h, _ := newTestServer()
	id := register(t, h)

	rec := doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for an empty answer", rec.Code)
	}
}

func TestVoiceAnswerNotConfiguredStatus(t *testing.T) {
	h, _ := newTestServer()
	id := register(t, h)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/answers/voice", strings.NewReader("audio-bytes"))
	req.Header.Set("Content-Type", "audio/wav")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 with no recognizer chain", rec.Code)
	}
}

func TestSessionNotFoundStatus(t *testing.T) {
	h, _ := newTestServer()
	rec := doJSON(t, h, http.MethodGet, "/sessions/ghost/summary", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListTests(t *testing.T) {
	h, _ := newTestServer()
	rec := doJSON(t, h, http.MethodGet, "/tests", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var tests []string
	_ = json.Unmarshal(rec.Body.Bytes(), &tests)
	if len(tests) != 1 || tests[0] != "onboarding" {
		t.Errorf("tests = %v", tests)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h, _ := newTestServer()
	id := register(t, h)
	doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "first"})
	doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "second"})

	rec := doJSON(t, h, http.MethodGet, "/tests/onboarding/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var report stats.Report
	_ = json.Unmarshal(rec.Body.Bytes(), &report)
	if report.Turns != 2 || report.Automated.Count != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestStatsBadWindow(t *testing.T) {
	h, _ := newTestServer()
	rec := doJSON(t, h, http.MethodGet, "/tests/onboarding/stats?from=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a malformed timestamp", rec.Code)
	}
}

func TestHumanScoreEndpoint(t *testing.T) {
	h, gateway := newTestServer()
	id := register(t, h)
	doJSON(t, h, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{Answer: "first"})

	turns, err := gateway.QueryTurns(context.Background(), "onboarding", store.TimeRange{})
	if err != nil || len(turns) != 1 {
		t.Fatalf("QueryTurns: %v (%d turns)", err, len(turns))
	}
	turnID := turns[0].ID

	rec := doJSON(t, h, http.MethodPatch, "/turns/"+turnID+"/human-score", HumanScoreRequest{Score: 3.5})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	turns, _ = gateway.QueryTurns(context.Background(), "onboarding", store.TimeRange{})
	if turns[0].HumanScore == nil || *turns[0].HumanScore != 3.5 {
		t.Errorf("human score = %v, want 3.5", turns[0].HumanScore)
	}

	rec = doJSON(t, h, http.MethodPatch, "/turns/"+turnID+"/human-score", HumanScoreRequest{Score: 6})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an out-of-range score", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPatch, "/turns/ghost/human-score", HumanScoreRequest{Score: 3})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown turn", rec.Code)
	}
}
