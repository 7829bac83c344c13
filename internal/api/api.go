// Package api exposes the interviewer over a REST API.
//
// The API drives the full interview loop: register a session, fetch the
// current question (optionally synthesized to audio), submit answers as
// text or voice, and read the summary. It also serves the reviewer
// surface: test listings, scoring statistics, and human score overrides.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nZiben/ai-interviewer/internal/interview"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/stats"
	"github.com/nZiben/ai-interviewer/internal/store"
)

const maxAudioBytes = 25 << 20

// Server is the REST API server.
type Server struct {
	port    int
	manager *interview.Manager
	stats   *stats.Engine
	gateway store.Gateway
	server  *http.Server
}

// New creates the API server.
func New(port int, manager *interview.Manager, statsEngine *stats.Engine, gateway store.Gateway) *Server {
	return &Server{port: port, manager: manager, stats: statsEngine, gateway: gateway}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", s.handleRegister)
	mux.HandleFunc("GET /sessions/{id}/question", s.handleQuestion)
	mux.HandleFunc("POST /sessions/{id}/answers", s.handleAnswer)
	mux.HandleFunc("POST /sessions/{id}/answers/voice", s.handleVoiceAnswer)
	mux.HandleFunc("GET /sessions/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /tests", s.handleListTests)
	mux.HandleFunc("GET /tests/{name}/stats", s.handleStats)
	mux.HandleFunc("PATCH /turns/{id}/human-score", s.handleHumanScore)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// ListenAndServe starts the API server. It blocks until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// RegisterRequest is the body of POST /sessions.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TestName  string `json:"test_name"`
}

// RegisterResponse returns the handle of the new session.
type RegisterResponse struct {
	SessionID string `json:"session_id"`
	TestName  string `json:"test_name"`
}

// handleRegister starts a new interview session.
//
// @Summary     Register a candidate and start an interview
// @Description Validates the candidate's name and test selection, snapshots the
// @Description test's questions, and returns a session handle. Registering again
// @Description for the same candidate and test starts a fresh run; earlier
// @Description results are kept.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       registration  body      RegisterRequest  true  "Candidate identity and test selection"
// @Success     201  {object}  RegisterResponse
// @Failure     400  {string}  string  "Missing name or unknown/empty test"
// @Failure     500  {string}  string  "Question lookup failed"
// @Router      /sessions [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := s.manager.Register(r.Context(), req.FirstName, req.LastName, req.TestName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		SessionID: session.ID(),
		TestName:  req.TestName,
	})
}

// handleQuestion returns the question the session is waiting on.
//
// @Summary     Get the current question
// @Description Returns the pending question for the session. With audio=true and
// @Description a configured synthesizer the response is the spoken question as
// @Description audio; if synthesis fails the text is returned instead.
// @Tags        sessions
// @Produce     json
// @Produce     audio/wav
// @Param       id     path   string  true   "Session ID"
// @Param       audio  query  bool    false  "Return synthesized audio when available"
// @Success     200  {object}  interview.QuestionPrompt
// @Failure     404  {string}  string  "Unknown session"
// @Failure     409  {string}  string  "Session already completed"
// @Router      /sessions/{id}/question [get]
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	withAudio := r.URL.Query().Get("audio") == "true"

	prompt, err := s.manager.CurrentQuestion(r.Context(), r.PathValue("id"), withAudio)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if withAudio && prompt.Audio != nil {
		w.Header().Set("Content-Type", prompt.AudioContentType)
		w.Header().Set("X-Question-Index", fmt.Sprint(prompt.Index))
		w.Header().Set("X-Question-Text", prompt.Text)
		_, _ = w.Write(prompt.Audio)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// AnswerRequest is the body of POST /sessions/{id}/answers.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// handleAnswer submits a text answer for the current question.
//
// @Summary     Submit a text answer
// @Description Scores the answer, persists the turn, and advances to the next
// @Description question. If scoring fails the turn is stored without a score for
// @Description human review and the session still advances. If persistence fails
// @Description the session stays on the same question and the request can be
// @Description retried.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id      path  string         true  "Session ID"
// @Param       answer  body  AnswerRequest  true  "Answer text"
// @Success     200  {object}  interview.SubmitResult
// @Failure     404  {string}  string  "Unknown session"
// @Failure     409  {string}  string  "Session already completed"
// @Failure     422  {string}  string  "Empty answer"
// @Failure     503  {string}  string  "Turn could not be persisted; retry"
// @Router      /sessions/{id}/answers [post]
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.manager.SubmitAnswer(r.Context(), r.PathValue("id"), req.Answer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleVoiceAnswer submits a spoken answer as raw audio.
//
// @Summary     Submit a voice answer
// @Description Transcribes the audio through the recognizer fallback chain and
// @Description submits the transcript as the answer. Unintelligible speech is
// @Description rejected like an empty answer; if every recognizer is unavailable
// @Description the candidate can retry or switch to text.
// @Tags        sessions
// @Accept      audio/wav
// @Accept      audio/ogg
// @Accept      audio/mpeg
// @Produce     json
// @Param       id  path  string  true  "Session ID"
// @Success     200  {object}  interview.SubmitResult
// @Failure     404  {string}  string  "Unknown session"
// @Failure     409  {string}  string  "Session already completed"
// @Failure     422  {string}  string  "No intelligible speech in the audio"
// @Failure     502  {string}  string  "All speech recognizers unavailable"
// @Failure     503  {string}  string  "Turn could not be persisted; retry"
// @Router      /sessions/{id}/answers/voice [post]
func (s *Server) handleVoiceAnswer(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		http.Error(w, "reading audio: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(audio) == 0 {
		http.Error(w, "empty audio body", http.StatusBadRequest)
		return
	}

	result, err := s.manager.SubmitVoiceAnswer(r.Context(), r.PathValue("id"), audio, r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSummary returns a snapshot of the session.
//
// @Summary     Get the session summary
// @Description Returns candidate, progress, and per-question results. Available
// @Description at any point in the session, not only after completion.
// @Tags        sessions
// @Produce     json
// @Param       id  path  string  true  "Session ID"
// @Success     200  {object}  interview.Summary
// @Failure     404  {string}  string  "Unknown session"
// @Router      /sessions/{id}/summary [get]
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.manager.Summary(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleListTests lists the tests available for registration.
//
// @Summary     List available tests
// @Tags        tests
// @Produce     json
// @Success     200  {array}  string
// @Failure     500  {string}  string  "Store unavailable"
// @Router      /tests [get]
func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := s.gateway.ListTests(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

// handleStats returns the scoring report for one test.
//
// @Summary     Scoring statistics for a test
// @Description Aggregates persisted turns: counts, means, 1-5 histograms for
// @Description automated and human scores, automated/human agreement, and a
// @Description per-question breakdown. from/to bound the reporting window.
// @Tags        tests
// @Produce     json
// @Param       name  path   string  true   "Test name"
// @Param       from  query  string  false  "Window start (RFC 3339)"
// @Param       to    query  string  false  "Window end (RFC 3339)"
// @Success     200  {object}  stats.Report
// @Failure     400  {string}  string  "Malformed from/to timestamp"
// @Failure     404  {string}  string  "Unknown test"
// @Router      /tests/{name}/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.stats.Evaluate(r.Context(), r.PathValue("name"), window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HumanScoreRequest is the body of PATCH /turns/{id}/human-score.
type HumanScoreRequest struct {
	Score float64 `json:"score"`
}

// handleHumanScore records a reviewer's score for a persisted turn.
//
// @Summary     Set the human score of a turn
// @Description Records the reviewer's score (0-5) on a persisted turn. Repeated
// @Description reviews overwrite; the last score wins.
// @Tags        turns
// @Accept      json
// @Produce     json
// @Param       id     path  string             true  "Turn ID"
// @Param       score  body  HumanScoreRequest  true  "Reviewer score"
// @Success     204  "Score recorded"
// @Failure     400  {string}  string  "Score out of range"
// @Failure     404  {string}  string  "Unknown turn"
// @Router      /turns/{id}/human-score [patch]
func (s *Server) handleHumanScore(w http.ResponseWriter, r *http.Request) {
	var req HumanScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.gateway.UpdateHumanScore(r.Context(), r.PathValue("id"), req.Score); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var validation *interview.ValidationError
	var persist *interview.PersistError

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.Is(err, interview.ErrSessionNotFound),
		errors.Is(err, store.ErrTestNotFound),
		errors.Is(err, store.ErrTurnNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, interview.ErrSessionCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, interview.ErrEmptyAnswer):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, interview.ErrVoiceNotConfigured):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	case errors.Is(err, provider.ErrRecognitionUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &persist):
		http.Error(w, persist.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, store.ErrScoreOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseWindow(from, to string) (store.TimeRange, error) {
	var window store.TimeRange
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return window, fmt.Errorf("invalid from timestamp: %w", err)
		}
		window.From = t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return window, fmt.Errorf("invalid to timestamp: %w", err)
		}
		window.To = t
	}
	return window, nil
}
