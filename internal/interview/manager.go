package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nZiben/ai-interviewer/internal/metrics"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/recognizer/failover"
	"github.com/nZiben/ai-interviewer/internal/store"
)

// Default provider call deadlines. Scoring and recognition share the shorter
// bound; synthesis gets longer because local TTS of a full question can be
// slow on modest hardware.
const (
	DefaultScoreTimeout     = 10 * time.Second
	DefaultSynthesisTimeout = 15 * time.Second
)

// Manager owns the live sessions and the provider/gateway wiring they share.
// Providers are injected at construction; swapping a backend never touches
// this package.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	gateway store.Gateway
	scorer  provider.Scorer
	synth   provider.Synthesizer // nil disables question audio
	voice   *failover.Recognizer // nil disables voice answers

	scoreTimeout time.Duration
	synthTimeout time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithSynthesizer enables spoken question prompts.
func WithSynthesizer(s provider.Synthesizer) Option {
	return func(m *Manager) { m.synth = s }
}

// WithVoiceAnswers enables voice answer submission through the given
// fallback chain.
func WithVoiceAnswers(r *failover.Recognizer) Option {
	return func(m *Manager) { m.voice = r }
}

// WithScoreTimeout overrides the scoring call deadline.
func WithScoreTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.scoreTimeout = d
		}
	}
}

// WithSynthesisTimeout overrides the synthesis call deadline.
func WithSynthesisTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.synthTimeout = d
		}
	}
}

// NewManager creates a session manager.
func NewManager(gateway store.Gateway, scorer provider.Scorer, opts ...Option) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		gateway:      gateway,
		scorer:       scorer,
		scoreTimeout: DefaultScoreTimeout,
		synthTimeout: DefaultSynthesisTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register validates candidate identity and test selection and starts a new
// session. Registering again for the same candidate and test is always
// allowed ("take again"); earlier turns are untouched and history
// accumulates.
func (m *Manager) Register(ctx context.Context, firstName, lastName, testName string) (*Session, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, &ValidationError{Field: "first_name", Reason: "must not be empty"}
	}
	if lastName == "" {
		return nil, &ValidationError{Field: "last_name", Reason: "must not be empty"}
	}
	if testName == "" {
		return nil, &ValidationError{Field: "test_name", Reason: "must not be empty"}
	}

	questions, err := m.gateway.ListQuestions(ctx, testName)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, &ValidationError{Field: "test_name", Reason: "test has no questions"}
	}

	s := &Session{
		id:        uuid.NewString(),
		firstName: firstName,
		lastName:  lastName,
		testName:  testName,
		questions: questions,
		state:     StateInProgress,
		started:   time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	metrics.SessionsStarted.Inc()
	slog.Info("session registered",
		"session_id", s.id, "test", testName, "questions", len(questions))
	return s, nil
}

// Session resolves a live session by handle.
func (m *Manager) Session(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// QuestionPrompt is the current question ready for presentation. Audio is
// nil when synthesis is disabled, was not requested, or failed — the
// candidate reads the text instead.
type QuestionPrompt struct {
	Index            int    `json:"index"` // 0-based
	Total            int    `json:"total"`
	Text             string `json:"text"`
	Audio            []byte `json:"-"`
	AudioContentType string `json:"audio_content_type,omitempty"`
}

// CurrentQuestion returns the question the session is waiting on. Synthesis
// failure is non-fatal and only logged. Returns ErrSessionCompleted once all
// questions are answered.
func (m *Manager) CurrentQuestion(ctx context.Context, sessionID string, withAudio bool) (*QuestionPrompt, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted {
		return nil, ErrSessionCompleted
	}

	prompt := &QuestionPrompt{
		Index: s.idx,
		Total: len(s.questions),
		Text:  s.questions[s.idx],
	}

	if withAudio && m.synth != nil {
		synthCtx, cancel := context.WithTimeout(ctx, m.synthTimeout)
		audio, err := m.synth.Synthesize(synthCtx, prompt.Text)
		cancel()
		if err != nil {
			metrics.SynthesisFailures.Inc()
			slog.Warn("question synthesis failed, falling back to text",
				"session_id", s.id, "question", s.idx, "error", err)
		} else {
			prompt.Audio = audio.Data
			prompt.AudioContentType = audio.ContentType
		}
	}
	return prompt, nil
}

// SubmitResult reports the outcome of an accepted answer.
type SubmitResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Score    *float64 `json:"score,omitempty"`
	Feedback *string  `json:"feedback,omitempty"`
	State    State    `json:"state"`
	Answered int      `json:"answered"`
	Total    int      `json:"total"`
}

// SubmitAnswer records a text answer for the current question.
//
// An empty answer is rejected without touching the scorer or the index. A
// scoring failure does not drop the turn: it is persisted with nil score and
// feedback for mandatory human review. The index advances only after a
// successful persist — on PersistError the session stays on the same
// question and the caller retries.
func (m *Manager) SubmitAnswer(ctx context.Context, sessionID, answer string) (*SubmitResult, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.submitLocked(ctx, s, answer)
}

// SubmitVoiceAnswer transcribes the audio through the fallback chain and
// records the transcript as the answer. Unintelligible speech surfaces as
// ErrEmptyAnswer (re-prompt); an exhausted chain surfaces as
// provider.ErrRecognitionUnavailable (the candidate retries voice or
// switches to text).
func (m *Manager) SubmitVoiceAnswer(ctx context.Context, sessionID string, audio []byte, contentType string) (*SubmitResult, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if m.voice == nil {
		return nil, ErrVoiceNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted {
		return nil, ErrSessionCompleted
	}

	res, err := m.voice.Transcribe(ctx, audio, contentType)
	if err != nil {
		return nil, err
	}
	slog.Debug("voice answer transcribed",
		"session_id", s.id, "provider", res.Provider, "attempts", res.Attempts)
	return m.submitLocked(ctx, s, res.Text)
}

// submitLocked runs the answer pipeline; the caller holds s.mu.
func (m *Manager) submitLocked(ctx context.Context, s *Session, answer string) (*SubmitResult, error) {
	if s.state == StateCompleted {
		return nil, ErrSessionCompleted
	}
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyAnswer
	}

	question := s.questions[s.idx]

	var score *float64
	var feedback *string
	scoreCtx, cancel := context.WithTimeout(ctx, m.scoreTimeout)
	eval, err := m.scorer.Evaluate(scoreCtx, question, answer)
	cancel()
	if err != nil {
		// Losing the automated evaluation is acceptable; losing the answer
		// is not. Record the turn unscored and flag it for human review.
		metrics.ScoringFailures.Inc()
		slog.Warn("scoring failed, turn pending human review",
			"session_id", s.id, "question", s.idx, "error", err)
	} else {
		score = &eval.Score
		feedback = &eval.Feedback
	}

	turn := &store.Turn{
		ID:           uuid.NewString(),
		TestName:     s.testName,
		FirstName:    s.firstName,
		LastName:     s.lastName,
		Question:     question,
		Answer:       answer,
		AutoScore:    score,
		AutoFeedback: feedback,
		Timestamp:    time.Now(),
	}
	if err := m.gateway.SaveTurn(ctx, turn); err != nil {
		return nil, &PersistError{Err: err}
	}
	metrics.TurnsPersisted.Inc()

	s.results = append(s.results, TurnResult{
		Question: question,
		Answer:   answer,
		Score:    score,
		Feedback: feedback,
	})
	s.advanceLocked()

	if s.state == StateCompleted {
		metrics.SessionsCompleted.Inc()
		slog.Info("session completed",
			"session_id", s.id, "test", s.testName,
			"turns", len(s.results), "duration", time.Since(s.started))
	}

	return &SubmitResult{
		Question: question,
		Answer:   answer,
		Score:    score,
		Feedback: feedback,
		State:    s.state,
		Answered: s.idx,
		Total:    len(s.questions),
	}, nil
}

// Summary returns a snapshot of a session at any point in its lifecycle.
func (m *Manager) Summary(sessionID string) (*Summary, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked(), nil
}
