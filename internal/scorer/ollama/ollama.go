// Package ollama implements the Scorer interface against a local Ollama
// server (/api/generate). It keeps answer scoring working when the cloud
// backend is unreachable or when answers must not leave the host.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nZiben/ai-interviewer/internal/config"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/scorer"
)

// Scorer evaluates answers via Ollama's generate API.
type Scorer struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates a new Ollama scorer from config.
func New(cfg config.OllamaScorerConfig) *Scorer {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &Scorer{
		endpoint: cfg.Endpoint,
		model:    model,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (s *Scorer) Name() string { return "ollama" }

// Evaluate scores one answer. An empty answer never reaches the model.
func (s *Scorer) Evaluate(ctx context.Context, question, answer string) (*provider.Evaluation, error) {
	if strings.TrimSpace(answer) == "" {
		return &provider.Evaluation{Score: 0, Feedback: scorer.EmptyAnswerFeedback}, nil
	}

	reqBody := map[string]any{
		"model":  s.model,
		"system": scorer.SystemPrompt,
		"prompt": scorer.UserPrompt(question, answer),
		"stream": false,
		"format": "json",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("marshalling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, scorer.Unreachable(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("ollama failed (status %d): %s", resp.StatusCode, respBody))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("decoding ollama response: %w", err))
	}
	if result.Response == "" {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("empty response from ollama"))
	}

	eval, err := scorer.ParseEvaluation(s.Name(), result.Response)
	if err != nil {
		return nil, err
	}
	slog.Debug("answer scored", "provider", s.Name(), "score", eval.Score)
	return eval, nil
}

// Close is a no-op for the Ollama scorer.
func (s *Scorer) Close() error { return nil }
