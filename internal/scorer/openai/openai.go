// Package openai implements the Scorer interface using the OpenAI Chat
// Completions API (or any endpoint speaking the same protocol).
package openai

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

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Scorer evaluates answers via the Chat Completions API.
type Scorer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a new OpenAI scorer from config.
func New(cfg config.OpenAIScorerConfig) *Scorer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Scorer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (s *Scorer) Name() string { return "openai" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate scores one answer. An empty answer never reaches the model.
func (s *Scorer) Evaluate(ctx context.Context, question, answer string) (*provider.Evaluation, error) {
	if strings.TrimSpace(answer) == "" {
		return &provider.Evaluation{Score: 0, Feedback: scorer.EmptyAnswerFeedback}, nil
	}

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: scorer.SystemPrompt},
			{Role: "user", Content: scorer.UserPrompt(question, answer)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.2,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("marshalling chat request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("creating chat request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, scorer.Unreachable(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("chat failed (status %d): %s", resp.StatusCode, respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("decoding chat response: %w", err))
	}
	if len(chatResp.Choices) == 0 {
		return nil, scorer.Unreachable(s.Name(), fmt.Errorf("no choices returned from chat API"))
	}

	eval, err := scorer.ParseEvaluation(s.Name(), chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	slog.Debug("answer scored", "provider", s.Name(), "score", eval.Score)
	return eval, nil
}

// Close is a no-op for the OpenAI scorer.
func (s *Scorer) Close() error { return nil }
