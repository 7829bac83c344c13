// Package scorer holds the prompt and response handling shared by the
// LLM-backed answer scoring backends.
//
// Both backends (openai, ollama) ask the model for a JSON object
// {"score": <0..5>, "feedback": "..."} and refuse anything they cannot read
// back as a number in range — the session layer decides what to do with an
// unscorable answer, not the scorer.
package scorer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nZiben/ai-interviewer/internal/provider"
)

// EmptyAnswerFeedback is the canned feedback for an empty answer. Backends
// return it with score 0 without calling the model.
const EmptyAnswerFeedback = "no answer provided"

// SystemPrompt instructs the model to act as an interview assessor.
const SystemPrompt = "You are an experienced interviewer assessing a candidate's answer. " +
	"Rate how well the answer addresses the question on a scale from 0 to 5, " +
	"where 0 means nothing relevant and 5 means a complete, well-reasoned answer. " +
	"Reply with a JSON object only: {\"score\": <number>, \"feedback\": \"<one or two sentences addressed to the candidate>\"}"

// UserPrompt formats the question/answer pair for the model.
func UserPrompt(question, answer string) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer: ")
	sb.WriteString(answer)
	return sb.String()
}

// ParseEvaluation reads the model's reply into an Evaluation. A reply whose
// score is missing, non-numeric, or outside [0, 5] fails with a
// *provider.ScoringError carrying reason "unparseable score".
func ParseEvaluation(providerName, content string) (*provider.Evaluation, error) {
	content = strings.TrimSpace(content)
	// Some models wrap JSON in a markdown fence despite instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply struct {
		Score    json.RawMessage `json:"score"`
		Feedback string          `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, &provider.ScoringError{
			Provider: providerName,
			Reason:   "unparseable score",
			Err:      fmt.Errorf("reply is not JSON: %.200s", content),
		}
	}

	score, err := parseScore(reply.Score)
	if err != nil {
		return nil, &provider.ScoringError{Provider: providerName, Reason: "unparseable score", Err: err}
	}
	if score < provider.ScoreMin || score > provider.ScoreMax {
		return nil, &provider.ScoringError{
			Provider: providerName,
			Reason:   "unparseable score",
			Err:      fmt.Errorf("score %v outside [%v, %v]", score, provider.ScoreMin, provider.ScoreMax),
		}
	}

	return &provider.Evaluation{Score: score, Feedback: reply.Feedback}, nil
}

// parseScore accepts a JSON number or a numeric string ("4.5"); anything
// else ("nine", null, objects) is rejected.
func parseScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("score missing")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, convErr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if convErr != nil {
			return 0, fmt.Errorf("score %q is not numeric", s)
		}
		return n, nil
	}
	return 0, fmt.Errorf("score %s is not numeric", raw)
}

// Unreachable wraps a transport-level failure as a ScoringError. Retry
// policy belongs to the caller, so the scorer only reports.
func Unreachable(providerName string, err error) error {
	return &provider.ScoringError{Provider: providerName, Reason: "backend unreachable", Err: err}
}
