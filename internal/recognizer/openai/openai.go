// Package openai implements the Recognizer interface using the OpenAI Audio
// Transcription API (Whisper / gpt-4o-transcribe). It is the usual head of
// the fallback chain: best accuracy, but network-dependent.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/nZiben/ai-interviewer/internal/config"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/recognizer"
)

const defaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// Recognizer transcribes audio via the OpenAI API.
type Recognizer struct {
	apiKey   string
	model    string
	language string
	endpoint string
	client   *http.Client
}

// New creates a new OpenAI recognizer from config.
func New(cfg config.OpenAIRecognizerConfig) *Recognizer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Recognizer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "openai" }

// Transcribe sends the audio to the transcription endpoint. Network and
// HTTP-level failures classify as unavailable (the chain advances); a clean
// response with an empty transcript classifies as unintelligible (terminal).
func (r *Recognizer) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	ext := recognizer.ExtFromContentType(contentType)
	part, err := writer.CreateFormFile("file", "audio"+ext)
	if err != nil {
		return "", provider.Unavailable(r.Name(), fmt.Errorf("creating form file: %w", err))
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return "", provider.Unavailable(r.Name(), fmt.Errorf("writing audio: %w", err))
	}
	_ = writer.WriteField("model", r.model)
	if r.language != "" {
		_ = writer.WriteField("language", r.language)
	}
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return "", provider.Unavailable(r.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", provider.Unavailable(r.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", recognizer.ClassifyStatus(r.Name(), resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", provider.Unavailable(r.Name(), fmt.Errorf("decoding transcription: %w", err))
	}

	slog.Debug("openai transcription complete", "text_length", len(result.Text))
	return recognizer.ClassifyTranscript(r.Name(), result.Text)
}

// Close is a no-op for the OpenAI recognizer.
func (r *Recognizer) Close() error { return nil }
