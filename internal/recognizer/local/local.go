// Package local implements the Recognizer interface against a self-hosted
// Whisper-compatible endpoint (whisper.cpp server, faster-whisper). It is
// the usual tail of the fallback chain: survives internet outages, runs on
// the same host as the daemon.
package local

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

// Recognizer transcribes audio via a local Whisper-compatible server.
type Recognizer struct {
	endpoint string
	model    string
	language string
	client   *http.Client
}

// New creates a new local recognizer from config.
func New(cfg config.LocalRecognizerConfig) *Recognizer {
	return &Recognizer{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		language: cfg.Language,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "local" }

// Transcribe posts the audio to the local endpoint using the
// OpenAI-compatible multipart format.
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
	if r.model != "" {
		_ = writer.WriteField("model", r.model)
	}
	if r.language != "" {
		_ = writer.WriteField("language", r.language)
	}
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return "", provider.Unavailable(r.Name(), fmt.Errorf("creating request: %w", err))
	}
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

	slog.Debug("local transcription complete", "text_length", len(result.Text))
	return recognizer.ClassifyTranscript(r.Name(), result.Text)
}

// Close is a no-op for the local recognizer.
func (r *Recognizer) Close() error { return nil }
