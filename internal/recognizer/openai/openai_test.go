package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nZiben/ai-interviewer/internal/config"
	"github.com/nZiben/ai-interviewer/internal/provider"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "gpt-4o-transcribe" {
			t.Errorf("model = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file part missing: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "hello there"})
	}))
	defer srv.Close()

	rec := New(config.OpenAIRecognizerConfig{APIKey: "k", Model: "gpt-4o-transcribe", Endpoint: srv.URL})
	text, err := rec.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello there" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeEmptyTranscriptIsUnintelligible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "   "})
	}))
	defer srv.Close()

	rec := New(config.OpenAIRecognizerConfig{APIKey: "k", Model: "gpt-4o-transcribe", Endpoint: srv.URL})
	_, err := rec.Transcribe(context.Background(), []byte("noise"), "audio/wav")
	if !provider.IsUnintelligible(err) {
		t.Fatalf("err = %v, want unintelligible classification", err)
	}
}

func TestTranscribeHTTPFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	rec := New(config.OpenAIRecognizerConfig{APIKey: "k", Model: "gpt-4o-transcribe", Endpoint: srv.URL})
	_, err := rec.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("expected an error")
	}
	if provider.IsUnintelligible(err) {
		t.Fatalf("err = %v classified terminal, want unavailable so the chain advances", err)
	}
}
