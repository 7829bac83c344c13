package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.APIPort != 8080 || cfg.Server.HealthPort != 8081 {
		t.Errorf("server ports = %d/%d", cfg.Server.APIPort, cfg.Server.HealthPort)
	}
	if len(cfg.Recognizer.Chain) != 2 || cfg.Recognizer.Chain[0] != "openai" {
		t.Errorf("recognizer chain = %v", cfg.Recognizer.Chain)
	}
	if cfg.Recognizer.AttemptTimeout != 10*time.Second {
		t.Errorf("attempt timeout = %v", cfg.Recognizer.AttemptTimeout)
	}
	if cfg.Scorer.Backend != "openai" || cfg.Store.Backend != "memory" {
		t.Errorf("backends = scorer:%s store:%s", cfg.Scorer.Backend, cfg.Store.Backend)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("INTERVIEWER_SCORER_BACKEND", "ollama")
	t.Setenv("INTERVIEWER_SERVER_API_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scorer.Backend != "ollama" {
		t.Errorf("scorer backend = %q, want env override", cfg.Scorer.Backend)
	}
	if cfg.Server.APIPort != 9090 {
		t.Errorf("api port = %d, want 9090", cfg.Server.APIPort)
	}
}

func TestLoadResolvesEnvRefs(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-resolved")

	path := filepath.Join(t.TempDir(), "interviewer.yaml")
	yaml := `
scorer:
  openai:
    api_key: "${TEST_OPENAI_KEY}"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scorer.OpenAI.APIKey != "sk-resolved" {
		t.Errorf("api key = %q, want the env value", cfg.Scorer.OpenAI.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown scorer", map[string]string{"INTERVIEWER_SCORER_BACKEND": "bard"}},
		{"unknown store", map[string]string{"INTERVIEWER_STORE_BACKEND": "csv"}},
		{"rest store without endpoint", map[string]string{"INTERVIEWER_STORE_BACKEND": "rest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Fatal("invalid configuration accepted")
			}
		})
	}
}
