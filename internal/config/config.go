// Package config handles loading and validating the interviewer configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the interviewer daemon.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Recognizer  RecognizerConfig  `mapstructure:"recognizer"`
	Synthesizer SynthesizerConfig `mapstructure:"synthesizer"`
	Scorer      ScorerConfig      `mapstructure:"scorer"`
	Store       StoreConfig       `mapstructure:"store"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	APIPort     int  `mapstructure:"api_port"`
	HealthPort  int  `mapstructure:"health_port"`
	GRPCEnabled bool `mapstructure:"grpc_enabled"`
	GRPCPort    int  `mapstructure:"grpc_port"`
}

// RecognizerConfig configures the speech-to-text fallback chain. Chain order
// is fixed here at configuration time; the first entry is tried first.
type RecognizerConfig struct {
	Chain          []string               `mapstructure:"chain"` // e.g. ["openai", "local"]
	AttemptTimeout time.Duration          `mapstructure:"attempt_timeout"`
	OpenAI         OpenAIRecognizerConfig `mapstructure:"openai"`
	Local          LocalRecognizerConfig  `mapstructure:"local"`
}

// OpenAIRecognizerConfig holds OpenAI transcription API settings.
type OpenAIRecognizerConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	Endpoint string `mapstructure:"endpoint"` // override for compatible gateways
}

// LocalRecognizerConfig holds self-hosted Whisper-compatible settings.
type LocalRecognizerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

// SynthesizerConfig selects and configures the text-to-speech backend used
// to read questions aloud.
type SynthesizerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Backend string        `mapstructure:"backend"` // "piper"
	Timeout time.Duration `mapstructure:"timeout"`
	Piper   PiperConfig   `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Wyoming TCP endpoint (host:port)
	Voice    string `mapstructure:"voice"`    // Piper voice model name
}

// ScorerConfig selects and configures the answer-scoring LLM backend.
type ScorerConfig struct {
	Backend string             `mapstructure:"backend"` // "openai" or "ollama"
	Timeout time.Duration      `mapstructure:"timeout"`
	OpenAI  OpenAIScorerConfig `mapstructure:"openai"`
	Ollama  OllamaScorerConfig `mapstructure:"ollama"`
}

// OpenAIScorerConfig holds OpenAI chat API settings for scoring.
type OpenAIScorerConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// OllamaScorerConfig holds local Ollama settings for scoring.
type OllamaScorerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// StoreConfig selects the persistence gateway backend.
type StoreConfig struct {
	Backend string            `mapstructure:"backend"` // "rest" or "memory"
	REST    RESTStoreConfig   `mapstructure:"rest"`
	Memory  MemoryStoreConfig `mapstructure:"memory"`
}

// RESTStoreConfig points at the external results service.
type RESTStoreConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
}

// MemoryStoreConfig seeds the in-memory gateway with tests for standalone
// runs: test name -> ordered question list.
type MemoryStoreConfig struct {
	Tests map[string][]string `mapstructure:"tests"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and
// defaults. If configFile is non-empty it is used directly; otherwise the
// standard search order applies: ./interviewer.yaml,
// ./configs/interviewer.yaml, /etc/interviewer/interviewer.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.api_port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_enabled", false)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("recognizer.chain", []string{"openai", "local"})
	v.SetDefault("recognizer.attempt_timeout", 10*time.Second)
	v.SetDefault("recognizer.openai.model", "gpt-4o-transcribe")
	v.SetDefault("recognizer.local.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("synthesizer.enabled", false)
	v.SetDefault("synthesizer.backend", "piper")
	v.SetDefault("synthesizer.timeout", 15*time.Second)
	v.SetDefault("synthesizer.piper.endpoint", "localhost:10200")
	v.SetDefault("scorer.backend", "openai")
	v.SetDefault("scorer.timeout", 10*time.Second)
	v.SetDefault("scorer.openai.model", "gpt-4o")
	v.SetDefault("scorer.ollama.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("scorer.ollama.model", "llama3")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("interviewer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/interviewer")
	}

	// Environment variables: INTERVIEWER_SCORER_BACKEND, INTERVIEWER_SERVER_API_PORT, etc.
	v.SetEnvPrefix("INTERVIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Recognizer.OpenAI.APIKey = resolveEnvRef(cfg.Recognizer.OpenAI.APIKey)
	cfg.Scorer.OpenAI.APIKey = resolveEnvRef(cfg.Scorer.OpenAI.APIKey)
	cfg.Store.REST.Token = resolveEnvRef(cfg.Store.REST.Token)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Recognizer.Chain) == 0 {
		return fmt.Errorf("recognizer.chain must name at least one backend")
	}
	for _, name := range c.Recognizer.Chain {
		if name != "openai" && name != "local" {
			return fmt.Errorf("unknown recognizer backend %q in chain", name)
		}
	}
	switch c.Scorer.Backend {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown scorer backend %q", c.Scorer.Backend)
	}
	switch c.Store.Backend {
	case "memory":
	case "rest":
		if c.Store.REST.Endpoint == "" {
			return fmt.Errorf("store.rest.endpoint must be set for the rest backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
