// Interviewer is an AI-assisted interview daemon: it walks candidates through
// a test question by question, accepts text or voice answers, scores them with
// an LLM, and records every turn for human review and statistics.
//
// Usage:
//
//	interviewer [flags]
//	interviewer --config /path/to/interviewer.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/nZiben/ai-interviewer/docs"
	"github.com/nZiben/ai-interviewer/internal/api"
	"github.com/nZiben/ai-interviewer/internal/config"
	"github.com/nZiben/ai-interviewer/internal/health"
	"github.com/nZiben/ai-interviewer/internal/interview"
	"github.com/nZiben/ai-interviewer/internal/provider"
	"github.com/nZiben/ai-interviewer/internal/recognizer/failover"
	localrec "github.com/nZiben/ai-interviewer/internal/recognizer/local"
	openairec "github.com/nZiben/ai-interviewer/internal/recognizer/openai"
	ollamascore "github.com/nZiben/ai-interviewer/internal/scorer/ollama"
	openaiscore "github.com/nZiben/ai-interviewer/internal/scorer/openai"
	"github.com/nZiben/ai-interviewer/internal/stats"
	"github.com/nZiben/ai-interviewer/internal/store"
	memorystore "github.com/nZiben/ai-interviewer/internal/store/memory"
	reststore "github.com/nZiben/ai-interviewer/internal/store/rest"
	"github.com/nZiben/ai-interviewer/internal/synthesizer/piper"
	grpcserver "github.com/nZiben/ai-interviewer/internal/transport/grpc"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/interviewer.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("interviewer %s\n", version)
		os.Exit(0)
	}

	// Load .env if present, before viper reads the environment.
	_ = godotenv.Load()

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("interviewer starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Register the configured providers.
	registry := provider.NewRegistry()
	for _, name := range cfg.Recognizer.Chain {
		switch name {
		case "openai":
			registry.RegisterRecognizer(name, openairec.New(cfg.Recognizer.OpenAI))
		case "local":
			registry.RegisterRecognizer(name, localrec.New(cfg.Recognizer.Local))
		}
	}
	if err := registry.SetRecognizerChain(cfg.Recognizer.Chain...); err != nil {
		slog.Error("invalid recognizer chain", "error", err)
		os.Exit(1)
	}
	slog.Info("recognizer chain configured", "chain", cfg.Recognizer.Chain)

	switch cfg.Scorer.Backend {
	case "openai":
		registry.RegisterScorer("openai", openaiscore.New(cfg.Scorer.OpenAI))
		slog.Info("using OpenAI scorer", "model", cfg.Scorer.OpenAI.Model)
	case "ollama":
		registry.RegisterScorer("ollama", ollamascore.New(cfg.Scorer.Ollama))
		slog.Info("using Ollama scorer",
			"endpoint", cfg.Scorer.Ollama.Endpoint, "model", cfg.Scorer.Ollama.Model)
	}
	if err := registry.SetActive(provider.CapabilityScorer, cfg.Scorer.Backend); err != nil {
		slog.Error("invalid scorer backend", "error", err)
		os.Exit(1)
	}

	if cfg.Synthesizer.Enabled {
		registry.RegisterSynthesizer("piper", piper.New(cfg.Synthesizer.Piper))
		if err := registry.SetActive(provider.CapabilitySynthesizer, cfg.Synthesizer.Backend); err != nil {
			slog.Error("invalid synthesizer backend", "error", err)
			os.Exit(1)
		}
		slog.Info("question synthesis enabled",
			"backend", cfg.Synthesizer.Backend, "endpoint", cfg.Synthesizer.Piper.Endpoint)
	}
	defer registry.Close()

	// Initialize the persistence gateway.
	var gateway store.Gateway
	switch cfg.Store.Backend {
	case "rest":
		gateway = reststore.New(cfg.Store.REST.Endpoint, cfg.Store.REST.Token)
		slog.Info("using results service store", "endpoint", cfg.Store.REST.Endpoint)
	case "memory":
		gateway = memorystore.New(cfg.Store.Memory.Tests)
		slog.Info("using in-memory store", "tests", len(cfg.Store.Memory.Tests))
	}

	// Wire the interview manager.
	scorer, err := registry.Scorer()
	if err != nil {
		slog.Error("no scorer available", "error", err)
		os.Exit(1)
	}
	voice := failover.New(registry.RecognizerChain(),
		failover.WithAttemptTimeout(cfg.Recognizer.AttemptTimeout))

	opts := []interview.Option{
		interview.WithVoiceAnswers(voice),
		interview.WithScoreTimeout(cfg.Scorer.Timeout),
		interview.WithSynthesisTimeout(cfg.Synthesizer.Timeout),
	}
	if cfg.Synthesizer.Enabled {
		synth, err := registry.Synthesizer()
		if err != nil {
			slog.Error("no synthesizer available", "error", err)
			os.Exit(1)
		}
		opts = append(opts, interview.WithSynthesizer(synth))
	}
	manager := interview.NewManager(gateway, scorer, opts...)
	statsEngine := stats.New(gateway)

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start the API server and, if enabled, the gRPC server.
	var wg sync.WaitGroup

	apiServer := api.New(cfg.Server.APIPort, manager, statsEngine, gateway)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiServer.ListenAndServe(ctx); err != nil {
			slog.Error("api server failed", "error", err)
			cancel()
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCEnabled {
		grpcSrv = grpcserver.New(cfg.Server.GRPCPort)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := grpcSrv.ListenAndServe(ctx); err != nil {
				slog.Error("grpc server failed", "error", err)
			}
		}()
	}

	healthServer.SetReady(true)
	slog.Info("interviewer ready",
		"api_port", cfg.Server.APIPort,
		"health_port", cfg.Server.HealthPort,
		"store", cfg.Store.Backend,
		"scorer", cfg.Scorer.Backend)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	if err := apiServer.Close(); err != nil {
		slog.Error("api server close error", "error", err)
	}
	if grpcSrv != nil {
		if err := grpcSrv.Close(); err != nil {
			slog.Error("grpc server close error", "error", err)
		}
	}

	wg.Wait()
	slog.Info("interviewer stopped")
}
