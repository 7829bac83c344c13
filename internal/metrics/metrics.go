// Package metrics defines the Prometheus collectors exported by the daemon.
// They are served by the health server on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecognitionAttempts counts individual recognizer attempts by backend
	// and outcome ("ok", "unintelligible", "unavailable").
	RecognitionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interviewer_recognition_attempts_total",
		Help: "Speech recognition attempts by provider and outcome.",
	}, []string{"provider", "outcome"})

	// RecognitionFailovers counts chain advancements after a backend failure.
	RecognitionFailovers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interviewer_recognition_failovers_total",
		Help: "Times the recognizer fallback chain advanced to the next provider.",
	})

	// ScoringFailures counts answers persisted without an automated score.
	ScoringFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interviewer_scoring_failures_total",
		Help: "Scoring calls that failed and left a turn pending human review.",
	})

	// SynthesisFailures counts question prompts degraded to text-only.
	SynthesisFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interviewer_synthesis_failures_total",
		Help: "TTS failures while reading a question aloud.",
	})

	// TurnsPersisted counts successfully saved turns.
	TurnsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interviewer_turns_persisted_total",
		Help: "Interview turns durably recorded.",
	})

	// SessionsStarted and SessionsCompleted track the session lifecycle.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interviewer_sessions_started_total",
		Help: "Interview sessions registered.",
	})
	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interviewer_sessions_completed_total",
		Help: "Interview sessions that reached the last question.",
	})
)
