// Package failover chains Recognizer backends into the online→offline
// fallback protocol.
//
// A transcribe call walks the configured chain in order. Service failures
// (unreachable, quota, timeout) advance to the next backend; unintelligible
// speech is terminal — no other backend will recover audio the first one
// could hear but not understand. Each attempt gets the same immutable audio
// buffer and its own deadline, so a hung provider cannot stall the chain.
package failover

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nZiben/ai-interviewer/internal/metrics"
	"github.com/nZiben/ai-interviewer/internal/provider"
)

// DefaultAttemptTimeout bounds a single backend attempt.
const DefaultAttemptTimeout = 10 * time.Second

// Recognizer wraps an ordered fallback chain of recognizers. The chain is
// fixed at construction — there is no dynamic reordering based on past
// success rates.
type Recognizer struct {
	chain          []provider.Recognizer
	attemptTimeout time.Duration
}

// Option configures the failover recognizer.
type Option func(*Recognizer)

// WithAttemptTimeout overrides the per-attempt deadline.
func WithAttemptTimeout(d time.Duration) Option {
	return func(r *Recognizer) {
		if d > 0 {
			r.attemptTimeout = d
		}
	}
}

// New creates a failover recognizer over the given chain, tried in order.
func New(chain []provider.Recognizer, opts ...Option) *Recognizer {
	r := &Recognizer{
		chain:          chain,
		attemptTimeout: DefaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of a transcribe call.
type Result struct {
	// Text is the transcript. Empty with a nil error means the speech was
	// unintelligible — the caller should re-prompt rather than retry.
	Text string

	// Provider names the backend that produced the terminal outcome.
	Provider string

	// Attempts counts the backends tried, including the terminal one.
	Attempts int
}

// Transcribe runs the fallback protocol. With a chain of N backends it makes
// at most N attempts. It returns provider.ErrRecognitionUnavailable (wrapped)
// once the chain is exhausted without a usable transcript.
func (r *Recognizer) Transcribe(ctx context.Context, audio []byte, contentType string) (*Result, error) {
	if len(r.chain) == 0 {
		return nil, fmt.Errorf("%w: no recognizers configured", provider.ErrRecognitionUnavailable)
	}

	result := &Result{}
	for _, rec := range r.chain {
		result.Attempts++
		result.Provider = rec.Name()

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		text, err := rec.Transcribe(attemptCtx, audio, contentType)
		cancel()

		if err == nil {
			metrics.RecognitionAttempts.WithLabelValues(rec.Name(), "ok").Inc()
			result.Text = text
			return result, nil
		}

		if provider.IsUnintelligible(err) {
			// Terminal: the service heard the audio and made nothing of it.
			metrics.RecognitionAttempts.WithLabelValues(rec.Name(), "unintelligible").Inc()
			slog.Info("speech unintelligible, not retrying", "provider", rec.Name(), "attempts", result.Attempts)
			return result, nil
		}

		metrics.RecognitionAttempts.WithLabelValues(rec.Name(), "unavailable").Inc()
		metrics.RecognitionFailovers.Inc()
		slog.Warn("recognizer unavailable, advancing chain",
			"provider", rec.Name(), "attempt", result.Attempts, "error", err)

		if ctx.Err() != nil {
			// The caller's context is gone; the remaining backends would
			// fail the same way.
			break
		}
	}

	return nil, fmt.Errorf("%w: %d attempt(s) failed", provider.ErrRecognitionUnavailable, result.Attempts)
}
