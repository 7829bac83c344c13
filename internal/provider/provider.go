// Package provider defines the capability contracts that interview providers
// implement: speech recognition, speech synthesis, and answer scoring.
//
// Each capability is a small interface with one call-site-relevant method.
// Concrete backends live in their own packages (recognizer/openai,
// synthesizer/piper, scorer/ollama, ...) and are selected by configuration
// at startup — the session layer depends only on these contracts.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Recognizer converts raw audio to text.
type Recognizer interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Transcribe converts the audio payload to text. Failures are reported
	// as *RecognitionError so callers can distinguish unintelligible speech
	// (terminal) from an unreachable service (retry another backend).
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)

	// Close releases any resources held by the recognizer.
	Close() error
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "piper").
	Name() string

	// Synthesize generates audio for the given text.
	Synthesize(ctx context.Context, text string) (*Audio, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// Audio holds the output of speech synthesis.
type Audio struct {
	// Data is the synthesized audio, container format per ContentType.
	Data []byte

	// ContentType is the MIME type of Data (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// Channels is the number of audio channels.
	Channels int
}

// Scorer turns a (question, answer) pair into a numeric score and feedback.
type Scorer interface {
	// Name returns the backend identifier (e.g., "openai", "ollama").
	Name() string

	// Evaluate scores the answer on the closed interval [0, 5]. An empty
	// answer short-circuits to score 0 with canned feedback and must not
	// reach the backing model. A backend that returns a non-numeric or
	// out-of-range score fails with *ScoringError — never a silent clamp.
	Evaluate(ctx context.Context, question, answer string) (*Evaluation, error)

	// Close releases any resources held by the scorer.
	Close() error
}

// Evaluation is the outcome of scoring one answer.
type Evaluation struct {
	// Score is the automated score, always within [0, 5].
	Score float64

	// Feedback is a short free-text rationale for the candidate.
	Feedback string
}

// ScoreMin and ScoreMax bound every automated and human score.
const (
	ScoreMin = 0.0
	ScoreMax = 5.0
)

// RecognitionErrorKind classifies recognizer failures.
type RecognitionErrorKind int

const (
	// KindUnintelligible means the service was reachable but could not make
	// out any speech. Retrying another backend will not recover this.
	KindUnintelligible RecognitionErrorKind = iota

	// KindUnavailable means the service could not be reached or could not
	// serve the request (network failure, quota, timeout). The next backend
	// in the fallback chain should be tried.
	KindUnavailable
)

// RecognitionError is the failure type returned by Recognizer backends.
type RecognitionError struct {
	Kind     RecognitionErrorKind
	Provider string
	Err      error
}

func (e *RecognitionError) Error() string {
	kind := "unavailable"
	if e.Kind == KindUnintelligible {
		kind = "unintelligible"
	}
	if e.Err != nil {
		return fmt.Sprintf("recognition %s (%s): %v", kind, e.Provider, e.Err)
	}
	return fmt.Sprintf("recognition %s (%s)", kind, e.Provider)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Unintelligible wraps err as a terminal speech-not-understood failure.
func Unintelligible(providerName string, err error) error {
	return &RecognitionError{Kind: KindUnintelligible, Provider: providerName, Err: err}
}

// Unavailable wraps err as a transient service failure eligible for failover.
func Unavailable(providerName string, err error) error {
	return &RecognitionError{Kind: KindUnavailable, Provider: providerName, Err: err}
}

// IsUnintelligible reports whether err is an unintelligible-speech failure.
// Errors that are not *RecognitionError at all classify as retryable, so a
// backend with a murky taxonomy errs on the side of trying the next provider.
func IsUnintelligible(err error) bool {
	var re *RecognitionError
	return errors.As(err, &re) && re.Kind == KindUnintelligible
}

// ErrRecognitionUnavailable is returned once an entire fallback chain has
// been exhausted without a usable transcript.
var ErrRecognitionUnavailable = errors.New("speech recognition unavailable")

// ScoringError is the failure type returned by Scorer backends.
type ScoringError struct {
	Provider string
	Reason   string // e.g., "unparseable score", "backend unreachable"
	Err      error
}

func (e *ScoringError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scoring failed (%s): %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("scoring failed (%s): %s", e.Provider, e.Reason)
}

func (e *ScoringError) Unwrap() error { return e.Err }
