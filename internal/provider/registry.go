package provider

import (
	"fmt"
	"sync"
)

// Capability names one of the three provider contracts.
type Capability string

const (
	CapabilityRecognizer  Capability = "recognizer"
	CapabilitySynthesizer Capability = "synthesizer"
	CapabilityScorer      Capability = "scorer"
)

// Registry holds the configured provider implementations per capability and
// the ordered recognizer fallback chain. Registration is idempotent — the
// last registration for a (capability, name) pair wins. The registry is
// populated once at startup and read-only afterwards, but is safe for
// concurrent use regardless.
type Registry struct {
	mu           sync.RWMutex
	recognizers  map[string]Recognizer
	synthesizers map[string]Synthesizer
	scorers      map[string]Scorer
	chain        []string
	active       map[Capability]string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		recognizers:  make(map[string]Recognizer),
		synthesizers: make(map[string]Synthesizer),
		scorers:      make(map[string]Scorer),
		active:       make(map[Capability]string),
	}
}

// RegisterRecognizer adds (or replaces) a recognizer under the given name.
func (r *Registry) RegisterRecognizer(name string, rec Recognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizers[name] = rec
}

// RegisterSynthesizer adds (or replaces) a synthesizer under the given name.
func (r *Registry) RegisterSynthesizer(name string, s Synthesizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synthesizers[name] = s
}

// RegisterScorer adds (or replaces) a scorer under the given name.
func (r *Registry) RegisterScorer(name string, s Scorer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorers[name] = s
}

// SetActive selects the provider resolved for a capability. The name must
// already be registered.
func (r *Registry) SetActive(cap Capability, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch cap {
	case CapabilityRecognizer:
		if _, ok := r.recognizers[name]; !ok {
			return fmt.Errorf("no recognizer registered as %q", name)
		}
	case CapabilitySynthesizer:
		if _, ok := r.synthesizers[name]; !ok {
			return fmt.Errorf("no synthesizer registered as %q", name)
		}
	case CapabilityScorer:
		if _, ok := r.scorers[name]; !ok {
			return fmt.Errorf("no scorer registered as %q", name)
		}
	default:
		return fmt.Errorf("unknown capability %q", cap)
	}
	r.active[cap] = name
	return nil
}

// Recognizer resolves the active recognizer.
func (r *Registry) Recognizer() (Recognizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recognizers[r.active[CapabilityRecognizer]]
	if !ok {
		return nil, fmt.Errorf("no active recognizer configured")
	}
	return rec, nil
}

// Synthesizer resolves the active synthesizer.
func (r *Registry) Synthesizer() (Synthesizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.synthesizers[r.active[CapabilitySynthesizer]]
	if !ok {
		return nil, fmt.Errorf("no active synthesizer configured")
	}
	return s, nil
}

// Scorer resolves the active scorer.
func (r *Registry) Scorer() (Scorer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scorers[r.active[CapabilityScorer]]
	if !ok {
		return nil, fmt.Errorf("no active scorer configured")
	}
	return s, nil
}

// SetRecognizerChain fixes the recognizer fallback order. Every name must be
// registered. The first name becomes the active recognizer.
func (r *Registry) SetRecognizerChain(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(names) == 0 {
		return fmt.Errorf("recognizer chain must not be empty")
	}
	for _, name := range names {
		if _, ok := r.recognizers[name]; !ok {
			return fmt.Errorf("no recognizer registered as %q", name)
		}
	}
	r.chain = append([]string(nil), names...)
	r.active[CapabilityRecognizer] = names[0]
	return nil
}

// RecognizerChain returns the recognizers in configured fallback order.
func (r *Registry) RecognizerChain() []Recognizer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Recognizer, 0, len(r.chain))
	for _, name := range r.chain {
		out = append(out, r.recognizers[name])
	}
	return out
}

// Close closes every registered provider and returns the first error seen.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, rec := range r.recognizers {
		if err := rec.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, s := range r.synthesizers {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, s := range r.scorers {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
