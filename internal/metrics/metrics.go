// Package metrics records per-invocation timing samples for the
// dispatcher: how long validation took, how long the handler itself
// took, and the invocation's total wall time.
package metrics

import (
	"sync"
	"time"
)

// Phase names a timing sample's stage within a single dispatch.
type Phase string

const (
	PhaseValidation Phase = "validation"
	PhaseHandler    Phase = "handler"
	PhaseTotal      Phase = "total"
)

// Sample is one recorded duration for one hook event.
type Sample struct {
	Event    string
	Phase    Phase
	Duration time.Duration
}

// Collector accumulates timing samples across the process lifetime.
// Safe for concurrent use; the gate dispatches one hook per process
// invocation, but the collector is written to be reusable in-process
// (e.g. by tests driving several invocations against one collector).
type Collector struct {
	mu      sync.RWMutex
	samples []Sample
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends a single timing sample.
func (c *Collector) Record(event string, phase Phase, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = append(c.samples, Sample{Event: event, Phase: phase, Duration: d})
}

// RecordInvocation records all three timing samples for one dispatch in
// a single call, matching the dispatcher's validation/handler/total
// triple.
func (c *Collector) RecordInvocation(event string, validation, handler, total time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = append(c.samples,
		Sample{Event: event, Phase: PhaseValidation, Duration: validation},
		Sample{Event: event, Phase: PhaseHandler, Duration: handler},
		Sample{Event: event, Phase: PhaseTotal, Duration: total},
	)
}

// Samples returns a copy of every sample recorded so far.
func (c *Collector) Samples() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

// Count returns how many samples have been recorded for the given
// event and phase.
func (c *Collector) Count(event string, phase Phase) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, s := range c.samples {
		if s.Event == event && s.Phase == phase {
			n++
		}
	}
	return n
}

// TotalDuration sums every recorded duration for the given event and
// phase.
func (c *Collector) TotalDuration(event string, phase Phase) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total time.Duration
	for _, s := range c.samples {
		if s.Event == event && s.Phase == phase {
			total += s.Duration
		}
	}
	return total
}

// Reset clears every recorded sample.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = nil
}
