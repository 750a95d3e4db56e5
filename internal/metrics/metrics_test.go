package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordInvocationAppendsThreeSamples(t *testing.T) {
	c := NewCollector()
	c.RecordInvocation("pre_tool_use", 1*time.Millisecond, 2*time.Millisecond, 3*time.Millisecond)

	samples := c.Samples()
	assert.Len(t, samples, 3)
	assert.Equal(t, PhaseValidation, samples[0].Phase)
	assert.Equal(t, PhaseHandler, samples[1].Phase)
	assert.Equal(t, PhaseTotal, samples[2].Phase)
}

func TestCountAndTotalDurationFilterByEventAndPhase(t *testing.T) {
	c := NewCollector()
	c.RecordInvocation("pre_tool_use", 10*time.Millisecond, 20*time.Millisecond, 30*time.Millisecond)
	c.RecordInvocation("pre_tool_use", 5*time.Millisecond, 5*time.Millisecond, 10*time.Millisecond)
	c.RecordInvocation("post_tool_use", 1*time.Millisecond, 1*time.Millisecond, 2*time.Millisecond)

	assert.Equal(t, 2, c.Count("pre_tool_use", PhaseValidation))
	assert.Equal(t, 1, c.Count("post_tool_use", PhaseTotal))
	assert.Equal(t, 15*time.Millisecond, c.TotalDuration("pre_tool_use", PhaseValidation))
}

func TestResetClearsSamples(t *testing.T) {
	c := NewCollector()
	c.Record("stop", PhaseTotal, time.Millisecond)
	assert.Len(t, c.Samples(), 1)

	c.Reset()
	assert.Empty(t, c.Samples())
}

func TestCollectorSafeForConcurrentUse(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record("notification", PhaseHandler, time.Microsecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Count("notification", PhaseHandler))
}
