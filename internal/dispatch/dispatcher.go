package dispatch

import (
	"context"
	"time"

	"github.com/maos-gate/gate/internal/hookevent"
	"github.com/maos-gate/gate/internal/metrics"
)

// Dispatcher composes the registry and the metrics collector into the
// single per-invocation pipeline described by the dispatch contract:
// read input, find handler, validate, execute, record timings, return
// output. It holds no other state and is not reentrant.
type Dispatcher struct {
	registry *Registry
	metrics  *metrics.Collector
}

// New constructs a Dispatcher over registry, recording timings into
// collector.
func New(registry *Registry, collector *metrics.Collector) *Dispatcher {
	return &Dispatcher{registry: registry, metrics: collector}
}

// Dispatch runs one full hook invocation for the command identified by
// cliTag, reading its JSON payload from provider. It returns the
// handler's advisory output and its error verbatim; the caller (the CLI
// entry point) is responsible for mapping that error to an exit code
// and a sanitised message.
func (d *Dispatcher) Dispatch(ctx context.Context, cliTag hookevent.Tag, provider InputProvider) (string, error) {
	totalStart := time.Now()

	var in Input
	if err := provider.ReadJSON(ctx, &in); err != nil {
		return "", err
	}

	if err := in.Validate(); err != nil {
		return "", err
	}

	handler, err := d.registry.Get(cliTag)
	if err != nil {
		return "", err
	}

	validationStart := time.Now()
	if err := handler.Validate(&in); err != nil {
		d.record(cliTag, time.Since(validationStart), 0, time.Since(totalStart))
		return "", err
	}
	validationDur := time.Since(validationStart)

	handlerStart := time.Now()
	output, err := handler.Execute(&in)
	handlerDur := time.Since(handlerStart)

	d.record(cliTag, validationDur, handlerDur, time.Since(totalStart))

	return output, err
}

func (d *Dispatcher) record(tag hookevent.Tag, validation, handler, total time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordInvocation(tag.String(), validation, handler, total)
}
