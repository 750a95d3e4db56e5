package dispatch

import (
	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/hookevent"
)

// Handler implements one hook event's pre-validation and execution.
// Validate runs before Execute and may reject the input on security or
// policy grounds; Execute performs the event's actual work and returns
// advisory output text plus the handler's own domain error, if any.
type Handler interface {
	Validate(in *Input) error
	Execute(in *Input) (output string, err error)
}

// Registry maps a hook event tag to its Handler. Populated once at
// startup and never mutated afterward; safe for concurrent reads by
// construction since there are none.
type Registry struct {
	handlers map[hookevent.Tag]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[hookevent.Tag]Handler)}
}

// Register binds tag to handler. A later call for the same tag replaces
// the earlier one.
func (r *Registry) Register(tag hookevent.Tag, handler Handler) {
	r.handlers[tag] = handler
}

// Get returns the handler bound to tag, or an InvalidInput error if no
// handler has been registered.
func (r *Registry) Get(tag hookevent.Tag) (Handler, error) {
	h, ok := r.handlers[tag]
	if !ok {
		return nil, &gateerr.InvalidInput{Message: "no handler registered for " + tag.String()}
	}
	return h, nil
}
