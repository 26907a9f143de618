package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Handler reacts to a single dispatched event.
type Handler func(ctx context.Context, evt DomainEvent) error

// Dispatcher routes drained events to named handlers. It is the explicit
// "drain and dispatch after commit" step owned by the application layer;
// the aggregate command path never invokes handlers itself, because
// publication may fail and need retry without re-running the command.
type Dispatcher struct {
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards log output.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Register appends a handler for the named event. Multiple handlers per
// name run in registration order.
func (d *Dispatcher) Register(name string, handler Handler) {
	d.handlers[name] = append(d.handlers[name], handler)
}

// RegisterAll registers one handler per event name, e.g. the EventHandlers
// map attached to a built aggregate trait.
func (d *Dispatcher) RegisterAll(handlers map[string]Handler) {
	for name, handler := range handlers {
		d.Register(name, handler)
	}
}

// Dispatch delivers events in order. A failing handler does not stop
// delivery of the remaining events; all handler errors are joined into the
// returned error so the caller can decide on retry.
func (d *Dispatcher) Dispatch(ctx context.Context, events []DomainEvent) error {
	var errs []error
	for _, evt := range events {
		handlers, ok := d.handlers[evt.Name]
		if !ok {
			d.logger.DebugContext(ctx, "no handler registered", "event", evt.Name)
			continue
		}
		for _, handler := range handlers {
			if err := handler(ctx, evt); err != nil {
				d.logger.ErrorContext(ctx, "event handler failed",
					"event", evt.Name,
					"event_id", evt.ID.String(),
					"error", err,
				)
				errs = append(errs, fmt.Errorf("handle %s: %w", evt.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
