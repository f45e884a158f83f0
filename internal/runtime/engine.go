// Package runtime implements the navigation core of the wizard engine: path
// resolution against the live DTO, reachability assertion, advancement, and
// back-link computation.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/fewston/stile/internal/logging"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
)

// Engine makes every navigation decision for one flow. It holds no session
// state of its own: the session is passed in and mutated in place, keeping
// the engine testable independent of any web framework.
type Engine[D any] struct {
	flow   string
	graph  *domain.Graph[D]
	urls   ports.URLResolver
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Engine.
type Option[D any] func(*Engine[D])

// WithLogger sets a structured logger for navigation decisions.
func WithLogger[D any](logger *slog.Logger) Option[D] {
	return func(e *Engine[D]) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks[D any](hooks domain.LifecycleHooks) Option[D] {
	return func(e *Engine[D]) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine for one flow's step graph.
func NewEngine[D any](flow string, graph *domain.Graph[D], urls ports.URLResolver, opts ...Option[D]) *Engine[D] {
	e := &Engine[D]{
		flow:   flow,
		graph:  graph,
		urls:   urls,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the flow's step graph.
func (e *Engine[D]) Graph() *domain.Graph[D] {
	return e.graph
}

// StepURL resolves the page URL for a step.
func (e *Engine[D]) StepURL(identity string, step domain.Step) string {
	return e.urls.StepURL(identity, step)
}

// Reset discards the session's progress and re-opens it for the identity.
// Resets are normal flow control, not failures.
func (e *Engine[D]) Reset(ctx context.Context, sess *domain.Session[D], identity, reason string) {
	sess.Reset(identity)
	e.logger.Debug("session reset", "identity", identity, "reason", reason)
	e.emit(ctx, e.hooks.OnSessionReset, &domain.StepEvent{
		Type:     domain.EventSessionReset,
		Identity: identity,
		Reason:   reason,
	})
}

func (e *Engine[D]) emit(ctx context.Context, fn func(context.Context, *domain.StepEvent), ev *domain.StepEvent) {
	if fn == nil {
		return
	}
	ev.Timestamp = time.Now()
	ev.Flow = e.flow
	fn(ctx, ev)
}

// EmitValidationFail publishes a validation-failure event for observability.
func (e *Engine[D]) EmitValidationFail(ctx context.Context, sess *domain.Session[D], step domain.Step, errs []domain.FieldError) {
	e.emit(ctx, e.hooks.OnValidationFail, &domain.StepEvent{
		Type:     domain.EventValidationFail,
		Identity: sess.Identity,
		Step:     step,
		Fields:   domain.FieldNames(errs),
	})
}

// EmitStepView publishes a step-view event.
func (e *Engine[D]) EmitStepView(ctx context.Context, sess *domain.Session[D], step domain.Step) {
	e.emit(ctx, e.hooks.OnStepView, &domain.StepEvent{
		Type:     domain.EventStepView,
		Identity: sess.Identity,
		Step:     step,
	})
}
