package runtime

import (
	"context"
	"net/http"

	"github.com/fewston/stile/pkg/domain"
)

// Redirect carries an HTTP 302-equivalent ("found", not permanent) target.
type Redirect struct {
	Location string
}

func (e *Engine[D]) redirect(identity string, step domain.Step) *Redirect {
	return &Redirect{Location: e.urls.StepURL(identity, step)}
}

// AssertStep decides whether a request for a step may proceed, or must be
// silently corrected via redirect. The session is mutated in place (reset,
// confirmation completion); the caller persists it afterwards.
//
// Returns (nil, nil) to proceed, a Redirect for navigation corrections, or an
// error for protocol/configuration defects.
func (e *Engine[D]) AssertStep(ctx context.Context, sess *domain.Session[D], identity string, step domain.Step, method string) (*Redirect, error) {
	if !e.graph.Contains(step) {
		return nil, &domain.GraphError{Step: step, Reason: "requested step not declared in graph"}
	}
	entry := e.graph.Entry()

	// A missing record or a foreign identity invalidates the whole session.
	// Skip the redirect when the entry step was requested anyway.
	if !sess.Initialized() || sess.Identity != identity {
		reason := "uninitialized"
		if sess.Initialized() {
			reason = "identity mismatch"
		}
		e.Reset(ctx, sess, identity, reason)
		if step != entry {
			return e.redirect(identity, entry), nil
		}
	}

	if method == http.MethodPost && e.graph.Kind(step) == domain.KindConfirmation {
		return nil, &ProtocolError{Step: step, Method: method}
	}

	path, err := e.graph.Resolve(sess.DTO)
	if err != nil {
		return nil, err
	}

	// Once the terminal step is completed the flow is closed: anything but
	// the terminal step itself forces a restart from a fresh session.
	terminal := path[len(path)-1]
	if sess.HasCompleted(terminal) && step != terminal {
		e.Reset(ctx, sess, identity, "flow closed")
		if step != entry {
			return e.redirect(identity, entry), nil
		}
		if path, err = e.graph.Resolve(sess.DTO); err != nil {
			return nil, err
		}
	}

	// Linear gating: every step strictly before the requested one must be
	// complete; otherwise redirect to the first missing prerequisite. A step
	// absent from the resolved path (e.g. a skipped branch reached via a
	// stale bookmark) falls through to the same rule.
	reached := false
	for _, p := range path {
		if p == step {
			reached = true
			break
		}
		if !sess.HasCompleted(p) {
			e.logger.Debug("step gated", "identity", identity, "requested", step, "redirect", p)
			return e.redirect(identity, p), nil
		}
	}
	if !reached {
		return e.redirect(identity, entry), nil
	}

	// Viewing a confirmation step is its completion condition. Revisits are
	// idempotent: completedSteps does not change and no hook re-fires.
	if e.graph.Kind(step) == domain.KindConfirmation && !sess.HasCompleted(step) {
		sess.MarkCompleted(step)
		e.emit(ctx, e.hooks.OnStepComplete, &domain.StepEvent{
			Type:     domain.EventStepComplete,
			Identity: identity,
			Step:     step,
		})
	}

	return nil, nil
}

// Advance marks the step completed (idempotently) and redirects to its
// immediate successor in the freshly recomputed path. Called after a step's
// POST has been validated and its domain hook has succeeded.
func (e *Engine[D]) Advance(ctx context.Context, sess *domain.Session[D], step domain.Step) (*Redirect, error) {
	if !sess.HasCompleted(step) {
		sess.MarkCompleted(step)
		e.emit(ctx, e.hooks.OnStepComplete, &domain.StepEvent{
			Type:     domain.EventStepComplete,
			Identity: sess.Identity,
			Step:     step,
		})
	}

	path, err := e.graph.Resolve(sess.DTO)
	if err != nil {
		return nil, err
	}
	for i, p := range path {
		if p != step {
			continue
		}
		if i == len(path)-1 {
			return nil, &domain.GraphError{Step: step, Reason: "update step has no successor"}
		}
		return e.redirect(sess.Identity, path[i+1]), nil
	}
	return nil, &domain.GraphError{Step: step, Reason: "completed step no longer on resolved path"}
}

// BackURL returns the URL of the step immediately preceding the current one
// in the freshly recomputed path, or false for the entry step. It shares the
// path computation with AssertStep, so back-links stay correct when earlier
// branch-determining answers change.
func (e *Engine[D]) BackURL(sess *domain.Session[D], step domain.Step) (string, bool) {
	path, err := e.graph.Resolve(sess.DTO)
	if err != nil {
		// A graph defect, not a missing link. Unreachable after a successful
		// AssertStep in the same request, so log loudly rather than ripple
		// an error through every view render.
		e.logger.Error("back link resolution failed", "identity", sess.Identity, "step", step, "err", err)
		return "", false
	}
	for i, p := range path {
		if p == step {
			if i == 0 {
				return "", false
			}
			return e.urls.StepURL(sess.Identity, path[i-1]), true
		}
	}
	return "", false
}
