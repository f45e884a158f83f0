package stile

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/fewston/stile/internal/logging"
	"github.com/fewston/stile/internal/runtime"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/forms"
	"github.com/fewston/stile/pkg/ports"
	"github.com/fewston/stile/pkg/validate"
)

// Redirect is an HTTP 302-equivalent result carrying a target URL.
type Redirect = runtime.Redirect

// ProtocolError reports a request violating a step's method contract.
type ProtocolError = runtime.ProtocolError

// InitHook runs once on flow entry. It establishes domain invariants (e.g.
// the acting user is an authorized party for the case) and seeds derived DTO
// fields. Authorization failures are returned as *domain.AccessDeniedError,
// not as validation errors.
type InitHook[D any] func(ctx context.Context, sec domain.SecurityContext, sess *domain.Session[D]) error

// StepHook performs the side-effecting domain work of one step after its
// static validation passed: external lookups, derived-field mutation,
// clearing of now-stale downstream answers, or the flow's terminal action.
// Validation failures discovered by that work come back as field errors;
// infrastructure failures come back as the error.
type StepHook[D any] func(ctx context.Context, sess *domain.Session[D]) ([]domain.FieldError, error)

// ViewFunc builds the flow-specific render data for one step. It must not
// mutate the session, and after a failed validation it must echo the posted
// values (via the form argument) rather than the last-known-good DTO values.
type ViewFunc[D any] func(sess *domain.Session[D], form url.Values, errs []domain.FieldError) (map[string]any, error)

// ViewModel is the render-ready result of a step view: the hosting layer
// turns it into a page.
type ViewModel struct {
	Step    domain.Step         `json:"step"`
	Errors  []domain.FieldError `json:"errors"`
	BackURL string              `json:"backUrl,omitempty"`
	Data    map[string]any      `json:"data,omitempty"`
}

// Outcome is the result of a step request: exactly one of Redirect or View is
// set.
type Outcome struct {
	Redirect *Redirect
	View     *ViewModel
}

// Flow is a configured wizard: a step graph plus the per-step hook, view, and
// validation tables, generic over the DTO being assembled. The session is
// always passed in and out explicitly; Flow holds no per-user state.
type Flow[D any] struct {
	name   string
	graph  *domain.Graph[D]
	engine *runtime.Engine[D]
	urls   ports.URLResolver
	logger *slog.Logger
	lhooks domain.LifecycleHooks

	init  InitHook[D]
	hooks map[domain.Step]StepHook[D]
	views map[domain.Step]ViewFunc[D]
	rules validate.Rules[D]
}

// Option configures a Flow.
type Option[D any] func(*Flow[D])

// WithInit registers the flow-entry hook.
func WithInit[D any](h InitHook[D]) Option[D] {
	return func(f *Flow[D]) { f.init = h }
}

// WithHooks registers the per-step domain hooks. The map must contain a key
// for every update step; a nil value marks a step with no domain work.
func WithHooks[D any](hooks map[domain.Step]StepHook[D]) Option[D] {
	return func(f *Flow[D]) { f.hooks = hooks }
}

// WithViews registers the per-step view-model factories. The map must cover
// every declared step.
func WithViews[D any](views map[domain.Step]ViewFunc[D]) Option[D] {
	return func(f *Flow[D]) { f.views = views }
}

// WithRules registers the step-scoped validation groups.
func WithRules[D any](rules validate.Rules[D]) Option[D] {
	return func(f *Flow[D]) { f.rules = rules }
}

// WithLogger sets a structured logger.
func WithLogger[D any](logger *slog.Logger) Option[D] {
	return func(f *Flow[D]) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks[D any](hooks domain.LifecycleHooks) Option[D] {
	return func(f *Flow[D]) { f.lhooks = hooks }
}

// New builds a Flow and checks the per-step tables for exhaustiveness: every
// step needs a view factory and every update step needs a hook entry. An
// incomplete table is a configuration defect surfaced at construction, not a
// runtime surprise.
func New[D any](name string, graph *domain.Graph[D], urls ports.URLResolver, opts ...Option[D]) (*Flow[D], error) {
	if name == "" {
		return nil, fmt.Errorf("flow name is required")
	}
	if graph == nil {
		return nil, fmt.Errorf("flow %s: step graph is required", name)
	}
	if urls == nil {
		return nil, fmt.Errorf("flow %s: url resolver is required", name)
	}

	f := &Flow[D]{
		name:   name,
		graph:  graph,
		urls:   urls,
		logger: logging.NewNop(),
		hooks:  map[domain.Step]StepHook[D]{},
		views:  map[domain.Step]ViewFunc[D]{},
		rules:  validate.Rules[D]{},
	}
	for _, opt := range opts {
		opt(f)
	}

	var missingViews, missingHooks []string
	for _, step := range graph.Steps() {
		if _, ok := f.views[step]; !ok {
			missingViews = append(missingViews, string(step))
		}
		if graph.Kind(step) == domain.KindUpdate {
			if _, ok := f.hooks[step]; !ok {
				missingHooks = append(missingHooks, string(step))
			}
		}
	}
	sort.Strings(missingViews)
	sort.Strings(missingHooks)
	if len(missingViews) > 0 {
		return nil, fmt.Errorf("flow %s: missing view factories for steps %v", name, missingViews)
	}
	if len(missingHooks) > 0 {
		return nil, fmt.Errorf("flow %s: missing domain hooks for steps %v", name, missingHooks)
	}

	f.engine = runtime.NewEngine(name, graph, urls,
		runtime.WithLogger[D](f.logger.With("flow", name)),
		runtime.WithLifecycleHooks[D](f.lhooks),
	)
	return f, nil
}

// Name returns the flow's name.
func (f *Flow[D]) Name() string { return f.name }

// Graph returns the flow's step graph.
func (f *Flow[D]) Graph() *domain.Graph[D] { return f.graph }

// EntryURL returns the URL of the flow's entry step for an identity.
func (f *Flow[D]) EntryURL(identity string) string {
	return f.urls.StepURL(identity, f.graph.Entry())
}

// Init implements GET of the flow's root URL: reset the session for the
// identity, run the init hook, and redirect to the resolved entry step.
func (f *Flow[D]) Init(ctx context.Context, identity string, sec domain.SecurityContext, sess *domain.Session[D]) (*Redirect, error) {
	f.engine.Reset(ctx, sess, identity, "flow entry")

	if f.init != nil {
		if err := f.init(ctx, sec, sess); err != nil {
			return nil, fmt.Errorf("flow %s: init: %w", f.name, err)
		}
	}

	path, err := f.graph.Resolve(sess.DTO)
	if err != nil {
		return nil, err
	}
	return &Redirect{Location: f.urls.StepURL(identity, path[0])}, nil
}

// ViewStep implements GET of a step URL: assert reachability, then build the
// step's view model.
func (f *Flow[D]) ViewStep(ctx context.Context, identity string, step domain.Step, sess *domain.Session[D]) (*Outcome, error) {
	red, err := f.engine.AssertStep(ctx, sess, identity, step, http.MethodGet)
	if err != nil {
		return nil, err
	}
	if red != nil {
		return &Outcome{Redirect: red}, nil
	}
	f.engine.EmitStepView(ctx, sess, step)
	return f.render(sess, step, nil, nil)
}

// UpdateStep implements POST of a step URL: assert reachability, merge the
// posted fields owned by the step into the session DTO, run the step's
// validation group and domain hook, then advance. On any validation failure
// the same step re-renders with all errors and the posted values echoed.
func (f *Flow[D]) UpdateStep(ctx context.Context, identity string, step domain.Step, sess *domain.Session[D], form url.Values) (*Outcome, error) {
	red, err := f.engine.AssertStep(ctx, sess, identity, step, http.MethodPost)
	if err != nil {
		return nil, err
	}
	if red != nil {
		return &Outcome{Redirect: red}, nil
	}

	def, _ := f.graph.Def(step)
	if field, err := mergeForm(form, def.Fields, sess.DTO); err != nil {
		f.logger.Debug("form merge rejected", "flow", f.name, "step", step, "field", field, "err", err)
		errs := []domain.FieldError{{
			Field:      field,
			Constraint: "malformed",
			Message:    "the submitted value could not be read",
		}}
		f.engine.EmitValidationFail(ctx, sess, step, errs)
		return f.render(sess, step, form, errs)
	}

	if errs := validate.Run(f.rules, step, sess.DTO); len(errs) > 0 {
		f.engine.EmitValidationFail(ctx, sess, step, errs)
		return f.render(sess, step, form, errs)
	}

	if hook := f.hooks[step]; hook != nil {
		errs, err := hook(ctx, sess)
		if err != nil {
			return nil, fmt.Errorf("flow %s: step %s hook: %w", f.name, step, err)
		}
		if len(errs) > 0 {
			f.engine.EmitValidationFail(ctx, sess, step, errs)
			return f.render(sess, step, form, errs)
		}
	}

	red, err = f.engine.Advance(ctx, sess, step)
	if err != nil {
		return nil, err
	}
	return &Outcome{Redirect: red}, nil
}

// BackURL exposes the engine's back-link computation for hosting layers that
// render navigation outside a step view.
func (f *Flow[D]) BackURL(sess *domain.Session[D], step domain.Step) (string, bool) {
	return f.engine.BackURL(sess, step)
}

func (f *Flow[D]) render(sess *domain.Session[D], step domain.Step, form url.Values, errs []domain.FieldError) (*Outcome, error) {
	view := f.views[step]
	data, err := view(sess, form, errs)
	if err != nil {
		return nil, fmt.Errorf("flow %s: step %s view: %w", f.name, step, err)
	}
	if errs == nil {
		errs = []domain.FieldError{}
	}
	back, _ := f.engine.BackURL(sess, step)
	return &Outcome{View: &ViewModel{
		Step:    step,
		Errors:  errs,
		BackURL: back,
		Data:    data,
	}}, nil
}

// mergeForm decodes the step's owned fields from the posted body into the
// DTO. Weakly-typed decoding tolerates the all-string nature of form posts.
// Fields decode one at a time so a failure names the offending field and
// valid siblings still land in the DTO for the re-render.
func mergeForm[D any](form url.Values, fields []string, dto *D) (string, error) {
	src := forms.Pick(form, fields)
	var failField string
	var failErr error
	for key, val := range src {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           dto,
			WeaklyTypedInput: true,
			TagName:          "form",
		})
		if err != nil {
			return key, err
		}
		if err := dec.Decode(map[string]any{key: val}); err != nil && failErr == nil {
			failField, failErr = key, err
		}
	}
	return failField, failErr
}
