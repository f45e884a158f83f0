package arrange

import (
	"time"

	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
	"github.com/fewston/stile/pkg/validate"
)

// FlowName is the flow's registration name.
const FlowName = "arrange"

// Flow steps, in declaration order. StepType is the entry step.
const (
	StepType        domain.Step = "type"
	StepLocation    domain.Step = "location"
	StepWhen        domain.Step = "when"
	StepCheck       domain.Step = "check"
	StepConfirm     domain.Step = "confirm"
	StepUnavailable domain.Step = "unavailable"
)

// Graph declares the step table. The location step only appears on the path
// when the chosen type requires one, and a spent quota routes straight to the
// unavailable step.
func Graph() (*domain.Graph[Appointment], error) {
	return domain.NewGraph[Appointment](
		domain.StepDef[Appointment]{
			ID:     StepType,
			Fields: []string{"type"},
			Next: func(a *Appointment) (domain.Step, bool) {
				if a.Unavailable {
					return StepUnavailable, true
				}
				if a.RequiresLocation {
					return StepLocation, true
				}
				return StepWhen, true
			},
		},
		domain.StepDef[Appointment]{
			ID:     StepLocation,
			Fields: []string{"location"},
			Next:   domain.Always[Appointment](StepWhen),
		},
		domain.StepDef[Appointment]{
			ID:     StepWhen,
			Fields: []string{"date", "start", "end"},
			Next:   domain.Always[Appointment](StepCheck),
		},
		domain.StepDef[Appointment]{
			ID:   StepCheck,
			Next: domain.Always[Appointment](StepConfirm),
		},
		domain.StepDef[Appointment]{
			ID:   StepConfirm,
			Kind: domain.KindConfirmation,
		},
		domain.StepDef[Appointment]{
			ID:   StepUnavailable,
			Kind: domain.KindConfirmation,
		},
	)
}

// Rules declares the step-scoped validation groups.
func Rules(now func() time.Time) validate.Rules[Appointment] {
	return validate.Rules[Appointment]{
		StepType: {
			validate.Required[Appointment]("type", "select an appointment type",
				func(a *Appointment) string { return a.Type }),
		},
		StepLocation: {
			validate.RequiredIf[Appointment]("location", "select a location",
				func(a *Appointment) bool { return a.RequiresLocation },
				func(a *Appointment) string { return a.Location }),
		},
		StepWhen: {
			validate.Required[Appointment]("date", "enter a date",
				func(a *Appointment) string { return a.Date }),
			validate.ISODate[Appointment]("date", "enter a valid date",
				func(a *Appointment) string { return a.Date }),
			validate.FutureDate[Appointment]("date", "the appointment date must not be in the past",
				func(a *Appointment) string { return a.Date }, now),
			validate.Required[Appointment]("start", "enter a start time",
				func(a *Appointment) string { return a.Start }),
			validate.ClockTime[Appointment]("start", "enter a valid start time",
				func(a *Appointment) string { return a.Start }),
			validate.Required[Appointment]("end", "enter an end time",
				func(a *Appointment) string { return a.End }),
			validate.ClockTime[Appointment]("end", "enter a valid end time",
				func(a *Appointment) string { return a.End }),
			validate.TimeAfter[Appointment]("end", "the end time must be after the start time",
				func(a *Appointment) string { return a.Start },
				func(a *Appointment) string { return a.End }),
			validate.DateTimeFuture[Appointment]("start", "the appointment must start in the future",
				func(a *Appointment) string { return a.Date },
				func(a *Appointment) string { return a.Start }, now),
		},
		StepCheck: {},
	}
}

// New wires the arrange-appointment flow over the given case service.
func New(svc CaseService, urls ports.URLResolver, opts ...stile.Option[Appointment]) (*stile.Flow[Appointment], error) {
	graph, err := Graph()
	if err != nil {
		return nil, err
	}

	base := []stile.Option[Appointment]{
		stile.WithInit(initHook(svc)),
		stile.WithHooks(hooks(svc)),
		stile.WithViews(views()),
		stile.WithRules(Rules(time.Now)),
	}
	return stile.New(FlowName, graph, urls, append(base, opts...)...)
}
