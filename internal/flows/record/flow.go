package record

import (
	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
	"github.com/fewston/stile/pkg/validate"
)

const FlowName = "record-outcome"

// Flow steps, in declaration order. StepAttendance is the entry step.
const (
	StepAttendance domain.Step = "attendance"
	StepCompliance domain.Step = "compliance"
	StepNotes      domain.Step = "notes"
	StepCheck      domain.Step = "check"
	StepConfirm    domain.Step = "confirm"
)

// Graph declares the flow's step graph. Compliance is only asked when the
// appointment was attended.
func Graph() (*domain.Graph[Outcome], error) {
	return domain.NewGraph[Outcome](
		domain.StepDef[Outcome]{
			ID:     StepAttendance,
			Fields: []string{"attended"},
			Next: func(o *Outcome) (domain.Step, bool) {
				if o.Attended == "no" {
					return StepNotes, true
				}
				return StepCompliance, true
			},
		},
		domain.StepDef[Outcome]{
			ID:     StepCompliance,
			Fields: []string{"complied"},
			Next:   domain.Always[Outcome](StepNotes),
		},
		domain.StepDef[Outcome]{
			ID:     StepNotes,
			Fields: []string{"notes"},
			Next:   domain.Always[Outcome](StepCheck),
		},
		domain.StepDef[Outcome]{
			ID:   StepCheck,
			Next: domain.Always[Outcome](StepConfirm),
		},
		domain.StepDef[Outcome]{
			ID:   StepConfirm,
			Kind: domain.KindConfirmation,
		},
	)
}

// Rules declares the step-scoped validation groups.
func Rules() validate.Rules[Outcome] {
	return validate.Rules[Outcome]{
		StepAttendance: {
			validate.Required[Outcome]("attended", "select whether the appointment was attended",
				func(o *Outcome) string { return o.Attended }),
			validate.OneOf[Outcome]("attended", "select whether the appointment was attended",
				func(o *Outcome) string { return o.Attended }, "yes", "no"),
		},
		StepCompliance: {
			validate.RequiredIf[Outcome]("complied", "select whether the offender complied",
				func(o *Outcome) bool { return o.Attended == "yes" },
				func(o *Outcome) string { return o.Complied }),
			validate.OneOf[Outcome]("complied", "select whether the offender complied",
				func(o *Outcome) string { return o.Complied }, "yes", "no"),
		},
		StepNotes: {
			validate.MaxLen[Outcome]("notes", notesLimit,
				func(o *Outcome) string { return o.Notes }),
		},
		StepCheck: {},
	}
}

// New wires the record-outcome flow over the given outcome service.
func New(svc OutcomeService, urls ports.URLResolver, opts ...stile.Option[Outcome]) (*stile.Flow[Outcome], error) {
	graph, err := Graph()
	if err != nil {
		return nil, err
	}

	base := []stile.Option[Outcome]{
		stile.WithInit(initHook(svc)),
		stile.WithHooks(hooks(svc)),
		stile.WithViews(views()),
		stile.WithRules(Rules()),
	}
	return stile.New(FlowName, graph, urls, append(base, opts...)...)
}
