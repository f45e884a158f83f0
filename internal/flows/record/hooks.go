package record

import (
	"context"
	"fmt"

	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
)

func initHook(svc OutcomeService) stile.InitHook[Outcome] {
	return func(ctx context.Context, sec domain.SecurityContext, sess *domain.Session[Outcome]) error {
		c, err := svc.Case(ctx, sess.Identity)
		if err != nil {
			return fmt.Errorf("failed to load case: %w", err)
		}
		if !c.Authorized(sec.Username) {
			return &domain.AccessDeniedError{Identity: sess.Identity, Reason: "user does not manage this case"}
		}
		sess.DTO.OffenderName = c.Name
		return nil
	}
}

func hooks(svc OutcomeService) map[domain.Step]stile.StepHook[Outcome] {
	return map[domain.Step]stile.StepHook[Outcome]{
		StepAttendance: attendanceHook,
		StepCompliance: nil,
		StepNotes:      nil,
		StepCheck:      checkHook(svc),
	}
}

// attendanceHook clears a stale compliance answer when the user goes back and
// switches to "not attended": the compliance step is off the path then and its
// old answer must not survive into the recorded outcome.
func attendanceHook(_ context.Context, sess *domain.Session[Outcome]) ([]domain.FieldError, error) {
	if sess.DTO.Attended == "no" {
		sess.DTO.Complied = ""
	}
	return nil, nil
}

// checkHook records the outcome. The confirmation step after it is GET-only,
// so revisiting it cannot record twice.
func checkHook(svc OutcomeService) stile.StepHook[Outcome] {
	return func(ctx context.Context, sess *domain.Session[Outcome]) ([]domain.FieldError, error) {
		ref, err := svc.Record(ctx, sess.Identity, *sess.DTO)
		if err != nil {
			return nil, fmt.Errorf("failed to record outcome: %w", err)
		}
		sess.DTO.Reference = ref
		return nil, nil
	}
}
