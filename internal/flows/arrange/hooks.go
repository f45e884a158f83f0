package arrange

import (
	"context"
	"fmt"

	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
)

// initHook establishes the flow's entry invariants: the acting user must
// manage the case. Violations are access failures, not validation messages.
func initHook(svc CaseService) stile.InitHook[Appointment] {
	return func(ctx context.Context, sec domain.SecurityContext, sess *domain.Session[Appointment]) error {
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

func hooks(svc CaseService) map[domain.Step]stile.StepHook[Appointment] {
	return map[domain.Step]stile.StepHook[Appointment]{
		StepType:     typeHook(svc),
		StepLocation: locationHook(svc),
		StepWhen:     whenHook(svc),
		StepCheck:    checkHook(svc),
	}
}

// typeHook resolves the chosen type against the live reference list, derives
// the description and location requirement, and applies the quota rule. A
// type that stops requiring a location clears any previously chosen one, so
// going back and changing the answer cannot leave stale downstream data.
func typeHook(svc CaseService) stile.StepHook[Appointment] {
	return func(ctx context.Context, sess *domain.Session[Appointment]) ([]domain.FieldError, error) {
		types, err := svc.AppointmentTypes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load appointment types: %w", err)
		}

		dto := sess.DTO
		var chosen *AppointmentType
		for i := range types {
			if types[i].Code == dto.Type {
				chosen = &types[i]
				break
			}
		}
		if chosen == nil {
			return []domain.FieldError{{
				Field:      "type",
				Constraint: "unknown",
				Message:    "select an appointment type from the list",
			}}, nil
		}

		dto.TypeDescription = chosen.Description
		dto.RequiresLocation = chosen.RequiresLocation
		if !chosen.RequiresLocation {
			dto.Location = ""
			dto.LocationDescription = ""
		}

		dto.Unavailable = false
		if chosen.Countable {
			n, err := svc.CountableBookings(ctx, sess.Identity)
			if err != nil {
				return nil, fmt.Errorf("failed to count bookings: %w", err)
			}
			if n >= countableLimit {
				dto.Unavailable = true
			}
		}
		return nil, nil
	}
}

// locationHook validates the selection against the locations valid for the
// case just before accepting it; the list can change between render and
// submit.
func locationHook(svc CaseService) stile.StepHook[Appointment] {
	return func(ctx context.Context, sess *domain.Session[Appointment]) ([]domain.FieldError, error) {
		locations, err := svc.Locations(ctx, sess.Identity)
		if err != nil {
			return nil, fmt.Errorf("failed to load locations: %w", err)
		}

		dto := sess.DTO
		for _, l := range locations {
			if l.Code == dto.Location {
				dto.LocationDescription = l.Description
				return nil, nil
			}
		}
		return []domain.FieldError{{
			Field:      "location",
			Constraint: "unknown",
			Message:    "the selected location is no longer available",
		}}, nil
	}
}

func whenHook(svc CaseService) stile.StepHook[Appointment] {
	return func(ctx context.Context, sess *domain.Session[Appointment]) ([]domain.FieldError, error) {
		dto := sess.DTO
		clash, err := svc.Clashes(ctx, sess.Identity, dto.Date, dto.Start, dto.End)
		if err != nil {
			return nil, fmt.Errorf("failed to check for clashes: %w", err)
		}
		if clash {
			return []domain.FieldError{{
				Field:      "start",
				Constraint: "clash",
				Message:    "the case already has an appointment in this slot",
			}}, nil
		}
		return nil, nil
	}
}

// checkHook performs the terminal action: it books the appointment. The
// confirmation step that follows is GET-only, so a browser back cannot book
// twice.
func checkHook(svc CaseService) stile.StepHook[Appointment] {
	return func(ctx context.Context, sess *domain.Session[Appointment]) ([]domain.FieldError, error) {
		ref, err := svc.Create(ctx, sess.Identity, *sess.DTO)
		if err != nil {
			return nil, fmt.Errorf("failed to create appointment: %w", err)
		}
		sess.DTO.Reference = ref
		return nil, nil
	}
}
