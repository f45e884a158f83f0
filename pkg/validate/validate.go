// Package validate implements declarative, step-scoped field validation for
// wizard flows.
//
// Each DTO field is owned by exactly one step; a step's POST runs only the
// checks declared for that step, so going back to fix one answer never
// re-triggers validation noise for unrelated steps. Conditional requirements
// are expressed against the DTO's current state, not against request context.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/fewston/stile/pkg/domain"
)

// Date and clock layouts used by the temporal checks.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Check inspects the DTO and reports at most one field error.
type Check[D any] func(dto *D) *domain.FieldError

// Rules maps each step to the checks scoped to its field group.
type Rules[D any] map[domain.Step][]Check[D]

// Run applies the checks declared for one step and collects every failure,
// so the view can surface them together.
func Run[D any](rules Rules[D], step domain.Step, dto *D) []domain.FieldError {
	var errs []domain.FieldError
	for _, check := range rules[step] {
		if fe := check(dto); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// Required fails when the field value is empty or whitespace.
func Required[D any](field, message string, get func(*D) string) Check[D] {
	return func(dto *D) *domain.FieldError {
		if strings.TrimSpace(get(dto)) == "" {
			return &domain.FieldError{Field: field, Constraint: "required", Message: message}
		}
		return nil
	}
}

// RequiredIf fails when the condition holds against the current DTO state and
// the field value is empty.
func RequiredIf[D any](field, message string, when func(*D) bool, get func(*D) string) Check[D] {
	return func(dto *D) *domain.FieldError {
		if when(dto) && strings.TrimSpace(get(dto)) == "" {
			return &domain.FieldError{Field: field, Constraint: "required", Message: message}
		}
		return nil
	}
}

// OneOf fails when a non-empty value is not in the allowed set. Emptiness is
// Required's concern.
func OneOf[D any](field, message string, get func(*D) string, allowed ...string) Check[D] {
	return func(dto *D) *domain.FieldError {
		v := get(dto)
		if v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return &domain.FieldError{Field: field, Constraint: "oneof", Message: message}
	}
}

// ISODate fails when a non-empty value is not a calendar date in DateLayout.
func ISODate[D any](field, message string, get func(*D) string) Check[D] {
	return func(dto *D) *domain.FieldError {
		v := get(dto)
		if v == "" {
			return nil
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return &domain.FieldError{Field: field, Constraint: "date", Message: message}
		}
		return nil
	}
}

// FutureDate fails when a well-formed date falls before today in the clock's
// zone. Today itself is allowed; DateTimeFuture decides same-day validity
// against the paired time field.
func FutureDate[D any](field, message string, get func(*D) string, now func() time.Time) Check[D] {
	return func(dto *D) *domain.FieldError {
		v := get(dto)
		if v == "" {
			return nil
		}
		p, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil // ISODate reports the format failure
		}
		// Day boundaries belong to the clock's zone, not UTC: truncating the
		// instant would shift the boundary for any non-UTC deployment.
		n := now()
		today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		d := time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, n.Location())
		if d.Before(today) {
			return &domain.FieldError{Field: field, Constraint: "future", Message: message}
		}
		return nil
	}
}

// DateTimeFuture is a cross-field rule: the instant composed from the date
// and time fields, in the clock's zone, must not have passed. It stays silent
// while either value is missing or malformed, leaving those to the per-field
// checks.
func DateTimeFuture[D any](field, message string, getDate, getTime func(*D) string, now func() time.Time) Check[D] {
	return func(dto *D) *domain.FieldError {
		d, errD := time.Parse(DateLayout, getDate(dto))
		c, errC := time.Parse(TimeLayout, getTime(dto))
		if errD != nil || errC != nil {
			return nil
		}
		n := now()
		at := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, n.Location())
		if at.Before(n) {
			return &domain.FieldError{Field: field, Constraint: "future", Message: message}
		}
		return nil
	}
}

// ClockTime fails when a non-empty value is not a wall-clock time in TimeLayout.
func ClockTime[D any](field, message string, get func(*D) string) Check[D] {
	return func(dto *D) *domain.FieldError {
		v := get(dto)
		if v == "" {
			return nil
		}
		if _, err := time.Parse(TimeLayout, v); err != nil {
			return &domain.FieldError{Field: field, Constraint: "time", Message: message}
		}
		return nil
	}
}

// TimeAfter is a cross-field rule scoped to one step: the end time must be
// strictly after the start time. It stays silent while either value is
// missing or malformed, leaving those to the per-field checks.
func TimeAfter[D any](field, message string, getStart, getEnd func(*D) string) Check[D] {
	return func(dto *D) *domain.FieldError {
		start, errS := time.Parse(TimeLayout, getStart(dto))
		end, errE := time.Parse(TimeLayout, getEnd(dto))
		if errS != nil || errE != nil {
			return nil
		}
		if !end.After(start) {
			return &domain.FieldError{Field: field, Constraint: "after", Message: message}
		}
		return nil
	}
}

// MaxLen fails when the value exceeds max characters.
func MaxLen[D any](field string, max int, get func(*D) string) Check[D] {
	return func(dto *D) *domain.FieldError {
		if len([]rune(get(dto))) > max {
			return &domain.FieldError{
				Field:      field,
				Constraint: "maxlen",
				Message:    fmt.Sprintf("must be %d characters or fewer", max),
			}
		}
		return nil
	}
}
