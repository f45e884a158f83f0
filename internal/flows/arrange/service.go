// Package arrange registers the "arrange an appointment" wizard: a step table
// and DTO over the generic stile engine, backed by the probation case-record
// service for reference data and the terminal booking action.
package arrange

import "context"

// Case is the case record the flow operates on.
type Case struct {
	Identity string
	Name     string
	Managers []string
}

// Authorized reports whether the acting user manages the case.
func (c Case) Authorized(username string) bool {
	for _, m := range c.Managers {
		if m == username {
			return true
		}
	}
	return false
}

// AppointmentType is a bookable contact type from the reference data.
type AppointmentType struct {
	Code             string
	Description      string
	RequiresLocation bool

	// Countable marks types that count toward the case's rehabilitation
	// activity quota.
	Countable bool
}

// Location is an office location valid for the case's area.
type Location struct {
	Code        string
	Description string
}

// CaseService is the flow's port onto the external case-record systems. The
// hosting portal supplies the REST-backed implementation.
type CaseService interface {
	Case(ctx context.Context, identity string) (Case, error)
	AppointmentTypes(ctx context.Context) ([]AppointmentType, error)
	Locations(ctx context.Context, identity string) ([]Location, error)

	// CountableBookings returns how many quota-counting appointments the
	// case already has.
	CountableBookings(ctx context.Context, identity string) (int, error)

	// Clashes reports whether the case already has an appointment
	// overlapping the given slot.
	Clashes(ctx context.Context, identity, date, start, end string) (bool, error)

	// Create books the appointment and returns its reference.
	Create(ctx context.Context, identity string, appt Appointment) (string, error)
}

// countableLimit is the quota above which countable appointments cannot be
// arranged through this flow.
const countableLimit = 5
