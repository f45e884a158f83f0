// Package record implements the record-outcome flow: capturing whether an
// appointment was attended and complied with, with free-text notes.
package record

import "context"

// Case is the slice of the case record this flow needs.
type Case struct {
	Identity string
	Name     string
	Managers []string
}

// Authorized reports whether the given user manages the case.
func (c Case) Authorized(username string) bool {
	for _, m := range c.Managers {
		if m == username {
			return true
		}
	}
	return false
}

// OutcomeService is the upstream port this flow records outcomes through.
type OutcomeService interface {
	Case(ctx context.Context, identity string) (Case, error)

	// Record stores the outcome and returns its reference.
	Record(ctx context.Context, identity string, out Outcome) (string, error)
}

// notesLimit caps the free-text notes field.
const notesLimit = 4000
