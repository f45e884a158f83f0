package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session key cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// GraphError indicates a malformed step graph: a cycle, a rule yielding an
// undeclared step, or a missing successor. This is a defect in the flow's
// declaration, never a user-facing condition.
type GraphError struct {
	Step   Step
	Reason string
}

func (e *GraphError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("malformed step graph: %s", e.Reason)
	}
	return fmt.Sprintf("malformed step graph at %q: %s", e.Step, e.Reason)
}

// AccessDeniedError is returned by a flow's init hook when the acting user is
// not permitted to operate on the requested case. The hosting layer is
// expected to map it to an access-denied response, not to a validation
// message.
type AccessDeniedError struct {
	Identity string
	Reason   string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied for %q: %s", e.Identity, e.Reason)
}
