package domain

import "fmt"

// FieldError is a single recoverable validation failure, scoped to exactly
// one field of one step. A step surfaces all of its failures together, not
// one at a time.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Constraint)
}

// FieldNames extracts the distinct field names from a list of errors, in
// first-seen order.
func FieldNames(errs []FieldError) []string {
	seen := make(map[string]bool, len(errs))
	var out []string
	for _, e := range errs {
		if !seen[e.Field] {
			seen[e.Field] = true
			out = append(out, e.Field)
		}
	}
	return out
}
