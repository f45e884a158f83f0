package domain

// Session is the per-user, per-flow wizard record: the identity it was opened
// for (e.g. a case reference), the partially-built DTO, and the ordered set of
// completed steps.
//
// DTO and Completed are either both present or both absent. Their joint
// absence is the signal for "uninitialized, must reset" — the zero Session is
// exactly that.
type Session[D any] struct {
	Identity  string `json:"identity"`
	DTO       *D     `json:"dto"`
	Completed []Step `json:"completed"`
}

// NewSession creates an initialized, empty session for the given identity.
func NewSession[D any](identity string) *Session[D] {
	s := &Session[D]{}
	s.Reset(identity)
	return s
}

// Initialized reports whether the session holds a live DTO and completed set.
func (s *Session[D]) Initialized() bool {
	return s != nil && s.DTO != nil && s.Completed != nil
}

// Reset discards the accumulated DTO and progress and re-opens the session
// for the given identity.
func (s *Session[D]) Reset(identity string) {
	var dto D
	s.Identity = identity
	s.DTO = &dto
	s.Completed = []Step{}
}

// HasCompleted reports whether the step has been completed.
func (s *Session[D]) HasCompleted(step Step) bool {
	for _, c := range s.Completed {
		if c == step {
			return true
		}
	}
	return false
}

// MarkCompleted appends the step to the completed set. Re-marking an already
// completed step is a no-op, so the set stays duplicate-free.
func (s *Session[D]) MarkCompleted(step Step) {
	if !s.HasCompleted(step) {
		s.Completed = append(s.Completed, step)
	}
}
