package ports

import "github.com/fewston/stile/pkg/domain"

// URLResolver maps an (identity, step) pair to the step's page URL. The
// hosting web layer owns URL templating; the engine only ever asks for "the
// URL for step X of the flow for identity Y".
type URLResolver interface {
	StepURL(identity string, step domain.Step) string
}

// URLFunc adapts an ordinary function to the URLResolver interface.
type URLFunc func(identity string, step domain.Step) string

// StepURL calls f(identity, step).
func (f URLFunc) StepURL(identity string, step domain.Step) string {
	return f(identity, step)
}
