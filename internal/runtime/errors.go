package runtime

import (
	"fmt"

	"github.com/fewston/stile/pkg/domain"
)

// ProtocolError reports a request that violates a step's method contract,
// such as a POST to a GET-only confirmation step. A 4xx condition, never a
// soft redirect.
type ProtocolError struct {
	Step   domain.Step
	Method string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("step %q does not accept %s requests", e.Step, e.Method)
}
