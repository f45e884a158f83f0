package domain

// Step identifies one page/state within a flow. Steps form a closed set per
// flow; their total order is the order of declaration in the Graph.
type Step string

// StepKind defines the control-flow behavior of a step.
type StepKind int

const (
	// KindUpdate accepts a POST, mutates the DTO, and advances.
	KindUpdate StepKind = iota
	// KindConfirmation is GET-only and idempotent to revisit. Viewing it for
	// the first time marks it completed.
	KindConfirmation
)

func (k StepKind) String() string {
	if k == KindConfirmation {
		return "confirmation"
	}
	return "update"
}

// NextFunc computes the successor of a step from the current DTO snapshot.
// It must be pure and deterministic: the engine re-applies it on every
// navigation decision instead of caching the resolved path. Returning false
// marks the step as terminal.
type NextFunc[D any] func(dto *D) (Step, bool)

// Always returns a rule with a constant successor.
func Always[D any](next Step) NextFunc[D] {
	return func(*D) (Step, bool) { return next, true }
}

// StepDef declares a single step of a flow.
type StepDef[D any] struct {
	ID   Step
	Kind StepKind

	// Fields lists the posted form fields owned by this step. Only these are
	// merged into the DTO on a POST, and only this step validates them.
	Fields []string

	// Next is the transition rule. A nil Next marks a terminal step.
	Next NextFunc[D]
}

// Graph is the declarative step table of a flow: an ordered enumeration of
// steps plus a next-step rule per step. The entry step is the first declared
// member.
type Graph[D any] struct {
	order []Step
	defs  map[Step]StepDef[D]
}

// NewGraph builds a Graph from the declared steps. It fails when the table is
// empty, a step is declared twice, or no terminal step exists.
func NewGraph[D any](defs ...StepDef[D]) (*Graph[D], error) {
	if len(defs) == 0 {
		return nil, &GraphError{Reason: "graph declares no steps"}
	}

	g := &Graph[D]{
		order: make([]Step, 0, len(defs)),
		defs:  make(map[Step]StepDef[D], len(defs)),
	}

	terminal := false
	for _, def := range defs {
		if def.ID == "" {
			return nil, &GraphError{Reason: "step with empty identifier"}
		}
		if _, dup := g.defs[def.ID]; dup {
			return nil, &GraphError{Step: def.ID, Reason: "step declared twice"}
		}
		g.order = append(g.order, def.ID)
		g.defs[def.ID] = def
		if def.Next == nil {
			terminal = true
		}
	}

	if !terminal {
		return nil, &GraphError{Reason: "graph has no terminal step"}
	}

	return g, nil
}

// Entry returns the flow's entry step (first declared member).
func (g *Graph[D]) Entry() Step {
	return g.order[0]
}

// Steps returns the declared steps in declaration order.
func (g *Graph[D]) Steps() []Step {
	out := make([]Step, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of declared steps.
func (g *Graph[D]) Len() int {
	return len(g.order)
}

// Def returns the declaration of a step.
func (g *Graph[D]) Def(step Step) (StepDef[D], bool) {
	def, ok := g.defs[step]
	return def, ok
}

// Contains reports whether the step belongs to the declared set.
func (g *Graph[D]) Contains(step Step) bool {
	_, ok := g.defs[step]
	return ok
}

// Kind returns the declared kind of a step. Unknown steps report KindUpdate;
// callers are expected to check Contains first.
func (g *Graph[D]) Kind(step Step) StepKind {
	return g.defs[step].Kind
}

// Resolve computes the ordered path from the entry step to a terminal step by
// repeatedly applying each step's rule against the given DTO snapshot. The
// path is never cached: branch rules may depend on fields set by earlier
// steps, so it must be recomputed on every navigation decision.
//
// A rule yielding an undeclared step, or a walk exceeding the declared step
// count (a cycle), is a configuration defect reported as a GraphError.
func (g *Graph[D]) Resolve(dto *D) ([]Step, error) {
	path := make([]Step, 0, len(g.order))
	cur := g.Entry()

	for range g.order {
		def, ok := g.defs[cur]
		if !ok {
			return nil, &GraphError{Step: cur, Reason: "rule yields undeclared step"}
		}
		path = append(path, cur)

		if def.Next == nil {
			return path, nil
		}
		next, more := def.Next(dto)
		if !more {
			return path, nil
		}
		cur = next
	}

	return nil, &GraphError{Step: cur, Reason: "path exceeds declared step count (cycle in rules)"}
}
