/*
Package stile is a multi-step wizard engine: a small finite-state form machine
for building "one question per page" web flows that accumulate a domain object
across steps.

It separates the declarative step graph (which steps exist and how answers
route between them) from the execution state (the per-user session holding the
partially-built DTO and completed steps) and from side effects (per-step
domain hooks). The engine produces view models and redirects, never HTML; the
hosting web layer owns routing, templating, and session storage wiring.

# Concept

A Flow is declared as a plain table: an ordered set of steps, each with a
next-step rule that may branch on earlier answers. The engine recomputes the
full path from the live DTO on every navigation decision, so changing an
earlier branch-determining answer reshapes the forward path and back-links
with no cache to invalidate. Reachability is asserted on every request:
skipped prerequisites, foreign identities, and finished flows are silently
corrected via redirect, which keeps direct URL entry and browser back-button
use safe.

# Key Features

  - Declarative step graph: steps and transition rules as data, one generic
    engine instance per flow, no per-flow inheritance.
  - Partial validation: each step validates only the fields it owns, with
    conditional requirements expressed against the DTO's current state.
  - Idempotent confirmation steps: GET-only, completed by being viewed,
    safe to revisit without re-triggering side effects.
  - Explicit sessions: the wizard session is passed in and out of every call,
    keeping the engine testable independent of any web framework.

# Usage

	graph, _ := domain.NewGraph[Appointment](
		domain.StepDef[Appointment]{ID: "type", Next: typeRule},
		domain.StepDef[Appointment]{ID: "when", Next: domain.Always[Appointment]("confirm")},
		domain.StepDef[Appointment]{ID: "confirm", Kind: domain.KindConfirmation},
	)

	flow, err := stile.New("arrange", graph, urls,
		stile.WithInit(initHook),
		stile.WithHooks(hooks),
		stile.WithViews(views),
		stile.WithRules(rules),
	)

	// GET /arrange/{identity}            -> flow.Init(...)
	// GET /arrange/{identity}/{step}     -> flow.ViewStep(...)
	// POST /arrange/{identity}/{step}    -> flow.UpdateStep(...)

The adapters under pkg/adapters provide session stores (memory, Redis) and a
chi-based HTTP route adapter implementing exactly that mapping.
*/
package stile
