package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventStepView       EventType = "step_view"
	EventStepComplete   EventType = "step_complete"
	EventSessionReset   EventType = "session_reset"
	EventValidationFail EventType = "validation_fail"
)

// StepEvent describes one engine decision for observability purposes.
type StepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Flow      string    `json:"flow"`
	Identity  string    `json:"identity"`
	Step      Step      `json:"step,omitempty"`

	// Reason is set on reset events ("identity mismatch", "flow closed", ...).
	Reason string `json:"reason,omitempty"`

	// Fields is set on validation events: the failing field names.
	Fields []string `json:"fields,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// optional and must not mutate the session.
type LifecycleHooks struct {
	OnStepView       func(context.Context, *StepEvent)
	OnStepComplete   func(context.Context, *StepEvent)
	OnSessionReset   func(context.Context, *StepEvent)
	OnValidationFail func(context.Context, *StepEvent)
}

// SecurityContext carries the identity of the acting user, supplied by the
// hosting layer's authentication. The engine treats it as opaque input to the
// flow's init hook.
type SecurityContext struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}
