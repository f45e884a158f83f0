/*
Package domain contains the core model for the stile wizard engine.

It defines the fundamental entities of a multi-step form flow, such as Steps,
the step Graph, and the wizard Session. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Step: An opaque identifier for one page/state within a flow.
  - Graph: The declarative step table mapping every step to a next-step rule.
  - Session: The per-user, per-flow record holding the partially-built DTO and
    the set of completed steps.
  - FieldError: A recoverable validation failure scoped to one field.
*/
package domain
