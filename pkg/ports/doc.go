/*
Package ports defines the driven ports (interfaces) for the stile engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various session storage backends, URL
schemes, and locking strategies.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading wizard Sessions.
  - URLResolver: Maps (identity, step) pairs to step page URLs.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
