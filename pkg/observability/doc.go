// Package observability binds the engine's lifecycle hooks to Prometheus
// metrics, giving operators visibility into step traffic, validation failure
// hot spots, and silent navigation corrections.
package observability
