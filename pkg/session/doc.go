// Package session orchestrates wizard session access around a SessionStore,
// guaranteeing that each request's load-mutate-save cycle runs atomically per
// session key.
package session
