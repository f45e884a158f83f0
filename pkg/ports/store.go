package ports

import (
	"context"

	"github.com/fewston/stile/pkg/domain"
)

// SessionStore defines the interface for persisting wizard sessions between
// requests. Sessions are ephemeral: scoped to the user's authenticated
// session lifetime, discarded on flow completion or expiry.
type SessionStore[D any] interface {
	// Save persists the session under the given key.
	Save(ctx context.Context, key string, sess *domain.Session[D]) error

	// Load retrieves the session for the given key.
	// Returns domain.ErrSessionNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Session[D], error)

	// Delete removes the session for the given key.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all live sessions.
	List(ctx context.Context) ([]string, error)
}
