package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fewston/stile/internal/logging"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
)

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to wizard sessions. Within one process it uses
// reference-counted per-key mutexes (garbage collected when unused); across
// replicas an optional DistributedLocker extends the same guarantee.
type Manager[D any] struct {
	store ports.SessionStore[D]

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option[D any] func(*Manager[D])

// WithLocker enables distributed locking.
func WithLocker[D any](locker ports.DistributedLocker) Option[D] {
	return func(m *Manager[D]) { m.locker = locker }
}

// WithLogger configures a logger for deferred errors.
func WithLogger[D any](logger *slog.Logger) Option[D] {
	return func(m *Manager[D]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a session Manager over the given store.
func NewManager[D any](store ports.SessionStore[D], opts ...Option[D]) *Manager[D] {
	m := &Manager[D]{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must Lock entry.mu and call release(key) after unlocking.
func (m *Manager[D]) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager[D]) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the lock for the session key.
func (m *Manager[D]) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves an existing session from the store.
func (m *Manager[D]) Load(ctx context.Context, key string) (*domain.Session[D], error) {
	var sess *domain.Session[D]
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, key)
		return err
	})
	return sess, err
}

// Update runs one request's load-mutate-save cycle atomically: it loads the
// session (an uninitialized zero session when the key is new), applies fn,
// and writes the mutated session back in a single critical section.
func (m *Manager[D]) Update(ctx context.Context, key string, fn func(ctx context.Context, sess *domain.Session[D]) error) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		sess, err := m.store.Load(ctx, key)
		if err == domain.ErrSessionNotFound {
			sess = &domain.Session[D]{}
		} else if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		if err := fn(ctx, sess); err != nil {
			return err
		}

		if err := m.store.Save(ctx, key, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// Save persists the session state.
func (m *Manager[D]) Save(ctx context.Context, key string, sess *domain.Session[D]) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, sess)
	})
}

// Delete removes the session from the store.
func (m *Manager[D]) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager[D]) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager[D]) Store() ports.SessionStore[D] {
	return m.store
}
