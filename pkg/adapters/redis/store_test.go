package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fewston/stile/pkg/adapters/redis"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dto struct {
	Type string `json:"type"`
}

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient[dto](client)
	ports.RunSessionStoreContract[dto](t, store, func(identity string) *domain.Session[dto] {
		sess := domain.NewSession[dto](identity)
		sess.DTO.Type = "office"
		return sess
	})
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient[dto](client, redis.WithTTL[dto](time.Minute))
	require.NoError(t, store.Save(ctx, "short-lived", domain.NewSession[dto]("X1")))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "short-lived")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLocker_MutualExclusion(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, "stile:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess-1", time.Minute)
	require.NoError(t, err)

	// A second acquisition must block until released or the context ends.
	blocked, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, "sess-1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "sess-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
