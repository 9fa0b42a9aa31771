package botstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/botstate"
)

func newStore(t *testing.T) (*botstate.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return botstate.New(client), mr
}

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown chat is idle", func(t *testing.T) {
		store, _ := newStore(t)
		state, err := store.Get(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, botstate.Idle, state)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Set(ctx, 100, botstate.AwaitingUsername))

		state, err := store.Get(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, botstate.AwaitingUsername, state)
	})

	t.Run("chats are independent", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Set(ctx, 100, botstate.AwaitingBillCheck))

		state, err := store.Get(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, botstate.Idle, state)
	})

	t.Run("setting idle clears the key", func(t *testing.T) {
		store, mr := newStore(t)
		require.NoError(t, store.Set(ctx, 100, botstate.AwaitingBillNumber))
		require.NoError(t, store.Set(ctx, 100, botstate.Idle))
		assert.Empty(t, mr.Keys())
	})

	t.Run("state expires after an hour of inactivity", func(t *testing.T) {
		store, mr := newStore(t)
		require.NoError(t, store.Set(ctx, 100, botstate.AwaitingBillNumber))

		mr.FastForward(botstate.TTL + time.Second)

		state, err := store.Get(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, botstate.Idle, state)
	})
}
