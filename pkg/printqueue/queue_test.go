package printqueue_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/printqueue"
)

func newQueue(t *testing.T) *printqueue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return printqueue.New(client)
}

func TestEnqueue(t *testing.T) {
	t.Parallel()
	q := newQueue(t)
	ctx := context.Background()

	t.Run("ids start at one and increase", func(t *testing.T) {
		id1, err := q.Enqueue(ctx, "gallery_a", "a.pdf", []byte{0x01})
		require.NoError(t, err)
		id2, err := q.Enqueue(ctx, "gallery_a", "b.pdf", []byte{0x02})
		require.NoError(t, err)
		assert.Equal(t, int64(1), id1)
		assert.Equal(t, int64(2), id2)
	})

	t.Run("counters are per tenant", func(t *testing.T) {
		id, err := q.Enqueue(ctx, "gallery_b", "x.pdf", []byte{0x03})
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("empty tenant rejected", func(t *testing.T) {
		_, err := q.Enqueue(ctx, "", "a.pdf", nil)
		require.ErrorIs(t, err, printqueue.ErrEmptyTenant)
	})

	t.Run("empty file name rejected", func(t *testing.T) {
		_, err := q.Enqueue(ctx, "gallery_a", "", nil)
		require.ErrorIs(t, err, printqueue.ErrEmptyFileName)
	})
}

func TestMonotonicIDsUnderConcurrency(t *testing.T) {
	t.Parallel()
	q := newQueue(t)
	ctx := context.Background()

	const n = 50
	ids := make([]int64, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := q.Enqueue(ctx, "gallery_c", "f.pdf", []byte{byte(i)})
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		assert.GreaterOrEqual(t, id, int64(1))
		assert.LessOrEqual(t, id, int64(n))
	}
}

func TestPoll(t *testing.T) {
	t.Parallel()
	q := newQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, "gallery_a", "a.pdf", []byte{0x01})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "gallery_a", "b.pdf", []byte{0x02})
	require.NoError(t, err)

	t.Run("fifo order from zero cursor", func(t *testing.T) {
		jobs, err := q.Poll(ctx, "gallery_a", 0)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, int64(1), jobs[0].ID)
		assert.Equal(t, "a.pdf", jobs[0].FileName)
		assert.Equal(t, []byte{0x01}, jobs[0].Payload)
		assert.Equal(t, int64(2), jobs[1].ID)
	})

	t.Run("since cursor filters", func(t *testing.T) {
		jobs, err := q.Poll(ctx, "gallery_a", 1)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, int64(2), jobs[0].ID)
	})

	t.Run("unknown tenant is empty", func(t *testing.T) {
		jobs, err := q.Poll(ctx, "gallery_unknown", 0)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}

func TestAck(t *testing.T) {
	t.Parallel()
	q := newQueue(t)
	ctx := context.Background()

	id1, err := q.Enqueue(ctx, "gallery_a", "a.pdf", []byte{0x01})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "gallery_a", "b.pdf", []byte{0x02})
	require.NoError(t, err)

	t.Run("removes only the acked job", func(t *testing.T) {
		require.NoError(t, q.Ack(ctx, "gallery_a", id1))

		jobs, err := q.Poll(ctx, "gallery_a", 0)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, int64(2), jobs[0].ID)
	})

	t.Run("absent id is a no-op", func(t *testing.T) {
		require.NoError(t, q.Ack(ctx, "gallery_a", 999))

		jobs, err := q.Poll(ctx, "gallery_a", 0)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})

	t.Run("ids are not reused after ack", func(t *testing.T) {
		id, err := q.Enqueue(ctx, "gallery_a", "c.pdf", []byte{0x03})
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	})
}
