package kvstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores returns every Store implementation available to this test run.
// Redis is exercised when PERSONA_TEST_REDIS_ADDR points at a server.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	mem := NewMemoryStore()
	t.Cleanup(func() { mem.Close() })
	out := map[string]Store{"memory": mem}

	if addr := os.Getenv("PERSONA_TEST_REDIS_ADDR"); addr != "" {
		rs, err := NewRedisStore(context.Background(), RedisOptions{
			Addr:   addr,
			Prefix: "persona-test:" + uuid.NewString() + ":",
		})
		require.NoError(t, err)
		t.Cleanup(func() { rs.Close() })
		out["redis"] = rs
	}
	return out
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "job:1", []byte(`{"status":"queued"}`), time.Hour))
			got, err := s.Get(ctx, "job:1")
			require.NoError(t, err)
			assert.Equal(t, `{"status":"queued"}`, string(got))

			require.NoError(t, s.Delete(ctx, "job:1"))
			_, err = s.Get(ctx, "job:1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SetNX(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := s.SetNX(ctx, "lock:UC1:team1", []byte("job-a"), time.Hour)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.SetNX(ctx, "lock:UC1:team1", []byte("job-b"), time.Hour)
			require.NoError(t, err)
			assert.False(t, ok)

			got, err := s.Get(ctx, "lock:UC1:team1")
			require.NoError(t, err)
			assert.Equal(t, "job-a", string(got))
		})
	}
}

func TestStore_DeleteIfEquals(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "lock", []byte("owner"), time.Hour))

			ok, err := s.DeleteIfEquals(ctx, "lock", []byte("intruder"))
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = s.DeleteIfEquals(ctx, "lock", []byte("owner"))
			require.NoError(t, err)
			assert.True(t, ok)

			_, err = s.Get(ctx, "lock")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Queue(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Pop(ctx, "queue")
			assert.ErrorIs(t, err, ErrNotFound)

			for i := 0; i < 3; i++ {
				require.NoError(t, s.Push(ctx, "queue", []byte(fmt.Sprintf("job-%d", i))))
			}
			for i := 0; i < 3; i++ {
				got, err := s.Pop(ctx, "queue")
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("job-%d", i), string(got))
			}
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	ok, err := s.SetNX(ctx, "lock", []byte("a"), 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	_, err = s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = s.SetNX(ctx, "lock", []byte("b"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be re-acquired")
	assert.GreaterOrEqual(t, s.Stats().Evictions, int64(1))
}

func TestMemoryStore_SetNXIsExclusive(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, _ := s.SetNX(context.Background(), "lock", []byte(fmt.Sprint(i)), time.Hour)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	v := []byte("original")
	require.NoError(t, s.Set(ctx, "k", v, 0))
	v[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
