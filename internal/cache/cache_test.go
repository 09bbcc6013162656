package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTest(t *testing.T) (*miniredis.Miniredis, Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisFromClient(rdb, "test")
}

func drivers(t *testing.T) map[string]Client {
	_, r := newRedisTest(t)
	return map[string]Client{
		"memory": NewMemory("test"),
		"redis":  r,
	}
}

func TestClient_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "missing")
			assert.True(t, IsNotFound(err))

			require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
			got, err := c.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)

			ok, err := c.Exists(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, c.Delete(ctx, "k"))
			_, err = c.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestClient_GetDelSingleWinner(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "once", "payload", time.Minute))

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if v, err := c.GetDel(ctx, "once"); err == nil {
						assert.Equal(t, "payload", v)
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins.Load())
		})
	}
}

func TestRedis_TTLExpires(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedisTest(t)

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Second))
	assert.True(t, mr.Exists("test:short"))

	mr.FastForward(11 * time.Second)
	_, err := c.Get(ctx, "short")
	assert.True(t, IsNotFound(err))
}

func TestMemory_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")
	require.NoError(t, c.Set(ctx, "a", "1", 0))
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Driver)
	assert.Equal(t, int64(1), st.Keys)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "memcached"})
	assert.Error(t, err)
}
