package rate

import (
	"context"
	"math"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por clave (golang.org/x/time/rate) para
// despliegues de una sola réplica. Las claves ociosas se descartan en sweep.
type MemoryLimiter struct {
	limit xrate.Limit
	burst int
	idle  time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	lim  *xrate.Limiter
	seen time.Time
}

// NewMemoryLimiter permite max eventos por window con ráfaga max.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	return &MemoryLimiter{
		limit:   xrate.Every(window / time.Duration(max)),
		burst:   max,
		idle:    2 * window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := m.now()

	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{lim: xrate.NewLimiter(m.limit, m.burst)}
		m.buckets[key] = b
	}
	b.seen = now
	m.sweepLocked(now)
	m.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return Result{Allowed: false, Limit: int64(m.burst)}, nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, Limit: int64(m.burst), RetryAfter: d}, nil
	}
	rem := int64(math.Floor(b.lim.TokensAt(now)))
	return Result{Allowed: true, Limit: int64(m.burst), Remaining: max(rem, 0)}, nil
}

func (m *MemoryLimiter) sweepLocked(now time.Time) {
	if len(m.buckets) < 1024 {
		return
	}
	for k, b := range m.buckets {
		if now.Sub(b.seen) > m.idle {
			delete(m.buckets, k)
		}
	}
}
