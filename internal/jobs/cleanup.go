// Package jobs contiene tareas periódicas del servidor.
package jobs

import (
	"context"
	"time"

	"github.com/dropDatabas3/authflow/internal/metrics"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/store"
)

// Purger es el subconjunto del store que usa la limpieza.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (store.PurgeResult, error)
}

// Cleanup purga codes, tokens y sesiones vencidos.
type Cleanup struct {
	Store    Purger
	Metrics  *metrics.Metrics
	Interval time.Duration
	Timeout  time.Duration

	now func() time.Time
}

func NewCleanup(s Purger, m *metrics.Metrics, interval time.Duration) *Cleanup {
	return &Cleanup{Store: s, Metrics: m, Interval: interval, Timeout: time.Minute, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (c *Cleanup) WithClock(now func() time.Time) *Cleanup {
	c.now = now
	return c
}

// RunOnce ejecuta una pasada y reporta lo borrado.
func (c *Cleanup) RunOnce(ctx context.Context) (store.PurgeResult, error) {
	log := logger.From(ctx).With(logger.Component("cleanup"), logger.Op("Cleanup.RunOnce"))

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	start := now()
	res, err := c.Store.PurgeExpired(ctx, start)
	if err != nil {
		log.Error("purge failed", logger.Err(err))
		return res, err
	}

	c.Metrics.Purged("codes", res.Codes)
	c.Metrics.Purged("access_tokens", res.AccessTokens)
	c.Metrics.Purged("refresh_tokens", res.RefreshTokens)
	c.Metrics.Purged("sessions", res.Sessions)

	if res.Total() > 0 {
		log.Info("expired credentials purged",
			logger.Int64("codes", res.Codes),
			logger.Int64("access_tokens", res.AccessTokens),
			logger.Int64("refresh_tokens", res.RefreshTokens),
			logger.Int64("sessions", res.Sessions),
			logger.Duration(time.Since(start)),
		)
	}
	return res, nil
}

// Run purga al arrancar y luego cada Interval hasta que ctx termine.
// Un fallo de una pasada no detiene el loop.
func (c *Cleanup) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	logger.From(ctx).Info("cleanup scheduler started",
		logger.Component("cleanup"), logger.Duration(interval))

	_, _ = c.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = c.RunOnce(ctx)
		}
	}
}
