package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/authflow/internal/cache"
	"github.com/dropDatabas3/authflow/internal/config"
	jwtx "github.com/dropDatabas3/authflow/internal/jwt"
	"github.com/dropDatabas3/authflow/internal/metrics"
	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/dropDatabas3/authflow/internal/rate"
	"github.com/dropDatabas3/authflow/internal/security/secretbox"
	"github.com/dropDatabas3/authflow/internal/store"
	"github.com/dropDatabas3/authflow/internal/store/memory"
	"github.com/dropDatabas3/authflow/internal/store/pg"
	migrations "github.com/dropDatabas3/authflow/migrations/postgres"
)

// Runtime es el App más todo lo que hay que cerrar al apagar.
type Runtime struct {
	*App
	Config  *config.Config
	Store   store.Store
	Cache   cache.Client
	Metrics *metrics.Metrics
}

// Build abre store, cache, llaves y métricas según cfg y cablea el App.
// Ante error cierra lo que haya abierto.
func Build(ctx context.Context, cfg *config.Config) (rt *Runtime, err error) {
	log := logger.From(ctx).With(logger.Component("wiring"))

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			st.Close()
		}
	}()

	c, err := cache.New(ctx, cache.Config{
		Driver:   cfg.Cache.Driver,
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	ks, err := KeyStore(cfg)
	if err != nil {
		return nil, err
	}
	keys, err := ks.Ensure()
	if err != nil {
		return nil, fmt.Errorf("signing keys: %w", err)
	}
	log.Info("signing key loaded", logger.KID(keys.KID))

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if p, ok := st.(*pg.Store); ok {
		if err := m.RegisterPool(p.Pool()); err != nil {
			return nil, fmt.Errorf("metrics pool: %w", err)
		}
	}

	tokenLimiter, loginLimiter := limiters(cfg, c)

	a, err := New(Deps{
		Config:       cfg,
		Store:        st,
		Cache:        c,
		Keys:         keys,
		Metrics:      m,
		TokenLimiter: tokenLimiter,
		LoginLimiter: loginLimiter,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{App: a, Config: cfg, Store: st, Cache: c, Metrics: m}, nil
}

// Close libera cache y store.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if err := r.Cache.Close(); err != nil {
		logger.L().Warn("cache close failed", logger.Err(err))
	}
	r.Store.Close()
}

// KeyStore arma el keystore de archivos; con keys.master_key sella la privada.
func KeyStore(cfg *config.Config) (*jwtx.FileKeyStore, error) {
	ks := jwtx.NewFileKeyStore(cfg.Keys.Dir, cfg.Keys.Bits)
	if cfg.Keys.MasterKey != "" {
		box, err := secretbox.FromString(cfg.Keys.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("keys.master_key: %w", err)
		}
		ks.Box = box
	}
	return ks, nil
}

// OpenStore abre el store configurado y, si storage.migrate, aplica migraciones.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.Storage.Migrate {
			n, err := st.Migrate(ctx, migrations.FS)
			if err != nil {
				st.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.From(ctx).Info("migrations applied", logger.Component("wiring"), logger.Count(n))
		}
		return st, nil
	case "memory", "":
		logger.From(ctx).Warn("using in-memory store: data is lost on restart", logger.Component("wiring"))
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// limiters usa Redis si el cache es Redis (ventana compartida entre
// réplicas) y un token bucket local en otro caso.
func limiters(cfg *config.Config, c cache.Client) (token, login rate.Limiter) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	if raw, ok := c.(interface{ Raw() *redis.Client }); ok {
		prefix := cfg.Cache.Prefix + ":rl:"
		return rate.NewRedisLimiter(raw.Raw(), prefix+"token:", cfg.Rate.Token.Limit, cfg.Rate.Token.Window),
			rate.NewRedisLimiter(raw.Raw(), prefix+"login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Token.Limit, cfg.Rate.Token.Window),
		rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
}
