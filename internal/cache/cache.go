// Package cache provee un key/value con TTL para estado efímero del flujo
// OAuth2 (authorization requests pendientes).
//
// Drivers:
//   - memory: in-process (go-cache), para desarrollo/testing o una sola réplica
//   - redis:  compartido entre réplicas, para producción
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o venció.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. ttl 0 = sin vencimiento.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// GetDel lee y borra en una sola operación: ante llamadas concurrentes
	// sobre la misma key exactamente una obtiene el valor.
	GetDel(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
	Stats(ctx context.Context) (Stats, error)
}

// Stats contiene estadísticas del cache.
type Stats struct {
	Driver string
	Keys   int64
	Hits   int64
	Misses int64
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver   string `yaml:"driver"` // "memory" | "redis"
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// New crea un cliente según cfg.Driver. Driver vacío = memory.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return nil, errors.New("cache: unknown driver " + cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
