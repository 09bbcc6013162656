package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/dropDatabas3/authflow/internal/observability/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationLockID es la clave del advisory lock que serializa réplicas
// migrando en paralelo.
const migrationLockID int64 = 0x61757468666c6f77 // "authflow"

// Migrate aplica los *.sql de fsys que falten en schema_migrations, en orden
// lexicográfico, cada uno en su propia transacción. Devuelve cuántos aplicó.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) (int, error) {
	return runMigrations(ctx, s.pool, fsys, 30*time.Second)
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, wait time.Duration) (int, error) {
	log := logger.From(ctx).With(logger.Component("store.pg"), logger.Op("Migrate"))

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	lctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	var got bool
	if err := conn.QueryRow(lctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&got); err != nil {
		return 0, fmt.Errorf("try lock: %w", err)
	}
	if !got {
		log.Info("migration lock held by another process, waiting")
		if _, err := conn.Exec(lctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
			return 0, fmt.Errorf("lock: %w", err)
		}
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("release migration lock failed", logger.Err(err))
		}
	}()

	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	rows, err := conn.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return 0, fmt.Errorf("query applied: %w", err)
	}
	done := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, err
		}
		done[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		version := strings.TrimSuffix(name, ".sql")
		if done[version] {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return applied, err
		}
		if _, err := tx.Exec(ctx, string(body)); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, err
		}
		applied++
		log.Info("migration applied", logger.String("version", version))
	}
	return applied, nil
}
