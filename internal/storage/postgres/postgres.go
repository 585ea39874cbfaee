// Package postgres stores session snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/heartbound/internal/config"
)

// applicationName tags heartbound connections in pg_stat_activity.
const applicationName = "heartbound"

// DefaultPingTimeout bounds the reachability check performed by Open.
const DefaultPingTimeout = 5 * time.Second

// poolConfig translates the database section of the heartbound config into
// pgx pool settings. Zero limits keep the pgx defaults.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= pc.MaxConns {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	return pc, nil
}

// Open connects to the snapshot database and returns a store that owns its pool.
//
// Precondition: the snapshots migration has been applied (see cmd/migrate).
// Postcondition: returns a store whose database answered a ping within
// pingTimeout, or a non-nil error with no connections left open. A
// non-positive pingTimeout means DefaultPingTimeout.
func Open(ctx context.Context, cfg config.DatabaseConfig, pingTimeout time.Duration) (*SnapshotStore, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	st := &SnapshotStore{db: db, owned: true}
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	if err := st.Ping(ctx, pingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging snapshot database: %w", err)
	}
	return st, nil
}

// Ping reports whether the snapshot database responds within timeout.
func (r *SnapshotStore) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.db.Ping(ctx)
}

// Close releases the pool when the store opened it itself.
//
// Postcondition: a store built by Open is unusable afterwards. A store built
// by NewSnapshotStore leaves the caller's pool open.
func (r *SnapshotStore) Close() {
	if r.owned {
		r.db.Close()
	}
}
