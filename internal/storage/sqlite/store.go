// Package sqlite provides a SQLite-backed snapshot store for single-player installs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/migrations"
)

// Store persists snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ save.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies the embedded migrations.
//
// Precondition: path must be non-empty; its directory must exist.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	src, err := iofs.New(migrations.FS, migrations.SQLiteDir)
	if err != nil {
		return err
	}
	drv, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return err
	}
	// m.Close would close sqlDB along with the driver.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save implements save.Store.
func (s *Store) Save(ctx context.Context, slot string, snap save.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return errors.New("save slot name must not be empty")
	}
	data, err := save.Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (slot, player_name, day, data, saved_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (slot) DO UPDATE SET
		   player_name = excluded.player_name,
		   day = excluded.day,
		   data = excluded.data,
		   saved_at = excluded.saved_at,
		   updated_at = excluded.updated_at`,
		slot, snap.Player.Name, snap.Player.Day, data, toMillis(snap.SavedAt), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", slot, err)
	}
	return nil
}

// Load implements save.Store.
func (s *Store) Load(ctx context.Context, slot string) (save.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return save.Snapshot{}, err
	}
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE slot = ?`, slot).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return save.Snapshot{}, fmt.Errorf("%w: %s", save.ErrNotFound, slot)
		}
		return save.Snapshot{}, fmt.Errorf("load snapshot %q: %w", slot, err)
	}
	return save.Decode(data)
}

// List implements save.Store.
func (s *Store) List(ctx context.Context) ([]save.Slot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT slot, player_name, day, saved_at FROM snapshots ORDER BY saved_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []save.Slot
	for rows.Next() {
		var sl save.Slot
		var savedAt int64
		if err := rows.Scan(&sl.Name, &sl.PlayerName, &sl.Day, &savedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot slot: %w", err)
		}
		sl.SavedAt = fromMillis(savedAt)
		out = append(out, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot slots: %w", err)
	}
	return out, nil
}

// Delete implements save.Store.
func (s *Store) Delete(ctx context.Context, slot string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM snapshots WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", save.ErrNotFound, slot)
	}
	return nil
}
