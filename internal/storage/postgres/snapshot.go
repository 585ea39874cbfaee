package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/heartbound/internal/game/save"
)

// SnapshotStore persists session snapshots in the snapshots table, one row per slot.
type SnapshotStore struct {
	db    *pgxpool.Pool
	owned bool
}

var _ save.Store = (*SnapshotStore)(nil)

// NewSnapshotStore creates a SnapshotStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the snapshots
// migration applied.
func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save upserts s into slot.
//
// Precondition: slot must be non-empty.
// Postcondition: a later Load(slot) returns a snapshot equal to s.
func (r *SnapshotStore) Save(ctx context.Context, slot string, s save.Snapshot) error {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return errors.New("save slot name must not be empty")
	}
	data, err := save.Encode(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO snapshots (slot, player_name, day, data, saved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (slot) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			day         = EXCLUDED.day,
			data        = EXCLUDED.data,
			saved_at    = EXCLUDED.saved_at,
			updated_at  = NOW()`,
		slot, s.Player.Name, s.Player.Day, data, s.SavedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", slot, err)
	}
	return nil
}

// Load returns the snapshot stored in slot.
//
// Postcondition: Returns an error wrapping save.ErrNotFound if the slot is empty.
func (r *SnapshotStore) Load(ctx context.Context, slot string) (save.Snapshot, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT data FROM snapshots WHERE slot = $1`, slot).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return save.Snapshot{}, fmt.Errorf("%w: %s", save.ErrNotFound, slot)
		}
		return save.Snapshot{}, fmt.Errorf("loading snapshot %q: %w", slot, err)
	}
	return save.Decode(data)
}

// List returns every slot, most recently saved first.
func (r *SnapshotStore) List(ctx context.Context) ([]save.Slot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT slot, player_name, day, saved_at
		FROM snapshots ORDER BY saved_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []save.Slot
	for rows.Next() {
		var sl save.Slot
		var savedAt time.Time
		if err := rows.Scan(&sl.Name, &sl.PlayerName, &sl.Day, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot slot: %w", err)
		}
		sl.SavedAt = savedAt.UTC()
		out = append(out, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot slots: %w", err)
	}
	return out, nil
}

// Delete removes slot.
//
// Postcondition: Returns an error wrapping save.ErrNotFound if nothing was deleted.
func (r *SnapshotStore) Delete(ctx context.Context, slot string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE slot = $1`, slot)
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", slot, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", save.ErrNotFound, slot)
	}
	return nil
}
