package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/heartbound/internal/config"
	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/internal/storage/postgres"
	"github.com/cory-johannsen/heartbound/internal/testutil"
)

func newStore(t *testing.T) *postgres.SnapshotStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.Store
}

func snapshot(name string, day int, at time.Time) save.Snapshot {
	p := player.New(name)
	p.Location = "home"
	p.Day = day
	p.Affection["mika"] = 40
	p.Unlocked["mika"] = true
	p.Inventory["rose"] = 1
	return save.New(p, event.NewCompleted("meet_mika"), nil, at)
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	at := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)

	_, err := st.Load(ctx, "auto")
	assert.ErrorIs(t, err, save.ErrNotFound)

	first := snapshot("Rin", 3, at)
	require.NoError(t, st.Save(ctx, "auto", first))
	got, err := st.Load(ctx, "auto")
	require.NoError(t, err)
	assert.True(t, save.Equal(first, got))
	assert.True(t, got.Completed.Has("meet_mika"))

	// saving again replaces the slot
	second := snapshot("Rin", 4, at.Add(time.Hour))
	require.NoError(t, st.Save(ctx, "auto", second))
	got, err = st.Load(ctx, "auto")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Player.Day)
}

func TestSnapshotStore_ListAndDelete(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	at := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)

	require.NoError(t, st.Save(ctx, "old", snapshot("Rin", 1, at)))
	require.NoError(t, st.Save(ctx, "new", snapshot("Ao", 2, at.Add(time.Minute))))

	slots, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "new", slots[0].Name)
	assert.Equal(t, "Ao", slots[0].PlayerName)
	assert.Equal(t, 2, slots[0].Day)
	assert.True(t, at.Equal(slots[1].SavedAt))

	require.NoError(t, st.Delete(ctx, "old"))
	assert.ErrorIs(t, st.Delete(ctx, "old"), save.ErrNotFound)
	assert.Error(t, st.Save(ctx, " ", snapshot("Rin", 1, at)))
}

func TestOpen_PingAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	st, err := postgres.Open(ctx, pc.Config, 0)
	require.NoError(t, err)
	require.NoError(t, st.Ping(ctx, time.Second))
	st.Close()
	assert.Error(t, st.Ping(ctx, time.Second))

	// A store over a borrowed pool leaves it open.
	borrowed := postgres.NewSnapshotStore(pc.RawPool)
	borrowed.Close()
	assert.NoError(t, pc.RawPool.Ping(ctx))
}

func TestOpen_UnreachableDatabase(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "x", Password: "x", Name: "x", SSLMode: "disable",
	}
	_, err := postgres.Open(context.Background(), cfg, 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot database")
}
