package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/save"
)

// saveTimeout bounds one autosave write.
const saveTimeout = 10 * time.Second

// Snapshotter produces the state an Autosaver writes. *session.Session satisfies it.
type Snapshotter interface {
	Snapshot(now time.Time) save.Snapshot
}

// Autosaver is a Service that snapshots a session into a save slot every
// interval and once more when stopped.
type Autosaver struct {
	store    save.Store
	src      Snapshotter
	slot     string
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	stop  chan struct{}
	once  sync.Once
	saves atomic.Int64
}

// NewAutosaver creates an Autosaver. An interval <= 0 only saves on Stop.
//
// Precondition: store, src and logger must be non-nil; slot must be non-empty.
func NewAutosaver(store save.Store, src Snapshotter, slot string, interval time.Duration, logger *zap.Logger) *Autosaver {
	return &Autosaver{
		store:    store,
		src:      src,
		slot:     slot,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start saves on every tick until Stop is called.
func (a *Autosaver) Start() error {
	if a.interval <= 0 {
		<-a.stop
		return nil
	}
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return nil
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			if err := a.SaveNow(ctx); err != nil {
				a.logger.Warn("autosave failed", zap.String("slot", a.slot), zap.Error(err))
			}
			cancel()
		}
	}
}

// Stop ends the ticker loop and writes a final snapshot. Calling Stop twice is a no-op.
func (a *Autosaver) Stop() {
	a.once.Do(func() {
		close(a.stop)
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := a.SaveNow(ctx); err != nil {
			a.logger.Error("final autosave failed", zap.String("slot", a.slot), zap.Error(err))
		}
	})
}

// SaveNow writes one snapshot to the slot.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	start := time.Now()
	snap := a.src.Snapshot(a.now())
	if err := a.store.Save(ctx, a.slot, snap); err != nil {
		return fmt.Errorf("autosave to %q: %w", a.slot, err)
	}
	n := a.saves.Add(1)
	a.logger.Debug("autosaved",
		zap.String("slot", a.slot),
		zap.Int64("count", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Saves returns the number of successful saves so far.
func (a *Autosaver) Saves() int64 { return a.saves.Load() }
