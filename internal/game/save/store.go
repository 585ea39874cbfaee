package save

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Slot summarises one stored snapshot.
type Slot struct {
	Name       string
	PlayerName string
	Day        int
	SavedAt    time.Time
}

// Store persists snapshots in named slots. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save writes s to slot, replacing any previous snapshot.
	Save(ctx context.Context, slot string, s Snapshot) error
	// Load returns the snapshot in slot, or an error wrapping ErrNotFound.
	Load(ctx context.Context, slot string) (Snapshot, error)
	// List returns every slot, most recently saved first.
	List(ctx context.Context) ([]Slot, error)
	// Delete removes slot. Deleting a missing slot returns an error wrapping ErrNotFound.
	Delete(ctx context.Context, slot string) error
}

// SlotOf summarises s under name.
func SlotOf(name string, s Snapshot) Slot {
	return Slot{Name: name, PlayerName: s.Player.Name, Day: s.Player.Day, SavedAt: s.SavedAt}
}

// SortSlots orders slots most recent first, then by name.
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].SavedAt.Equal(slots[j].SavedAt) {
			return slots[i].SavedAt.After(slots[j].SavedAt)
		}
		return slots[i].Name < slots[j].Name
	})
}

// MemoryStore keeps encoded snapshots in memory. It backs the "none" storage
// driver and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, slot string, s Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if slot == "" {
		return fmt.Errorf("save slot name must not be empty")
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = data
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, slot string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	data, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	return Decode(data)
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context) ([]Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Slot, 0, len(m.slots))
	for name, data := range m.slots {
		s, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", name, err)
		}
		out = append(out, SlotOf(name, s))
	}
	SortSlots(out)
	return out, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	delete(m.slots, slot)
	return nil
}
