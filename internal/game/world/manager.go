package world

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// Map indexes the loaded locations for lookup by ID. It is read-only after
// construction and safe for concurrent use.
type Map struct {
	locations map[string]*Location
	start     string
}

// NewMap creates a Map from locs with start as the starting location.
//
// Precondition: locs must be non-empty and start must be one of them.
// Postcondition: Returns a Map with every exit resolved, or an error on
// duplicate IDs, a missing start or a dangling exit.
func NewMap(start string, locs []*Location) (*Map, error) {
	m := &Map{locations: make(map[string]*Location, len(locs)), start: start}
	for _, l := range locs {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, exists := m.locations[l.ID]; exists {
			return nil, fmt.Errorf("duplicate location ID: %q", l.ID)
		}
		m.locations[l.ID] = l
	}
	if _, ok := m.locations[start]; !ok {
		return nil, fmt.Errorf("start location %q not found", start)
	}
	if err := m.ValidateExits(); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidateExits checks that every exit target resolves to a known location.
//
// Postcondition: Returns nil if all exits resolve, or an error naming the first dangling target.
func (m *Map) ValidateExits() error {
	for _, l := range m.All() {
		for _, to := range l.Exits {
			if _, ok := m.locations[to]; !ok {
				return fmt.Errorf("location %q: exit targets unknown location %q", l.ID, to)
			}
		}
	}
	return nil
}

// Location returns the location with the given ID.
func (m *Map) Location(id string) (*Location, bool) {
	l, ok := m.locations[id]
	return l, ok
}

// Start returns the starting location.
func (m *Map) Start() *Location { return m.locations[m.start] }

// Len returns the number of locations.
func (m *Map) Len() int { return len(m.locations) }

// All returns every location sorted by ID.
func (m *Map) All() []*Location {
	out := make([]*Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Navigate resolves movement from one location to an adjacent one at time t.
//
// Precondition: from must exist.
// Postcondition: Returns the destination, or an error wrapping ErrNoExit
// or ErrClosed for gate failures, or a plain error for unknown IDs.
func (m *Map) Navigate(from, to string, t player.TimeOfDay) (*Location, error) {
	origin, ok := m.locations[from]
	if !ok {
		return nil, fmt.Errorf("location %q not found", from)
	}
	dest, ok := m.locations[to]
	if !ok {
		return nil, fmt.Errorf("location %q not found", to)
	}
	if !origin.HasExit(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoExit, origin.Name, dest.Name)
	}
	if !dest.OpenAt(t) {
		return nil, fmt.Errorf("%w: %s is closed in the %s", ErrClosed, dest.Name, t)
	}
	return dest, nil
}
