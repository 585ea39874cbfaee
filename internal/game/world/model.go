// Package world provides the location catalog: named places, the exits
// between them and the phases of the day each is open.
package world

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

var (
	// ErrNoExit is returned when the destination is not adjacent to the origin.
	ErrNoExit = errors.New("no way there from here")
	// ErrClosed is returned when the destination is closed at the current time of day.
	ErrClosed = errors.New("closed at this hour")
)

// Location is one place the player can be.
type Location struct {
	// ID uniquely identifies the location.
	ID string
	// Name is the display name.
	Name string
	// Description is shown when the player arrives.
	Description string
	// Exits lists the IDs of adjacent locations.
	Exits []string
	// Hours lists the phases the location is open. Empty means always open.
	Hours []player.TimeOfDay
	// Shop marks locations where items can be bought.
	Shop bool
	// Opponents lists NPC template IDs that can be challenged here.
	Opponents []string
}

// HasExit reports whether to is directly reachable from l.
func (l *Location) HasExit(to string) bool {
	return slices.Contains(l.Exits, to)
}

// OpenAt reports whether l is open during t.
func (l *Location) OpenAt(t player.TimeOfDay) bool {
	return len(l.Hours) == 0 || slices.Contains(l.Hours, t)
}

// Validate checks location invariants that do not depend on other locations.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (l *Location) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("location ID must not be empty")
	}
	if l.Name == "" {
		return fmt.Errorf("location %q: name must not be empty", l.ID)
	}
	for _, e := range l.Exits {
		if e == l.ID {
			return fmt.Errorf("location %q: exit to itself", l.ID)
		}
	}
	for _, h := range l.Hours {
		if !h.Valid() {
			return fmt.Errorf("location %q: invalid hour %d", l.ID, int(h))
		}
	}
	return nil
}
