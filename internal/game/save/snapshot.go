// Package save defines the opaque session snapshot, its JSON codec and the
// Store contract implemented by the storage adapters.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/party"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// FormatVersion is the snapshot format written by Encode.
const FormatVersion = 1

var (
	// ErrVersion is returned when decoding a snapshot written by an unknown format version.
	ErrVersion = errors.New("unsupported snapshot version")
	// ErrNotFound is returned by a Store when the slot holds no snapshot.
	ErrNotFound = errors.New("save slot not found")
)

// Snapshot is everything needed to resume a session.
type Snapshot struct {
	Version int           `json:"version"`
	Player  player.Player `json:"player"`
	// Unlocked mirrors Player.Unlocked as a sorted list.
	Unlocked  []string         `json:"unlocked"`
	Completed *event.Completed `json:"completed"`
	PartySize int              `json:"party_size"`
	Party     []party.Member   `json:"party"`
	SavedAt   time.Time        `json:"saved_at"`
}

// New captures a snapshot of the given state at savedAt.
//
// Postcondition: the snapshot shares no maps or slices with its inputs.
func New(p player.Player, completed *event.Completed, pt *party.Party, savedAt time.Time) Snapshot {
	s := Snapshot{
		Version:   FormatVersion,
		Player:    p.Clone(),
		Unlocked:  p.UnlockedIDs(),
		Completed: completed.Clone(),
		SavedAt:   savedAt.UTC(),
	}
	if pt != nil {
		cp := pt.Clone()
		s.PartySize = cp.Size()
		for _, m := range cp.Members() {
			s.Party = append(s.Party, *m)
		}
	}
	return s
}

// Validate checks that s can be restored.
func (s Snapshot) Validate() error {
	if s.Version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	if err := s.Player.Validate(); err != nil {
		return fmt.Errorf("snapshot player: %w", err)
	}
	for _, id := range s.Unlocked {
		if !s.Player.Unlocked[id] {
			return fmt.Errorf("snapshot unlocked %q missing from player", id)
		}
	}
	return nil
}

// RestoreParty rebuilds the party recorded in s.
func (s Snapshot) RestoreParty() (*party.Party, error) {
	return party.Restore(s.PartySize, s.Party)
}

// Encode serialises s as JSON.
func Encode(s Snapshot) ([]byte, error) {
	if s.Completed == nil {
		s.Completed = event.NewCompleted()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot written by Encode.
//
// Postcondition: Returns ErrVersion (wrapped) for an unknown format version.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Completed == nil {
		s.Completed = event.NewCompleted()
	}
	if s.Player.Unlocked == nil {
		s.Player.Unlocked = make(map[string]bool)
	}
	for _, id := range s.Unlocked {
		s.Player.Unlocked[id] = true
	}
	s.Player = s.Player.Clone()
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Equal reports whether a and b describe the same state, ignoring SavedAt.
func Equal(a, b Snapshot) bool {
	ea, err := Encode(a.withoutTime())
	if err != nil {
		return false
	}
	eb, err := Encode(b.withoutTime())
	if err != nil {
		return false
	}
	return slices.Equal(ea, eb)
}

func (s Snapshot) withoutTime() Snapshot {
	s.SavedAt = time.Time{}
	return s
}
