// Package player defines the long-lived player state that every engine
// operation reads and transforms.
package player

import (
	"errors"
	"fmt"
	"sort"
)

// Affection bounds. Every affection value held by a Player lies in
// [MinAffection, MaxAffection].
const (
	MinAffection = 0
	MaxAffection = 100
)

// Player is the complete progression state of one player.
//
// Player is a value type whose maps are owned by the value. Engine operations
// never mutate a Player they are given; they Clone it, compute the next state
// on the clone, and return it.
//
// Invariant: Affection values are in [0,100]; stats, Money, HP and MP are never negative.
type Player struct {
	Name       string          `json:"name" yaml:"name"`
	Level      int             `json:"level" yaml:"level"`
	Experience int             `json:"experience" yaml:"experience"`
	RankPoints int             `json:"rank_points" yaml:"rank_points"`
	Stats      Stats           `json:"stats" yaml:"stats"`
	Inventory  map[string]int  `json:"inventory" yaml:"inventory"`
	Affection  map[string]int  `json:"affection" yaml:"affection"`
	Location   string          `json:"location" yaml:"location"`
	Day        int             `json:"day" yaml:"day"`
	Time       TimeOfDay       `json:"time" yaml:"time"`
	Money      int             `json:"money" yaml:"money"`
	HP         int             `json:"hp" yaml:"hp"`
	MaxHP      int             `json:"max_hp" yaml:"max_hp"`
	MP         int             `json:"mp" yaml:"mp"`
	MaxMP      int             `json:"max_mp" yaml:"max_mp"`
	Flags      map[string]bool `json:"flags" yaml:"flags"`
	Unlocked   map[string]bool `json:"unlocked" yaml:"unlocked"`
}

// New returns a level 1 player on day 1 in the morning with empty collections.
//
// Postcondition: all maps are non-nil; HP == MaxHP; MP == MaxMP.
func New(name string) Player {
	return Player{
		Name:      name,
		Level:     1,
		Day:       1,
		Time:      Morning,
		HP:        100,
		MaxHP:     100,
		MP:        50,
		MaxMP:     50,
		Inventory: make(map[string]int),
		Affection: make(map[string]int),
		Flags:     make(map[string]bool),
		Unlocked:  make(map[string]bool),
	}
}

// Clone returns a deep copy of p. Mutating the copy never affects p.
//
// Postcondition: all maps of the result are non-nil and distinct from p's.
func (p Player) Clone() Player {
	out := p
	out.Inventory = make(map[string]int, len(p.Inventory))
	for k, v := range p.Inventory {
		out.Inventory[k] = v
	}
	out.Affection = make(map[string]int, len(p.Affection))
	for k, v := range p.Affection {
		out.Affection[k] = v
	}
	out.Flags = make(map[string]bool, len(p.Flags))
	for k, v := range p.Flags {
		out.Flags[k] = v
	}
	out.Unlocked = make(map[string]bool, len(p.Unlocked))
	for k, v := range p.Unlocked {
		out.Unlocked[k] = v
	}
	return out
}

// AffectionFor returns the affection toward characterID, or 0 if none is recorded.
func (p Player) AffectionFor(characterID string) int {
	return p.Affection[characterID]
}

// TotalAffection returns the sum of affection across all characters.
//
// Postcondition: Returns >= 0.
func (p Player) TotalAffection() int {
	total := 0
	for _, a := range p.Affection {
		total += a
	}
	return total
}

// ItemCount returns how many copies of itemID the inventory holds.
func (p Player) ItemCount(itemID string) int {
	return p.Inventory[itemID]
}

// HasItem reports whether at least one copy of itemID is held.
func (p Player) HasItem(itemID string) bool {
	return p.Inventory[itemID] > 0
}

// Flag returns the value of the named narrative flag; unset flags are false.
func (p Player) Flag(name string) bool {
	return p.Flags[name]
}

// IsUnlocked reports whether characterID has been unlocked.
func (p Player) IsUnlocked(characterID string) bool {
	return p.Unlocked[characterID]
}

// UnlockedIDs returns the unlocked character ids in sorted order.
func (p Player) UnlockedIDs() []string {
	out := make([]string, 0, len(p.Unlocked))
	for id, ok := range p.Unlocked {
		if ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ClampAffection clamps v into [MinAffection, MaxAffection].
func ClampAffection(v int) int {
	switch {
	case v < MinAffection:
		return MinAffection
	case v > MaxAffection:
		return MaxAffection
	default:
		return v
	}
}

// AdvanceTime returns a copy of p moved to the next time of day. Advancing
// past Night rolls over to Morning of the next day.
//
// Postcondition: result.Day == p.Day+1 iff p.Time == Night.
func AdvanceTime(p Player) Player {
	out := p.Clone()
	next, wrapped := p.Time.Next()
	out.Time = next
	if wrapped {
		out.Day++
	}
	return out
}

// Validate checks the player invariants. It is used when a player is loaded
// from content or restored from a snapshot.
//
// Postcondition: Returns nil iff every invariant holds, otherwise an error naming all violations.
func (p Player) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if p.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", p.Level))
	}
	if p.Day < 1 {
		errs = append(errs, fmt.Errorf("day must be >= 1, got %d", p.Day))
	}
	if !p.Time.Valid() {
		errs = append(errs, fmt.Errorf("time of day %d is not valid", int(p.Time)))
	}
	if p.Money < 0 {
		errs = append(errs, fmt.Errorf("money must be >= 0, got %d", p.Money))
	}
	if p.MaxHP < 1 || p.HP < 0 || p.HP > p.MaxHP {
		errs = append(errs, fmt.Errorf("hp %d/%d out of range", p.HP, p.MaxHP))
	}
	if p.MaxMP < 0 || p.MP < 0 || p.MP > p.MaxMP {
		errs = append(errs, fmt.Errorf("mp %d/%d out of range", p.MP, p.MaxMP))
	}
	for _, st := range AllStats {
		if v := p.Stats.Get(st); v < 0 {
			errs = append(errs, fmt.Errorf("stat %s must be >= 0, got %d", st, v))
		}
	}
	for id, a := range p.Affection {
		if a < MinAffection || a > MaxAffection {
			errs = append(errs, fmt.Errorf("affection for %q must be in [0,100], got %d", id, a))
		}
	}
	for id, n := range p.Inventory {
		if n < 0 {
			errs = append(errs, fmt.Errorf("inventory count for %q must be >= 0, got %d", id, n))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("player %q: %w", p.Name, errors.Join(errs...))
	}
	return nil
}
