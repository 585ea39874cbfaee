// Package party holds the player's party slots and the synergy score
// derived from their composition.
package party

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
)

// Synergy weights.
const (
	PerMember    = 10
	PerRole      = 15
	PerHeroine   = 10
	MaxSynergy   = 100
	DefaultSlots = 4
)

var (
	// ErrFull is returned when adding to a party with no free slot.
	ErrFull = errors.New("party is full")
	// ErrAlreadyMember is returned when adding a character that is already in the party.
	ErrAlreadyMember = errors.New("already in the party")
	// ErrBadSlot is returned for a slot index outside the party.
	ErrBadSlot = errors.New("no such slot")
	// ErrEmptySlot is returned when removing from an empty slot.
	ErrEmptySlot = errors.New("slot is empty")
)

// Member is one recruited character in a party slot.
type Member struct {
	Combatant combat.Combatant `json:"combatant"`
	// Heroine marks members recruited from the romanceable roster.
	Heroine bool `json:"heroine"`
}

// CharacterID returns the member's character id.
func (m *Member) CharacterID() string { return m.Combatant.CharacterID }

// ComputeSynergy derives the composition bonus of members:
// count*PerMember + distinct roles*PerRole + heroines*PerHeroine, capped at MaxSynergy.
// Nil members are ignored.
//
// Postcondition: 0 <= result <= MaxSynergy; ComputeSynergy(nil) == 0.
func ComputeSynergy(members []*Member) int {
	count, heroines := 0, 0
	roles := make(map[combat.Role]struct{})
	for _, m := range members {
		if m == nil {
			continue
		}
		count++
		roles[m.Combatant.Role] = struct{}{}
		if m.Heroine {
			heroines++
		}
	}
	return min(count*PerMember+len(roles)*PerRole+heroines*PerHeroine, MaxSynergy)
}

// Party is a fixed number of slots, each empty or holding one member.
// Synergy is always derived from the current slots and never stored.
//
// A Party is not safe for concurrent use.
type Party struct {
	slots []*Member
}

// New creates a party with size empty slots; size < 1 means DefaultSlots.
func New(size int) *Party {
	if size < 1 {
		size = DefaultSlots
	}
	return &Party{slots: make([]*Member, size)}
}

// Size returns the number of slots.
func (p *Party) Size() int { return len(p.slots) }

// Slots returns a copy of the slot array; empty slots are nil.
func (p *Party) Slots() []*Member {
	out := make([]*Member, len(p.slots))
	copy(out, p.slots)
	return out
}

// Members returns the occupied slots in slot order.
func (p *Party) Members() []*Member {
	var out []*Member
	for _, m := range p.slots {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of members.
func (p *Party) Len() int { return len(p.Members()) }

// Find returns the slot holding characterID, or -1.
func (p *Party) Find(characterID string) int {
	for i, m := range p.slots {
		if m != nil && m.CharacterID() == characterID {
			return i
		}
	}
	return -1
}

// Member returns the member in slot i.
func (p *Party) Member(i int) (*Member, bool) {
	if i < 0 || i >= len(p.slots) || p.slots[i] == nil {
		return nil, false
	}
	return p.slots[i], true
}

// Add places m in the first free slot and returns the slot index.
//
// Postcondition: m.Combatant.Slot equals the returned index.
func (p *Party) Add(m *Member) (int, error) {
	if p.Find(m.CharacterID()) >= 0 {
		return -1, fmt.Errorf("%w: %s", ErrAlreadyMember, m.CharacterID())
	}
	for i, s := range p.slots {
		if s == nil {
			m.Combatant.Slot = i
			p.slots[i] = m
			return i, nil
		}
	}
	return -1, ErrFull
}

// Remove empties slot i and returns the member it held.
func (p *Party) Remove(i int) (*Member, error) {
	if i < 0 || i >= len(p.slots) {
		return nil, fmt.Errorf("%w: %d", ErrBadSlot, i)
	}
	m := p.slots[i]
	if m == nil {
		return nil, fmt.Errorf("%w: %d", ErrEmptySlot, i)
	}
	p.slots[i] = nil
	return m, nil
}

// Swap exchanges the contents of slots i and j. Either may be empty.
func (p *Party) Swap(i, j int) error {
	for _, k := range []int{i, j} {
		if k < 0 || k >= len(p.slots) {
			return fmt.Errorf("%w: %d", ErrBadSlot, k)
		}
	}
	p.slots[i], p.slots[j] = p.slots[j], p.slots[i]
	for k, m := range p.slots {
		if m != nil {
			m.Combatant.Slot = k
		}
	}
	return nil
}

// Update replaces the combatant state of the member in slot i, for example
// after a battle. The slot index is preserved.
func (p *Party) Update(i int, c combat.Combatant) error {
	m, ok := p.Member(i)
	if !ok {
		return fmt.Errorf("%w: %d", ErrEmptySlot, i)
	}
	c.Slot = i
	m.Combatant = c
	return nil
}

// RestoreAll returns every member to full HP and MP with no cooldowns left.
func (p *Party) RestoreAll() {
	for _, m := range p.slots {
		if m != nil {
			m.Combatant = m.Combatant.RestoreAll()
		}
	}
}

// Synergy returns ComputeSynergy of the current slots.
func (p *Party) Synergy() int { return ComputeSynergy(p.slots) }

// Clone returns a deep copy of p.
func (p *Party) Clone() *Party {
	out := &Party{slots: make([]*Member, len(p.slots))}
	for i, m := range p.slots {
		if m != nil {
			cp := *m
			cp.Combatant = m.Combatant.Clone()
			out.slots[i] = &cp
		}
	}
	return out
}

// Restore returns a party of size holding members at their recorded slots.
//
// Postcondition: returns an error if two members claim one slot or a slot is out of range.
func Restore(size int, members []Member) (*Party, error) {
	p := New(size)
	for _, m := range members {
		i := m.Combatant.Slot
		if i < 0 || i >= len(p.slots) {
			return nil, fmt.Errorf("%w: %d", ErrBadSlot, i)
		}
		if p.slots[i] != nil {
			return nil, fmt.Errorf("slot %d claimed twice", i)
		}
		cp := m
		cp.Combatant = m.Combatant.Clone()
		p.slots[i] = &cp
	}
	return p, nil
}
