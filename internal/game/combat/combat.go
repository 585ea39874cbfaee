// Package combat implements the turn-based battle resolver: turn order, skill
// selection, damage and heal formulas, cooldown bookkeeping and
// victory/defeat detection.
package combat

import (
	"errors"
	"fmt"
)

// Role is the party role tag carried by a combatant.
type Role string

const (
	RoleTank    Role = "tank"
	RoleHealer  Role = "healer"
	RoleDPS     Role = "dps"
	RoleSupport Role = "support"
)

// Valid reports whether r is one of the four roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTank, RoleHealer, RoleDPS, RoleSupport:
		return true
	default:
		return false
	}
}

// UnmarshalText decodes and validates a role name.
func (r *Role) UnmarshalText(b []byte) error {
	v := Role(b)
	if !v.Valid() {
		return fmt.Errorf("unknown role %q", string(b))
	}
	*r = v
	return nil
}

// Side identifies one of the two sides of a battle.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// String returns "player" or "opponent".
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// Stats is a combatant's attack/defense/speed block.
type Stats struct {
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Speed   int `json:"speed" yaml:"speed"`
}

// Skill is one usable action of a combatant. A negative Power marks a heal
// whose magnitude is |Power|.
//
// Invariant: CooldownLeft >= 0.
type Skill struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MPCost       int    `json:"mp_cost"`
	Power        int    `json:"power"`
	Cooldown     int    `json:"cooldown"`
	CooldownLeft int    `json:"cooldown_left"`
}

// IsHeal reports whether the skill restores the caster instead of damaging the target.
func (s Skill) IsHeal() bool { return s.Power < 0 }

// Combatant is one side of a battle, or a party member outside battle.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= MP <= MaxMP. A combatant at 0 HP is
// defeated and takes no further actions.
type Combatant struct {
	ID          string  `json:"id"`
	CharacterID string  `json:"character_id"`
	Name        string  `json:"name"`
	Level       int     `json:"level"`
	HP          int     `json:"hp"`
	MaxHP       int     `json:"max_hp"`
	MP          int     `json:"mp"`
	MaxMP       int     `json:"max_mp"`
	Stats       Stats   `json:"stats"`
	Skills      []Skill `json:"skills"`
	Slot        int     `json:"slot"`
	Role        Role    `json:"role"`
}

// Validate checks the combatant invariants.
//
// Postcondition: Returns nil iff HP and MP are within their bounds, the
// combatant has an ID and every skill has an ID and non-negative costs.
func (c *Combatant) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.MaxHP < 1 || c.HP < 0 || c.HP > c.MaxHP {
		errs = append(errs, fmt.Errorf("hp %d/%d out of range", c.HP, c.MaxHP))
	}
	if c.MaxMP < 0 || c.MP < 0 || c.MP > c.MaxMP {
		errs = append(errs, fmt.Errorf("mp %d/%d out of range", c.MP, c.MaxMP))
	}
	for _, s := range c.Skills {
		if s.ID == "" || s.MPCost < 0 || s.Cooldown < 0 || s.CooldownLeft < 0 {
			errs = append(errs, fmt.Errorf("skill %q is malformed", s.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("combatant %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Combatant) Clone() Combatant {
	out := c
	out.Skills = make([]Skill, len(c.Skills))
	copy(out.Skills, c.Skills)
	return out
}

// IsDefeated reports whether the combatant has no HP left.
//
// Postcondition: Returns true iff HP <= 0.
func (c *Combatant) IsDefeated() bool { return c.HP <= 0 }

// ApplyDamage reduces HP by amount, flooring at zero, and returns the HP actually lost.
//
// Precondition: amount >= 0.
// Postcondition: HP >= 0; return value == old HP - new HP.
func (c *Combatant) ApplyDamage(amount int) int {
	before := c.HP
	c.HP = max(c.HP-amount, 0)
	return before - c.HP
}

// Heal restores HP by amount, capped at MaxHP, and returns the HP actually restored.
//
// Precondition: amount >= 0.
// Postcondition: HP <= MaxHP; return value == new HP - old HP.
func (c *Combatant) Heal(amount int) int {
	before := c.HP
	c.HP = min(c.HP+amount, c.MaxHP)
	return c.HP - before
}

// Skill returns the index of the skill with id, or -1.
func (c *Combatant) Skill(id string) int {
	for i := range c.Skills {
		if c.Skills[i].ID == id {
			return i
		}
	}
	return -1
}

// Available returns the skills that are off cooldown and affordable with current MP.
//
// Postcondition: every returned skill has CooldownLeft == 0 and MPCost <= MP.
func (c *Combatant) Available() []Skill {
	var out []Skill
	for _, s := range c.Skills {
		if s.CooldownLeft == 0 && s.MPCost <= c.MP {
			out = append(out, s)
		}
	}
	return out
}

// tickCooldowns decrements every positive cooldown by one.
func (c *Combatant) tickCooldowns() {
	for i := range c.Skills {
		if c.Skills[i].CooldownLeft > 0 {
			c.Skills[i].CooldownLeft--
		}
	}
}

// RestoreAll returns c with HP, MP and every cooldown reset.
func (c Combatant) RestoreAll() Combatant {
	out := c.Clone()
	out.HP = out.MaxHP
	out.MP = out.MaxMP
	for i := range out.Skills {
		out.Skills[i].CooldownLeft = 0
	}
	return out
}

// Damage computes the damage a damage skill of the given power deals:
// power + attack - defense, floored at 1.
//
// Postcondition: Returns >= 1.
func Damage(power, attack, defense int) int {
	return max(power+attack-defense, 1)
}
