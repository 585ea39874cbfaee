// Package character holds the static character roster: identity, affection
// gated dialogue, gift preferences and the battle profile used when a
// character joins the party.
package character

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
)

// Gift affection constants. A liked gift earns the item's base value plus
// LikedGiftBonus; a disliked gift always costs DislikedGiftDelta.
const (
	DefaultGiftValue  = 10
	LikedGiftBonus    = 5
	DislikedGiftDelta = -5
)

// BattleProfile describes how a character fights as a party member.
type BattleProfile struct {
	Level   int         `yaml:"level"`
	MaxHP   int         `yaml:"max_hp"`
	MaxMP   int         `yaml:"max_mp"`
	Attack  int         `yaml:"attack"`
	Defense int         `yaml:"defense"`
	Speed   int         `yaml:"speed"`
	Role    combat.Role `yaml:"role"`
	Skills  []string    `yaml:"skills"`
}

// Character is the immutable definition of one character, loaded from YAML.
type Character struct {
	ID                string         `yaml:"id"`
	Name              string         `yaml:"name"`
	Description       string         `yaml:"description"`
	Heroine           bool           `yaml:"heroine"`
	StartingAffection int            `yaml:"starting_affection"`
	SecretThreshold   int            `yaml:"secret_threshold"`
	Secret            string         `yaml:"secret"`
	RecruitThreshold  int            `yaml:"recruit_threshold"`
	Likes             []string       `yaml:"likes"`
	Dislikes          []string       `yaml:"dislikes"`
	Dialogue          map[int]string `yaml:"dialogue"`
	Battle            *BattleProfile `yaml:"battle"`
}

// Validate checks the definition invariants.
//
// Precondition: c must not be nil.
// Postcondition: Returns nil iff the definition is usable, otherwise an error naming all violations.
func (c *Character) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.StartingAffection < 0 || c.StartingAffection > 100 {
		errs = append(errs, fmt.Errorf("starting_affection must be in [0,100], got %d", c.StartingAffection))
	}
	if c.SecretThreshold < 0 || c.SecretThreshold > 100 {
		errs = append(errs, fmt.Errorf("secret_threshold must be in [0,100], got %d", c.SecretThreshold))
	}
	if c.RecruitThreshold < 0 || c.RecruitThreshold > 100 {
		errs = append(errs, fmt.Errorf("recruit_threshold must be in [0,100], got %d", c.RecruitThreshold))
	}
	for th := range c.Dialogue {
		if th < 0 || th > 100 {
			errs = append(errs, fmt.Errorf("dialogue threshold %d out of [0,100]", th))
		}
	}
	for _, id := range c.Likes {
		if slices.Contains(c.Dislikes, id) {
			errs = append(errs, fmt.Errorf("item %q is both liked and disliked", id))
		}
	}
	if b := c.Battle; b != nil {
		if b.Level < 1 || b.MaxHP < 1 || b.MaxMP < 0 {
			errs = append(errs, errors.New("battle: level and max_hp must be >= 1, max_mp >= 0"))
		}
		if !b.Role.Valid() {
			errs = append(errs, fmt.Errorf("battle: unknown role %q", b.Role))
		}
		if len(b.Skills) == 0 {
			errs = append(errs, errors.New("battle: at least one skill is required"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("character %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// DialogueFor returns the line for the highest dialogue threshold that does
// not exceed affection.
//
// Postcondition: ok is false iff every threshold is above affection or there is no dialogue.
func (c *Character) DialogueFor(affection int) (line string, ok bool) {
	thresholds := make([]int, 0, len(c.Dialogue))
	for th := range c.Dialogue {
		thresholds = append(thresholds, th)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(thresholds)))
	for _, th := range thresholds {
		if th <= affection {
			return c.Dialogue[th], true
		}
	}
	return "", false
}

// SecretRevealed reports whether affection has reached the secret threshold.
// A character without a secret never reveals one.
func (c *Character) SecretRevealed(affection int) bool {
	return c.Secret != "" && affection >= c.SecretThreshold
}

// CanRecruit reports whether affection is high enough for c to join the party.
func (c *Character) CanRecruit(affection int) bool {
	return c.Battle != nil && affection >= c.RecruitThreshold
}

// LikesItem reports whether itemID is one of c's preferred gifts.
func (c *Character) LikesItem(itemID string) bool {
	return slices.Contains(c.Likes, itemID)
}

// DislikesItem reports whether itemID is one of c's disliked gifts.
func (c *Character) DislikesItem(itemID string) bool {
	return slices.Contains(c.Dislikes, itemID)
}

// GiftDelta returns the affection change for giving itemID, whose base gift
// value is base (DefaultGiftValue when base <= 0).
//
// Postcondition: a liked item yields base+LikedGiftBonus, a disliked one
// DislikedGiftDelta, anything else base.
func (c *Character) GiftDelta(itemID string, base int) int {
	if base <= 0 {
		base = DefaultGiftValue
	}
	switch {
	case c.LikesItem(itemID):
		return base + LikedGiftBonus
	case c.DislikesItem(itemID):
		return DislikedGiftDelta
	default:
		return base
	}
}

// Combatant builds a full-health party combatant from c's battle profile.
//
// Precondition: c.Battle must be non-nil.
// Postcondition: every profile skill is resolved through skills, or an error is returned.
func (c *Character) Combatant(skills *combat.SkillRegistry, slot int) (combat.Combatant, error) {
	b := c.Battle
	if b == nil {
		return combat.Combatant{}, fmt.Errorf("character %q has no battle profile", c.ID)
	}
	sk, err := skills.Skills(b.Skills)
	if err != nil {
		return combat.Combatant{}, fmt.Errorf("character %q: %w", c.ID, err)
	}
	return combat.Combatant{
		ID:          c.ID,
		CharacterID: c.ID,
		Name:        c.Name,
		Level:       b.Level,
		HP:          b.MaxHP,
		MaxHP:       b.MaxHP,
		MP:          b.MaxMP,
		MaxMP:       b.MaxMP,
		Stats:       combat.Stats{Attack: b.Attack, Defense: b.Defense, Speed: b.Speed},
		Skills:      sk,
		Slot:        slot,
		Role:        b.Role,
	}, nil
}
