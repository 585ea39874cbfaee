// Package npc provides opponent templates: reusable battle archetypes that
// instantiate combatants, roll loot and taunt.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
)

// Chooser names accepted by Template.Tactics.
const (
	TacticsGreedy = "greedy"
	TacticsRandom = "random"
)

// Template defines a reusable opponent archetype loaded from YAML.
type Template struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Level       int         `yaml:"level"`
	MaxHP       int         `yaml:"max_hp"`
	MaxMP       int         `yaml:"max_mp"`
	Attack      int         `yaml:"attack"`
	Defense     int         `yaml:"defense"`
	Speed       int         `yaml:"speed"`
	Role        combat.Role `yaml:"role"`
	Skills      []string    `yaml:"skills"`
	// Tactics selects how the opponent picks skills; empty means greedy.
	Tactics string     `yaml:"tactics"`
	Loot    *LootTable `yaml:"loot"`
	// Taunts are lines the opponent may say at the start of its turn.
	Taunts []string `yaml:"taunts"`
	// TauntChance is the probability in [0,1] of taunting on each turn.
	TauntChance float64 `yaml:"taunt_chance"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, MaxMP >= 0, at least one skill is listed, and every optional
// section is well-formed; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("npc template %q: max_hp must be >= 1", t.ID)
	}
	if t.MaxMP < 0 {
		return fmt.Errorf("npc template %q: max_mp must be >= 0", t.ID)
	}
	if !t.Role.Valid() {
		return fmt.Errorf("npc template %q: unknown role %q", t.ID, t.Role)
	}
	if len(t.Skills) == 0 {
		return fmt.Errorf("npc template %q: at least one skill is required", t.ID)
	}
	switch t.Tactics {
	case "", TacticsGreedy, TacticsRandom:
	default:
		return fmt.Errorf("npc template %q: unknown tactics %q", t.ID, t.Tactics)
	}
	if t.TauntChance < 0 || t.TauntChance > 1 {
		return fmt.Errorf("npc template %q: taunt_chance must be in [0,1], got %v", t.ID, t.TauntChance)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Combatant instantiates a full-health opponent combatant from t.
//
// Precondition: id must be non-empty.
// Postcondition: every template skill is resolved through skills, or an error is returned.
func (t *Template) Combatant(id string, skills *combat.SkillRegistry) (combat.Combatant, error) {
	sk, err := skills.Skills(t.Skills)
	if err != nil {
		return combat.Combatant{}, fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	return combat.Combatant{
		ID:     id,
		Name:   t.Name,
		Level:  t.Level,
		HP:     t.MaxHP,
		MaxHP:  t.MaxHP,
		MP:     t.MaxMP,
		MaxMP:  t.MaxMP,
		Stats:  combat.Stats{Attack: t.Attack, Defense: t.Defense, Speed: t.Speed},
		Skills: sk,
		Role:   t.Role,
	}, nil
}

// Chooser returns the skill chooser for t's tactics.
//
// Precondition: src must be non-nil when Tactics is "random".
func (t *Template) Chooser(src dice.Source) combat.Chooser {
	if t.Tactics == TacticsRandom {
		return combat.RandomChooser{Source: src}
	}
	return combat.GreedyChooser{}
}

// Taunt returns a taunt line when the taunt chance fires.
//
// Postcondition: ok is false when t has no taunts or the draw misses.
func (t *Template) Taunt(src dice.Source) (line string, ok bool) {
	if len(t.Taunts) == 0 || !dice.Chance(src, t.TauntChance) {
		return "", false
	}
	return t.Taunts[dice.Pick(src, len(t.Taunts))], true
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Registry holds every opponent template keyed by ID.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds t to the registry.
//
// Postcondition: returns an error if t's ID is already registered.
func (r *Registry) Register(t *Template) error {
	if _, ok := r.templates[t.ID]; ok {
		return fmt.Errorf("npc template %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

// Get returns the template with id.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// All returns every template sorted by ID.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadTemplates reads all *.yaml files in dir and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if err := reg.Register(tmpl); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
