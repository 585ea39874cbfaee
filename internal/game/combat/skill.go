package combat

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SkillDef is the static catalog entry for a battle skill.
type SkillDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	MPCost      int    `yaml:"mp_cost"`
	// Power is the damage magnitude; a negative value heals the caster by |Power|.
	Power    int `yaml:"power"`
	Cooldown int `yaml:"cooldown"`
}

// Validate reports malformed skill definitions.
func (d *SkillDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.MPCost < 0 {
		errs = append(errs, fmt.Errorf("mp_cost must be >= 0, got %d", d.MPCost))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be >= 0, got %d", d.Cooldown))
	}
	if d.Power == 0 {
		errs = append(errs, errors.New("power must not be zero"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Skill returns a fresh, off-cooldown battle skill for d.
func (d *SkillDef) Skill() Skill {
	return Skill{ID: d.ID, Name: d.Name, MPCost: d.MPCost, Power: d.Power, Cooldown: d.Cooldown}
}

// SkillRegistry is the immutable skill catalog.
type SkillRegistry struct {
	defs map[string]*SkillDef
}

// NewSkillRegistry creates an empty SkillRegistry.
func NewSkillRegistry() *SkillRegistry {
	return &SkillRegistry{defs: make(map[string]*SkillDef)}
}

// Register adds d to the registry.
//
// Postcondition: returns an error if d is invalid or its ID is already registered.
func (r *SkillRegistry) Register(d *SkillDef) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := r.defs[d.ID]; ok {
		return fmt.Errorf("skill %q already registered", d.ID)
	}
	r.defs[d.ID] = d
	return nil
}

// Get returns the definition for id.
func (r *SkillRegistry) Get(id string) (*SkillDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every definition sorted by ID.
func (r *SkillRegistry) All() []*SkillDef {
	out := make([]*SkillDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Skills instantiates the listed skills in order.
//
// Postcondition: returns an error naming the first unknown id.
func (r *SkillRegistry) Skills(ids []string) ([]Skill, error) {
	out := make([]Skill, 0, len(ids))
	for _, id := range ids {
		d, ok := r.defs[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
		}
		out = append(out, d.Skill())
	}
	return out, nil
}

type skillFile struct {
	Skills []*SkillDef `yaml:"skills"`
}

// LoadSkills reads a skills catalog file of the form
//
//	skills:
//	  - id: strike
//	    name: Strike
//	    power: 20
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns a populated registry, or the first decode or validation error.
func LoadSkills(path string) (*SkillRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skills %q: %w", path, err)
	}
	var f skillFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing skills %q: %w", path, err)
	}
	reg := NewSkillRegistry()
	for _, d := range f.Skills {
		if err := reg.Register(d); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
