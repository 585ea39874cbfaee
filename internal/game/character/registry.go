package character

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry holds every Character keyed by ID. It is read-only after loading.
type Registry struct {
	chars map[string]*Character
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{chars: make(map[string]*Character)}
}

// Register adds c to the registry.
//
// Precondition: c must not be nil.
// Postcondition: Get(c.ID) returns c; returns an error if c is invalid or the ID is taken.
func (r *Registry) Register(c *Character) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := r.chars[c.ID]; exists {
		return fmt.Errorf("character %q already registered", c.ID)
	}
	r.chars[c.ID] = c
	return nil
}

// Get returns the Character for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Character, bool) {
	c, ok := r.chars[id]
	return c, ok
}

// All returns every Character sorted by ID.
func (r *Registry) All() []*Character {
	out := make([]*Character, 0, len(r.chars))
	for _, c := range r.chars {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered characters.
func (r *Registry) Len() int { return len(r.chars) }

// LoadDirectory reads every *.yaml / *.yml file in dir as one Character.
// Unknown fields are rejected.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry, or an error naming the first bad file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading character dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var c Character
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&c); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
