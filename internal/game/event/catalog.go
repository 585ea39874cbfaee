package event

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Catalog is the immutable set of narrative events plus the ambient pool
// consulted when no narrative event is eligible.
type Catalog struct {
	Events  []*Event
	Ambient []*Event
	byID    map[string]*Event
}

// NewCatalog validates events and ambient and indexes them by id.
//
// Postcondition: Returns an error if any event is invalid or an id is used twice across both pools.
func NewCatalog(events, ambient []*Event) (*Catalog, error) {
	c := &Catalog{Events: events, Ambient: ambient, byID: make(map[string]*Event, len(events)+len(ambient))}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if err := c.index(e); err != nil {
			return nil, err
		}
	}
	for _, e := range ambient {
		if err := e.validateAmbient(); err != nil {
			return nil, err
		}
		if err := c.index(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) index(e *Event) error {
	if _, ok := c.byID[e.ID]; ok {
		return fmt.Errorf("event %q defined twice", e.ID)
	}
	c.byID[e.ID] = e
	return nil
}

// Get returns the event with id from either pool.
func (c *Catalog) Get(id string) (*Event, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len returns the number of events in both pools.
func (c *Catalog) Len() int { return len(c.byID) }

type eventsFile struct {
	Events  []*Event `yaml:"events"`
	Ambient []*Event `yaml:"ambient"`
}

// LoadDirectory reads every *.yaml / *.yml file in dir. Each file may hold
// an events list, an ambient list, or both. Files are read in name order so
// the catalog order, and with it seeded selection, is stable.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a validated Catalog, or an error naming the first bad file.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading event dir %q: %w", dir, err)
	}
	var events, ambient []*Event
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
		var f eventsFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		events = append(events, f.Events...)
		ambient = append(ambient, f.Ambient...)
	}
	cat, err := NewCatalog(events, ambient)
	if err != nil {
		return nil, fmt.Errorf("loading events from %q: %w", dir, err)
	}
	return cat, nil
}
