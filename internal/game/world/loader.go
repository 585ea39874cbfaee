package world

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// yamlMapFile is the top-level YAML structure for the locations file.
type yamlMapFile struct {
	Start     string         `yaml:"start"`
	Locations []yamlLocation `yaml:"locations"`
}

// yamlLocation is the YAML representation of a location.
type yamlLocation struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Exits       []string           `yaml:"exits"`
	Hours       []player.TimeOfDay `yaml:"hours"`
	Shop        bool               `yaml:"shop"`
	Opponents   []string           `yaml:"opponents"`
}

// LoadMapFromFile reads and validates a locations YAML file.
//
// Precondition: path must point to a valid YAML locations file.
// Postcondition: Returns a validated Map or a non-nil error.
func LoadMapFromFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locations file %s: %w", path, err)
	}
	m, err := LoadMapFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadMapFromBytes parses and validates a Map from YAML bytes.
//
// Postcondition: Returns a validated Map or a non-nil error.
func LoadMapFromBytes(data []byte) (*Map, error) {
	var file yamlMapFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing locations YAML: %w", err)
	}
	locs := make([]*Location, 0, len(file.Locations))
	for _, yl := range file.Locations {
		locs = append(locs, &Location{
			ID:          yl.ID,
			Name:        yl.Name,
			Description: yl.Description,
			Exits:       yl.Exits,
			Hours:       yl.Hours,
			Shop:        yl.Shop,
			Opponents:   yl.Opponents,
		})
	}
	m, err := NewMap(file.Start, locs)
	if err != nil {
		return nil, fmt.Errorf("validating locations: %w", err)
	}
	return m, nil
}
