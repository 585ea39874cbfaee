package player

import "fmt"

// Stat names one of the six player stats.
type Stat string

const (
	StatIntelligence Stat = "intelligence"
	StatCharm        Stat = "charm"
	StatStamina      Stat = "stamina"
	StatStrength     Stat = "strength"
	StatAgility      Stat = "agility"
	StatLuck         Stat = "luck"
)

// AllStats lists every Stat in display order.
var AllStats = []Stat{StatIntelligence, StatCharm, StatStamina, StatStrength, StatAgility, StatLuck}

// ParseStat converts a stat name to a Stat.
//
// Postcondition: Returns a valid Stat or a non-nil error.
func ParseStat(s string) (Stat, error) {
	for _, st := range AllStats {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stat %q", s)
}

// Stats is the fixed stat block of a player.
type Stats struct {
	Intelligence int `json:"intelligence" yaml:"intelligence"`
	Charm        int `json:"charm" yaml:"charm"`
	Stamina      int `json:"stamina" yaml:"stamina"`
	Strength     int `json:"strength" yaml:"strength"`
	Agility      int `json:"agility" yaml:"agility"`
	Luck         int `json:"luck" yaml:"luck"`
}

// Get returns the value of st. Unknown stats read as 0.
func (s Stats) Get(st Stat) int {
	switch st {
	case StatIntelligence:
		return s.Intelligence
	case StatCharm:
		return s.Charm
	case StatStamina:
		return s.Stamina
	case StatStrength:
		return s.Strength
	case StatAgility:
		return s.Agility
	case StatLuck:
		return s.Luck
	default:
		return 0
	}
}

// With returns a copy of s with st set to v, clamped at zero.
//
// Postcondition: result.Get(st) == max(v, 0).
func (s Stats) With(st Stat, v int) Stats {
	if v < 0 {
		v = 0
	}
	switch st {
	case StatIntelligence:
		s.Intelligence = v
	case StatCharm:
		s.Charm = v
	case StatStamina:
		s.Stamina = v
	case StatStrength:
		s.Strength = v
	case StatAgility:
		s.Agility = v
	case StatLuck:
		s.Luck = v
	}
	return s
}
