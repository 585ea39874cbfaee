package player

import "fmt"

// TimeOfDay is an ordered phase of the in-game day.
type TimeOfDay int

const (
	Morning TimeOfDay = iota
	Noon
	Afternoon
	Evening
	Night
)

var timeNames = [...]string{"morning", "noon", "afternoon", "evening", "night"}

// Valid reports whether t is one of the five phases.
func (t TimeOfDay) Valid() bool {
	return t >= Morning && t <= Night
}

// String returns the lowercase phase name.
func (t TimeOfDay) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return timeNames[t]
}

// Next returns the following phase and whether the day rolled over.
//
// Postcondition: wrapped is true iff t == Night, in which case next == Morning.
func (t TimeOfDay) Next() (next TimeOfDay, wrapped bool) {
	if t >= Night {
		return Morning, true
	}
	return t + 1, false
}

// ParseTimeOfDay converts a phase name to a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for i, name := range timeNames {
		if name == s {
			return TimeOfDay(i), nil
		}
	}
	return 0, fmt.Errorf("unknown time of day %q", s)
}

// MarshalText encodes t as its phase name for JSON and YAML.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot encode invalid time of day %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a phase name.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
