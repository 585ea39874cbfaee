// Package event holds the narrative event catalog, the trigger selector that
// decides which event fires, and the per-instance choice state machine.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/cory-johannsen/heartbound/internal/game/condition"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// Trigger describes when an event may be offered.
type Trigger struct {
	// Location restricts the event to one location; empty matches anywhere.
	Location string `yaml:"location"`
	// Character is the character the event is about. With MinAffection it
	// names whose affection is checked; alone it requires the character be unlocked.
	Character    string `yaml:"character"`
	MinAffection int    `yaml:"min_affection"`
	MinDay       int    `yaml:"min_day"`
	// Probability is the independent fire chance; nil means always fires once eligible.
	Probability        *float64           `yaml:"probability"`
	Once               bool               `yaml:"once"`
	AggregateAffection int                `yaml:"aggregate_affection"`
	TimeOfDay          []player.TimeOfDay `yaml:"time_of_day"`
	// Require holds any further checks, evaluated after the fields above.
	Require condition.Condition `yaml:"require"`
}

// Gates returns the deterministic checks of t as a condition, excluding
// location, once and probability, which the selector handles itself.
func (t Trigger) Gates() condition.Condition {
	var c condition.Condition
	if t.MinDay > 0 {
		c = append(c, condition.MinDay{Day: t.MinDay})
	}
	if t.Character != "" {
		if t.MinAffection > 0 {
			c = append(c, condition.MinAffection{Character: t.Character, Value: t.MinAffection})
		} else {
			c = append(c, condition.Unlocked{Character: t.Character})
		}
	}
	if t.AggregateAffection > 0 {
		c = append(c, condition.AggregateAffection{Min: t.AggregateAffection})
	}
	if len(t.TimeOfDay) > 0 {
		c = append(c, condition.AtTime{Times: t.TimeOfDay})
	}
	return append(c, t.Require...)
}

// Chance returns the fire probability, 1 when none is set.
func (t Trigger) Chance() float64 {
	if t.Probability == nil {
		return 1
	}
	return *t.Probability
}

// Choice is one option of an event.
type Choice struct {
	Text string `yaml:"text"`
	// Condition gates the choice; nil means always enabled.
	Condition condition.Condition `yaml:"condition"`
	Effect    effect.Effect       `yaml:"effect"`
}

// Event is the immutable definition of a narrative event.
type Event struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Trigger     Trigger  `yaml:"trigger"`
	Choices     []Choice `yaml:"choices"`
}

// Validate checks the event invariants.
//
// Postcondition: Returns nil iff the event has an id, at least one choice,
// a probability in [0,1] and a character for any affection gate.
func (e *Event) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if len(e.Choices) == 0 {
		errs = append(errs, errors.New("at least one choice is required"))
	}
	for i, c := range e.Choices {
		if c.Text == "" {
			errs = append(errs, fmt.Errorf("choice %d: text must not be empty", i))
		}
	}
	t := e.Trigger
	if p := t.Probability; p != nil && (*p < 0 || *p > 1) {
		errs = append(errs, fmt.Errorf("probability must be in [0,1], got %v", *p))
	}
	if t.MinAffection != 0 && t.Character == "" {
		errs = append(errs, errors.New("min_affection requires character"))
	}
	if t.MinAffection < 0 || t.MinAffection > player.MaxAffection {
		errs = append(errs, fmt.Errorf("min_affection must be in [0,100], got %d", t.MinAffection))
	}
	if len(errs) > 0 {
		return fmt.Errorf("event %q: %w", e.ID, errors.Join(errs...))
	}
	return nil
}

// validateAmbient additionally rejects trigger fields the ambient pool ignores.
func (e *Event) validateAmbient() error {
	if err := e.Validate(); err != nil {
		return err
	}
	t := e.Trigger
	if t.Location != "" || t.Character != "" || t.MinDay != 0 || t.AggregateAffection != 0 ||
		len(t.TimeOfDay) > 0 || len(t.Require) > 0 {
		return fmt.Errorf("ambient event %q: only probability and once may be set on the trigger", e.ID)
	}
	return nil
}

// Completed is the set of once-events that have been resolved.
// Build one with NewCompleted; a nil *Completed reads as empty.
type Completed struct {
	ids map[string]struct{}
}

// NewCompleted returns a set holding ids.
func NewCompleted(ids ...string) *Completed {
	c := &Completed{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		c.ids[id] = struct{}{}
	}
	return c
}

// Has reports whether id has been completed. A nil set holds nothing.
func (c *Completed) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.ids[id]
	return ok
}

// Add records id as completed.
//
// Postcondition: Has(id) is true.
func (c *Completed) Add(id string) {
	c.ids[id] = struct{}{}
}

// Len returns the number of completed events.
func (c *Completed) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// IDs returns the completed ids sorted.
func (c *Completed) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of c.
func (c *Completed) Clone() *Completed {
	return NewCompleted(c.IDs()...)
}

// Equal reports whether c and o hold the same ids.
func (c *Completed) Equal(o *Completed) bool {
	return slices.Equal(c.IDs(), o.IDs())
}

// MarshalJSON encodes the set as a sorted list.
func (c *Completed) MarshalJSON() ([]byte, error) {
	ids := c.IDs()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes a list of ids.
func (c *Completed) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*c = *NewCompleted(ids...)
	return nil
}
