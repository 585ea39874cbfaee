package event

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/condition"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// Pool identifies which pool a selection came from.
type Pool int

const (
	PoolNone Pool = iota
	PoolNarrative
	PoolAmbient
)

// String returns the pool name.
func (p Pool) String() string {
	switch p {
	case PoolNarrative:
		return "narrative"
	case PoolAmbient:
		return "ambient"
	default:
		return "none"
	}
}

// Selector picks at most one event for the current world state. All
// randomness comes from the injected source, so a seeded or fixed-sequence
// source makes selection reproducible.
type Selector struct {
	src     dice.Source
	scripts condition.ScriptRunner
	logger  *zap.Logger
}

// NewSelector creates a Selector.
//
// Precondition: src and logger must be non-nil; scripts may be nil when no
// event uses a script check.
func NewSelector(src dice.Source, scripts condition.ScriptRunner, logger *zap.Logger) *Selector {
	return &Selector{src: src, scripts: scripts, logger: logger}
}

// Eligible returns the narrative events whose location, once and
// deterministic gates pass, in catalog order. Probability gates are not drawn.
//
// Postcondition: no returned event is a once-event in completed.
func (s *Selector) Eligible(cat *Catalog, p player.Player, completed *Completed, location string) []*Event {
	env := condition.Env{Source: s.src, Scripts: s.scripts}
	var out []*Event
	for _, e := range cat.Events {
		t := e.Trigger
		if t.Location != "" && t.Location != location {
			continue
		}
		if t.Once && completed.Has(e.ID) {
			continue
		}
		if !condition.Evaluate(t.Gates(), p, env) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Select returns the event to offer, or nil.
//
// Every eligible narrative event draws its own probability gate; survivors
// are tie-broken uniformly at random. When no narrative event fires the
// ambient pool is consulted the same way using only each ambient event's
// probability.
//
// Postcondition: the result is never a once-event in completed.
func (s *Selector) Select(cat *Catalog, p player.Player, completed *Completed, location string) *Event {
	e, _ := s.SelectPool(cat, p, completed, location)
	return e
}

// SelectPool is Select that also reports which pool the event came from.
func (s *Selector) SelectPool(cat *Catalog, p player.Player, completed *Completed, location string) (*Event, Pool) {
	if e := s.pick(s.Eligible(cat, p, completed, location)); e != nil {
		s.logger.Debug("event selected",
			zap.String("event", e.ID),
			zap.Stringer("pool", PoolNarrative),
			zap.String("location", location),
		)
		return e, PoolNarrative
	}
	var ambient []*Event
	for _, e := range cat.Ambient {
		if e.Trigger.Once && completed.Has(e.ID) {
			continue
		}
		ambient = append(ambient, e)
	}
	if e := s.pick(ambient); e != nil {
		s.logger.Debug("event selected",
			zap.String("event", e.ID),
			zap.Stringer("pool", PoolAmbient),
			zap.String("location", location),
		)
		return e, PoolAmbient
	}
	return nil, PoolNone
}

// pick draws each candidate's probability gate in order and returns a
// uniformly chosen survivor, or nil.
func (s *Selector) pick(candidates []*Event) *Event {
	var fired []*Event
	for _, e := range candidates {
		if dice.Chance(s.src, e.Trigger.Chance()) {
			fired = append(fired, e)
		}
	}
	if len(fired) == 0 {
		return nil
	}
	return fired[dice.Pick(s.src, len(fired))]
}
