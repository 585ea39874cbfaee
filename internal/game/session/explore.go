package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/world"
)

// Arrival describes where the player is after moving or waiting and which
// event, if any, fired there.
type Arrival struct {
	Location *world.Location
	// Event is nil when nothing fired.
	Event *event.Event
	Pool  event.Pool
}

// MoveTo walks to an adjacent location and runs event selection there.
//
// Precondition: no battle is in progress and no event is waiting for a choice.
// Postcondition: gate failures wrap world.ErrNoExit or world.ErrClosed and
// leave the player where they were.
func (s *Session) MoveTo(to string) (Arrival, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return Arrival{}, err
	}
	if _, ok := s.content.Map.Location(to); !ok {
		return Arrival{}, s.unknown("location", to)
	}
	if _, err := s.content.Map.Navigate(s.player.Location, to, s.player.Time); err != nil {
		return Arrival{}, err
	}
	next := s.player.Clone()
	next.Location = to
	s.player = next
	s.logger.Debug("moved", zap.String("location", to))
	return s.arrive(), nil
}

// Wait advances the time of day by one phase, rolling the day over after
// night, and runs event selection at the current location. A new day
// restores the player and every party member to full HP and MP.
//
// Precondition: no battle is in progress and no event is waiting for a choice.
func (s *Session) Wait() (Arrival, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return Arrival{}, err
	}
	next := player.AdvanceTime(s.player)
	if next.Day > s.player.Day {
		next.HP, next.MP = next.MaxHP, next.MaxMP
		pt := s.party.Clone()
		pt.RestoreAll()
		s.party = pt
		s.logger.Info("new day, party rested", zap.Int("day", next.Day))
	}
	s.player = next
	s.logger.Debug("time advanced",
		zap.Int("day", s.player.Day),
		zap.Stringer("time", s.player.Time),
	)
	return s.arrive(), nil
}

// idle must be called with s.mu held.
func (s *Session) idle() error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.fight != nil {
		return ErrInBattle
	}
	if s.current != nil {
		return ErrEventPending
	}
	return nil
}

// arrive must be called with s.mu held.
func (s *Session) arrive() Arrival {
	loc, _ := s.content.Map.Location(s.player.Location)
	a := Arrival{Location: loc}
	e, pool := s.selector.SelectPool(s.content.Events, s.player, s.completed, s.player.Location)
	if e != nil {
		s.current = event.NewInstance(e)
		a.Event, a.Pool = e, pool
		s.logger.Info("event offered",
			zap.String("event", e.ID),
			zap.String("location", s.player.Location),
		)
	}
	return a
}

// CurrentEvent returns the event being offered.
func (s *Session) CurrentEvent() (*event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Event, true
}

// Present lists the current event's choices with their enabled state.
func (s *Session) Present() ([]event.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.current == nil {
		return nil, ErrNoEvent
	}
	return s.current.Present(s.player, s.env())
}

// Choose resolves the current event with choice idx (zero-based).
//
// A blocked choice is reported in Outcome.Blocked with a nil error and the
// event stays open. On success the effect is applied, a once-event joins the
// completed set and the event closes.
func (s *Session) Choose(idx int) (event.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return event.Outcome{}, err
	}
	if s.current == nil {
		return event.Outcome{}, ErrNoEvent
	}
	if s.current.State() == event.StateOffered {
		if _, err := s.current.Present(s.player, s.env()); err != nil {
			return event.Outcome{}, err
		}
	}
	out, err := s.current.Choose(idx, s.player, s.env())
	if err != nil || out.Blocked != nil {
		return out, err
	}
	id := s.current.Event.ID
	s.player = out.Player
	if out.Complete {
		s.completed.Add(id)
	}
	s.current = nil
	s.logger.Info("event resolved",
		zap.String("event", id),
		zap.Int("choice", idx+1),
		zap.Bool("completed", out.Complete),
	)
	return out, nil
}

// Dismiss closes the current event without applying any choice. A dismissed
// once-event may be offered again.
func (s *Session) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	if s.current == nil {
		return ErrNoEvent
	}
	if err := s.current.Dismiss(); err != nil {
		return err
	}
	s.logger.Info("event dismissed", zap.String("event", s.current.Event.ID))
	s.current = nil
	return nil
}
