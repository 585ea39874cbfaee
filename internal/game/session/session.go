// Package session orchestrates one playthrough: movement, time, events,
// gifts, recruitment, shopping and battles over a player state that is only
// ever replaced wholesale (clone, compute, swap).
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/content"
	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/condition"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/party"
	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/internal/game/world"
)

var (
	// ErrUnknownReference is returned in strict mode when an id names nothing in the content.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session is closed")
	// ErrNoEvent is returned when acting on an event while none is offered.
	ErrNoEvent = errors.New("no event is being offered")
	// ErrEventPending is returned when moving on while an event waits for a choice.
	ErrEventPending = errors.New("an event is waiting for a choice")
	// ErrInBattle is returned for actions that are not allowed during a battle.
	ErrInBattle = errors.New("a battle is in progress")
	// ErrNoBattle is returned for battle actions outside a battle.
	ErrNoBattle = errors.New("no battle is in progress")
)

// Options configures a session.
type Options struct {
	// Strict turns unknown references into ErrUnknownReference instead of logged no-ops.
	Strict bool
	// MaxRounds caps battles; 0 leaves them unbounded.
	MaxRounds int
	// PartySize is the number of party slots; 0 means party.DefaultSlots.
	PartySize int
	// Source drives every random draw; nil means a crypto source.
	Source dice.Source
	// Scripts evaluates script checks; nil makes them fail.
	Scripts condition.ScriptRunner
	Logger  *zap.Logger
}

// Session is one player's game. All methods are safe for concurrent use;
// operations on one session are serialised.
type Session struct {
	id       string
	content  *content.Content
	opts     Options
	logger   *zap.Logger
	roller   *dice.Roller
	selector *event.Selector
	battles  *combat.Engine

	mu        sync.Mutex
	player    player.Player
	completed *event.Completed
	party     *party.Party
	current   *event.Instance
	fight     *fight
	closed    bool
}

// NewPlayer returns a fresh player at the map's start location with every
// character's starting affection applied.
func NewPlayer(c *content.Content, name string, money int) player.Player {
	p := player.New(name)
	p.Location = c.Map.Start().ID
	p.Money = money
	for _, ch := range c.Characters.All() {
		if ch.StartingAffection > 0 {
			p.Affection[ch.ID] = player.ClampAffection(ch.StartingAffection)
		}
	}
	return p
}

// New starts a session for p with an empty completed set and party.
//
// Precondition: c must be loaded; p must be valid.
// Postcondition: Returns an open session, or an error if p is invalid.
func New(c *content.Content, p player.Player, opts Options) (*Session, error) {
	opts = withDefaults(opts)
	return open(uuid.NewString(), c, p, event.NewCompleted(), party.New(opts.PartySize), combat.NewEngine(opts.Logger), opts)
}

// Restore resumes the session captured in snap.
//
// Postcondition: the session's player, completed set and party equal the snapshot's.
func Restore(c *content.Content, snap save.Snapshot, opts Options) (*Session, error) {
	opts = withDefaults(opts)
	return restore(uuid.NewString(), c, snap, combat.NewEngine(opts.Logger), opts)
}

func restore(id string, c *content.Content, snap save.Snapshot, battles *combat.Engine, opts Options) (*Session, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	pt, err := snap.RestoreParty()
	if err != nil {
		return nil, fmt.Errorf("restoring party: %w", err)
	}
	return open(id, c, snap.Player, snap.Completed.Clone(), pt, battles, opts)
}

func withDefaults(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.PartySize <= 0 {
		opts.PartySize = party.DefaultSlots
	}
	return opts
}

func open(id string, c *content.Content, p player.Player, completed *event.Completed, pt *party.Party, battles *combat.Engine, opts Options) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("session player: %w", err)
	}
	logger := opts.Logger.With(zap.String("session_id", id))
	s := &Session{
		id:        id,
		content:   c,
		opts:      opts,
		logger:    logger,
		roller:    dice.NewLoggedRoller(opts.Source, logger),
		battles:   battles,
		player:    p.Clone(),
		completed: completed,
		party:     pt,
	}
	s.selector = event.NewSelector(s.roller, opts.Scripts, logger)

	if _, ok := c.Map.Location(s.player.Location); !ok {
		if err := s.unknown("location", s.player.Location); err != nil {
			return nil, err
		}
		s.player.Location = c.Map.Start().ID
	}
	for _, m := range pt.Members() {
		if _, ok := c.Characters.Get(m.CharacterID()); !ok {
			if err := s.unknown("character", m.CharacterID()); err != nil {
				return nil, err
			}
		}
	}
	logger.Info("session opened",
		zap.String("player", s.player.Name),
		zap.String("location", s.player.Location),
		zap.Int("day", s.player.Day),
	)
	return s, nil
}

// unknown reports a reference to something the content does not define.
// In strict mode it returns ErrUnknownReference; otherwise it logs a warning
// and returns nil, and the caller treats the operation as a no-op.
func (s *Session) unknown(kind, id string) error {
	if s.opts.Strict {
		return fmt.Errorf("%w: %s %q", ErrUnknownReference, kind, id)
	}
	s.logger.Warn("unknown reference ignored",
		zap.String("kind", kind),
		zap.String("id", id),
	)
	return nil
}

func (s *Session) env() condition.Env {
	return condition.Env{Source: s.roller, Scripts: s.opts.Scripts}
}

// guard must be called with s.mu held.
func (s *Session) guard() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Player returns a copy of the current player state.
func (s *Session) Player() player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Clone()
}

// Completed returns a copy of the completed once-event set.
func (s *Session) Completed() *event.Completed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed.Clone()
}

// Party returns a copy of the party.
func (s *Session) Party() *party.Party {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.party.Clone()
}

// Location returns the player's current location.
func (s *Session) Location() *world.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, _ := s.content.Map.Location(s.player.Location)
	return loc
}

// Content returns the catalogs the session plays against.
func (s *Session) Content() *content.Content { return s.content }

// Snapshot captures the resumable state. An event being offered and a battle
// in progress are not part of it.
func (s *Session) Snapshot(now time.Time) save.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save.New(s.player, s.completed, s.party, now)
}

// Close ends any battle in progress and closes the session. Closing twice is a no-op.
//
// Postcondition: every later operation returns ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.fight != nil {
		s.battles.End(s.fight.battleID)
		s.fight = nil
	}
	s.current = nil
	s.closed = true
	s.logger.Info("session closed")
	return nil
}
