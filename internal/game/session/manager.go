package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/content"
	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/party"
	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/save"
)

// Manager tracks every open session. Sessions share the content and one
// battle engine but no mutable state.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	content   *content.Content
	opts      Options
	newSource func() dice.Source
	battles   *combat.Engine
	logger    *zap.Logger
}

// NewManager creates an empty Manager. newSource is called once per session
// so sessions never share a random source; nil means crypto sources.
//
// Precondition: c must be loaded.
func NewManager(c *content.Content, opts Options, newSource func() dice.Source) *Manager {
	if newSource == nil {
		newSource = dice.NewCryptoSource
	}
	opts.Source = nil
	opts = withDefaults(opts)
	return &Manager{
		sessions:  make(map[string]*Session),
		content:   c,
		opts:      opts,
		newSource: newSource,
		battles:   combat.NewEngine(opts.Logger),
		logger:    opts.Logger,
	}
}

func (m *Manager) sessionOpts() Options {
	o := m.opts
	o.Source = m.newSource()
	return o
}

// Open starts a new session for p.
//
// Postcondition: the session is registered under its ID.
func (m *Manager) Open(p player.Player) (*Session, error) {
	o := m.sessionOpts()
	s, err := open(uuid.NewString(), m.content, p, event.NewCompleted(), party.New(o.PartySize), m.battles, o)
	if err != nil {
		return nil, err
	}
	m.register(s)
	return s, nil
}

// Resume starts a session from snap.
func (m *Manager) Resume(snap save.Snapshot) (*Session, error) {
	s, err := restore(uuid.NewString(), m.content, snap, m.battles, m.sessionOpts())
	if err != nil {
		return nil, err
	}
	m.register(s)
	return s, nil
}

func (m *Manager) register(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns every open session.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Close closes and unregisters the session with id.
//
// Postcondition: returns an error if id is not registered.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q not found", id)
	}
	return s.Close()
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	for _, s := range m.All() {
		_ = m.Close(s.ID())
	}
}

// Battles returns the engine shared by the manager's sessions.
func (m *Manager) Battles() *combat.Engine { return m.battles }
