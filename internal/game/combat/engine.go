package combat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine manages all active battles, keyed by battle ID. Each battle owns
// its combatants; battles never share state with each other.
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	battles map[string]*Battle
	logger  *zap.Logger
}

// NewEngine creates an empty battle Engine.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{battles: make(map[string]*Battle), logger: logger}
}

// StartBattle creates and starts a battle between copies of player and opponent.
//
// Postcondition: the returned battle is active and registered under its new ID.
func (e *Engine) StartBattle(player, opponent Combatant, opts Options) (*Battle, error) {
	b, err := NewBattle(uuid.NewString(), player, opponent, opts)
	if err != nil {
		return nil, err
	}
	if err := b.Start(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.battles[b.ID] = b
	e.mu.Unlock()
	e.logger.Info("battle started",
		zap.String("battle_id", b.ID),
		zap.String("player", b.Player.Name),
		zap.String("opponent", b.Opponent.Name),
		zap.Stringer("first", b.Turn),
	)
	return b, nil
}

// Get returns the battle with id.
func (e *Engine) Get(id string) (*Battle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.battles[id]
	return b, ok
}

// Len returns the number of registered battles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.battles)
}

// Act resolves the active side's turn of battle id using skillID.
// Turns of one battle are serialised; distinct battles do not interact.
//
// Postcondition: returns an error if id is unknown or ResolveTurn fails.
func (e *Engine) Act(id, skillID string) (TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.battles[id]
	if !ok {
		return TurnResult{}, fmt.Errorf("battle %q not found", id)
	}
	return e.resolve(b, skillID)
}

// AutoAct resolves the active side's turn of battle id with the skill chooser picks.
func (e *Engine) AutoAct(id string, chooser Chooser) (TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.battles[id]
	if !ok {
		return TurnResult{}, fmt.Errorf("battle %q not found", id)
	}
	return e.resolve(b, chooser.Choose(b))
}

// resolve must be called with e.mu held.
func (e *Engine) resolve(b *Battle, skillID string) (TurnResult, error) {
	res, err := b.ResolveTurn(skillID)
	if err != nil {
		return res, err
	}
	e.logger.Debug("turn resolved",
		zap.String("battle_id", b.ID),
		zap.String("actor", res.Entry.ActorName),
		zap.String("skill", res.Entry.Skill),
		zap.String("kind", string(res.Entry.Kind)),
		zap.Int("applied", res.Entry.Applied),
	)
	if res.Status.IsTerminal() {
		e.logger.Info("battle resolved",
			zap.String("battle_id", b.ID),
			zap.Stringer("status", res.Status),
			zap.Int("rounds", b.Round),
		)
	}
	return res, nil
}

// End removes the battle with id and returns it. Battles are discarded once
// their rewards have been applied.
//
// Postcondition: Get(id) reports false afterwards.
func (e *Engine) End(id string) (*Battle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.battles[id]
	delete(e.battles, id)
	return b, ok
}
