package combat

import (
	"errors"

	"github.com/cory-johannsen/heartbound/internal/game/dice"
)

// Chooser picks the skill the active side uses on its turn.
type Chooser interface {
	// Choose returns a skill id for the active side of b, or "" when nothing is usable.
	Choose(b *Battle) string
}

// HealBelow is the HP fraction under which GreedyChooser prefers healing.
const HealBelow = 0.35

// GreedyChooser heals when the actor is below HealBelow of its max HP and
// can heal, and otherwise uses the usable skill with the highest damage
// against the current target. Ties keep the earlier skill in the list.
type GreedyChooser struct{}

// Choose implements Chooser.
func (GreedyChooser) Choose(b *Battle) string {
	actor := b.Actor()
	target := b.Combatant(b.Turn.Other())
	avail := actor.Available()
	if len(avail) == 0 {
		return ""
	}
	if float64(actor.HP) < HealBelow*float64(actor.MaxHP) {
		best, bestHeal := "", 0
		for _, s := range avail {
			if s.IsHeal() && -s.Power > bestHeal {
				best, bestHeal = s.ID, -s.Power
			}
		}
		if best != "" {
			return best
		}
	}
	best, bestDmg := "", 0
	for _, s := range avail {
		if s.IsHeal() {
			continue
		}
		if d := Damage(s.Power, actor.Stats.Attack, target.Stats.Defense); d > bestDmg {
			best, bestDmg = s.ID, d
		}
	}
	if best == "" {
		return avail[0].ID
	}
	return best
}

// RandomChooser picks uniformly among the usable skills.
type RandomChooser struct {
	Source dice.Source
}

// Choose implements Chooser.
func (c RandomChooser) Choose(b *Battle) string {
	avail := b.Actor().Available()
	if len(avail) == 0 {
		return ""
	}
	return avail[dice.Pick(c.Source, len(avail))].ID
}

// AutoTurn resolves the active side's turn with the skill chooser picks.
func AutoTurn(b *Battle, chooser Chooser) (TurnResult, error) {
	return b.ResolveTurn(chooser.Choose(b))
}

// ErrTurnLimit is returned by Run when maxTurns elapse with the battle still active.
var ErrTurnLimit = errors.New("turn limit reached")

// Run resolves turns until the battle is terminal, using playerSide for the
// player's turns and opponentSide for the opponent's.
//
// Precondition: b has been started; maxTurns > 0.
// Postcondition: Returns the number of turns resolved. Returns ErrTurnLimit
// if the battle is still active after maxTurns.
func Run(b *Battle, playerSide, opponentSide Chooser, maxTurns int) (int, error) {
	for n := 0; n < maxTurns; n++ {
		if b.Status.IsTerminal() {
			return n, nil
		}
		chooser := playerSide
		if b.Turn == SideOpponent {
			chooser = opponentSide
		}
		if _, err := AutoTurn(b, chooser); err != nil {
			return n, err
		}
	}
	if b.Status.IsTerminal() {
		return maxTurns, nil
	}
	return maxTurns, ErrTurnLimit
}
