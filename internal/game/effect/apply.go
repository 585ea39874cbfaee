package effect

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// ErrInsufficientFunds is returned when a MoneyDelta would leave a negative balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ExperiencePerLevel is the experience needed per current level to level up.
const ExperiencePerLevel = 100

// AffectionChange records the clamped before/after affection for one character.
type AffectionChange struct {
	Character string
	Before    int
	After     int
}

// Report describes what an Apply call actually did.
type Report struct {
	Messages         []string
	AffectionChanges []AffectionChange
	NotRemoved       []string
	Unlocked         []string
	LevelsGained     int
}

// Apply applies eff to a clone of p and returns the clone.
//
// Precondition: none; an empty eff returns an equal clone.
// Postcondition: p is never modified. On error the returned player equals p
// and no operation has taken effect.
func Apply(eff Effect, p player.Player) (player.Player, Report, error) {
	next := p.Clone()
	var rep Report
	for _, op := range eff {
		if err := applyOp(op, &next, &rep); err != nil {
			return p, Report{}, err
		}
	}
	return next, rep, nil
}

func applyOp(op Op, p *player.Player, rep *Report) error {
	switch o := op.(type) {
	case AffectionDelta:
		before := p.Affection[o.Character]
		after := player.ClampAffection(before + o.Delta)
		p.Affection[o.Character] = after
		rep.AffectionChanges = append(rep.AffectionChanges, AffectionChange{Character: o.Character, Before: before, After: after})
	case StatDelta:
		p.Stats = p.Stats.With(o.Stat, p.Stats.Get(o.Stat)+o.Delta)
	case GrantItem:
		p.Inventory[o.Item] += count(o.Count)
	case RemoveItem:
		n := count(o.Count)
		if p.Inventory[o.Item] < n {
			rep.NotRemoved = append(rep.NotRemoved, o.Item)
			return nil
		}
		p.Inventory[o.Item] -= n
		if p.Inventory[o.Item] == 0 {
			delete(p.Inventory, o.Item)
		}
	case MoneyDelta:
		if p.Money+o.Delta < 0 {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, -o.Delta, p.Money)
		}
		p.Money += o.Delta
	case SetFlag:
		p.Flags[o.Name] = o.Value
	case UnlockCharacter:
		if !p.Unlocked[o.Character] {
			p.Unlocked[o.Character] = true
			rep.Unlocked = append(rep.Unlocked, o.Character)
		}
	case Message:
		rep.Messages = append(rep.Messages, o.Text)
	case Restore:
		p.HP = clamp(p.HP+o.HP, 0, p.MaxHP)
		p.MP = clamp(p.MP+o.MP, 0, p.MaxMP)
	case GainExperience:
		p.Experience += o.Amount
		if p.Experience < 0 {
			p.Experience = 0
		}
		for p.Experience >= ExperiencePerLevel*p.Level {
			p.Experience -= ExperiencePerLevel * p.Level
			p.Level++
			rep.LevelsGained++
		}
	case RankDelta:
		p.RankPoints = max(p.RankPoints+o.Delta, 0)
	default:
		panic(fmt.Sprintf("effect: unhandled op type %T", op))
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
