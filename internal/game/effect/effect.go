// Package effect applies choice outcomes, gifts, purchases and battle rewards
// to a player.
//
// An Effect is an ordered list of operations. Apply is a total, deterministic
// function: it clones the input player, applies every operation to the clone,
// and returns the clone. The input is never modified.
package effect

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// Op is one state transform. The set of implementations is closed.
type Op interface {
	// Describe returns a short label such as "mika +10".
	Describe() string
	isOp()
}

// Effect is an ordered list of operations applied left to right.
type Effect []Op

// AffectionDelta adds Delta to the affection toward Character, clamped to [0,100].
type AffectionDelta struct {
	Character string
	Delta     int
}

// StatDelta adds Delta to Stat, clamped at zero.
type StatDelta struct {
	Stat  player.Stat
	Delta int
}

// GrantItem adds Count copies of Item. Count <= 0 is treated as 1.
type GrantItem struct {
	Item  string
	Count int
}

// RemoveItem removes Count copies of Item. If fewer are held nothing is
// removed and the item is reported in Report.NotRemoved.
type RemoveItem struct {
	Item  string
	Count int
}

// MoneyDelta adds Delta to the balance. A delta that would leave the balance
// negative fails the whole Apply with ErrInsufficientFunds.
type MoneyDelta struct {
	Delta int
}

// SetFlag assigns a narrative flag.
type SetFlag struct {
	Name  string
	Value bool
}

// UnlockCharacter marks Character as unlocked. Unlocking twice is a no-op.
type UnlockCharacter struct {
	Character string
}

// Message carries display text for the presentation layer.
type Message struct {
	Text string
}

// Restore heals HP and MP, clamped to their maxima.
type Restore struct {
	HP int
	MP int
}

// GainExperience adds experience and levels the player up as thresholds are crossed.
type GainExperience struct {
	Amount int
}

// RankDelta adds Delta to the ranking points, clamped at zero.
type RankDelta struct {
	Delta int
}

func (AffectionDelta) isOp()  {}
func (StatDelta) isOp()       {}
func (GrantItem) isOp()       {}
func (RemoveItem) isOp()      {}
func (MoneyDelta) isOp()      {}
func (SetFlag) isOp()         {}
func (UnlockCharacter) isOp() {}
func (Message) isOp()         {}
func (Restore) isOp()         {}
func (GainExperience) isOp()  {}
func (RankDelta) isOp()       {}

func (o AffectionDelta) Describe() string { return fmt.Sprintf("%s %+d", o.Character, o.Delta) }
func (o StatDelta) Describe() string      { return fmt.Sprintf("%s %+d", o.Stat, o.Delta) }
func (o GrantItem) Describe() string      { return fmt.Sprintf("+%d %s", count(o.Count), o.Item) }
func (o RemoveItem) Describe() string     { return fmt.Sprintf("-%d %s", count(o.Count), o.Item) }
func (o MoneyDelta) Describe() string     { return fmt.Sprintf("money %+d", o.Delta) }
func (o SetFlag) Describe() string        { return fmt.Sprintf("%s=%t", o.Name, o.Value) }
func (o UnlockCharacter) Describe() string {
	return "unlock " + o.Character
}
func (o Message) Describe() string        { return o.Text }
func (o Restore) Describe() string        { return fmt.Sprintf("restore hp %d mp %d", o.HP, o.MP) }
func (o GainExperience) Describe() string { return fmt.Sprintf("exp %+d", o.Amount) }
func (o RankDelta) Describe() string      { return fmt.Sprintf("rank %+d", o.Delta) }

// Describe joins the labels of every non-message op in e.
func (e Effect) Describe() string {
	parts := make([]string, 0, len(e))
	for _, op := range e {
		if _, ok := op.(Message); ok {
			continue
		}
		parts = append(parts, op.Describe())
	}
	return strings.Join(parts, ", ")
}

func count(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
