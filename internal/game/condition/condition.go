// Package condition implements the gate predicates that decide whether an
// event may fire or a choice may be taken.
//
// A Condition is an ordered list of atomic checks joined by logical AND. Each
// check kind is its own type; evaluation dispatches with an exhaustive type
// switch so an unhandled kind is a programming error, never a silently
// ignored field. No check mutates player state.
package condition

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// Check is one atomic gate. The set of implementations is closed.
type Check interface {
	// Describe returns a short requirement label such as "charm >= 15".
	Describe() string
	isCheck()
}

// Condition is a conjunction of checks. The empty Condition is always satisfied.
type Condition []Check

// MinStat requires a player stat to be at least Value.
type MinStat struct {
	Stat  player.Stat
	Value int
}

// MinMoney requires at least Amount money.
type MinMoney struct {
	Amount int
}

// HasItem requires at least Count copies of Item. Count <= 0 is treated as 1.
type HasItem struct {
	Item  string
	Count int
}

// MinAffection requires affection toward Character of at least Value.
type MinAffection struct {
	Character string
	Value     int
}

// MinDay requires the current day to be at least Day.
type MinDay struct {
	Day int
}

// Probability passes when a uniform draw falls under P.
type Probability struct {
	P float64
}

// AggregateAffection requires the sum of affection across all characters to be at least Min.
type AggregateAffection struct {
	Min int
}

// AtTime requires the current time of day to be one of Times.
type AtTime struct {
	Times []player.TimeOfDay
}

// Flag requires a narrative flag to hold the value Want.
type Flag struct {
	Name string
	Want bool
}

// Unlocked requires Character to have been unlocked.
type Unlocked struct {
	Character string
}

// Script delegates to a named Lua predicate.
type Script struct {
	Hook string
}

func (MinStat) isCheck()            {}
func (MinMoney) isCheck()           {}
func (HasItem) isCheck()            {}
func (MinAffection) isCheck()       {}
func (MinDay) isCheck()             {}
func (Probability) isCheck()        {}
func (AggregateAffection) isCheck() {}
func (AtTime) isCheck()             {}
func (Flag) isCheck()               {}
func (Unlocked) isCheck()           {}
func (Script) isCheck()             {}

func (c MinStat) Describe() string  { return fmt.Sprintf("%s >= %d", c.Stat, c.Value) }
func (c MinMoney) Describe() string { return fmt.Sprintf("money >= %d", c.Amount) }
func (c HasItem) Describe() string {
	if c.Count > 1 {
		return fmt.Sprintf("%d x %s", c.Count, c.Item)
	}
	return c.Item
}
func (c MinAffection) Describe() string {
	return fmt.Sprintf("affection(%s) >= %d", c.Character, c.Value)
}
func (c MinDay) Describe() string      { return fmt.Sprintf("day >= %d", c.Day) }
func (c Probability) Describe() string { return fmt.Sprintf("%.0f%% chance", c.P*100) }
func (c AggregateAffection) Describe() string {
	return fmt.Sprintf("total affection >= %d", c.Min)
}
func (c AtTime) Describe() string { return "time in " + joinTimes(c.Times) }
func (c Flag) Describe() string {
	if c.Want {
		return c.Name
	}
	return "not " + c.Name
}
func (c Unlocked) Describe() string { return "met " + c.Character }
func (c Script) Describe() string   { return "script " + c.Hook }

func joinTimes(times []player.TimeOfDay) string {
	names := make([]string, len(times))
	for i, t := range times {
		names[i] = t.String()
	}
	return strings.Join(names, "/")
}

// Describe joins the labels of every check in c, or returns "" for an empty Condition.
func (c Condition) Describe() string {
	parts := make([]string, len(c))
	for i, chk := range c {
		parts[i] = chk.Describe()
	}
	return strings.Join(parts, ", ")
}

// And returns a new Condition containing the checks of c followed by those of others.
//
// Postcondition: neither c nor others is modified.
func (c Condition) And(others ...Check) Condition {
	out := make(Condition, 0, len(c)+len(others))
	out = append(out, c...)
	return append(out, others...)
}
