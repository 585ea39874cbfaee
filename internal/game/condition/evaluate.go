package condition

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// ScriptRunner evaluates named predicates for Script checks.
type ScriptRunner interface {
	// EvalPredicate runs the named hook against p and reports whether it passed.
	// Random draws made by the script come from src when it is non-nil.
	EvalPredicate(hook string, p player.Player, src dice.Source) (bool, error)
}

// Env carries the collaborators a few check kinds need.
// The zero Env is usable: Probability checks then never pass and Script checks fail.
type Env struct {
	Source  dice.Source
	Scripts ScriptRunner
}

// Failure records one check that did not pass, with a player-facing reason.
type Failure struct {
	Check  Check
	Reason string
}

// Result is the outcome of explaining a Condition. A gate failure is a
// normal value, not an error.
type Result struct {
	Failures []Failure
}

// Passed reports whether every check passed.
func (r Result) Passed() bool { return len(r.Failures) == 0 }

// Message joins every failure reason into one sentence, or returns "" when passed.
func (r Result) Message() string {
	reasons := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		reasons[i] = f.Reason
	}
	return strings.Join(reasons, "; ")
}

// Evaluate reports whether every check of cond passes for p. Evaluation stops
// at the first failing check, so later Probability checks do not draw.
//
// Postcondition: Returns true for an empty or nil cond; p is never modified.
func Evaluate(cond Condition, p player.Player, env Env) bool {
	for _, chk := range cond {
		if ok, _ := check(chk, p, env); !ok {
			return false
		}
	}
	return true
}

// Explain evaluates every check of cond and collects a Failure for each one
// that did not pass.
//
// Postcondition: result.Passed() == Evaluate(cond, p, env) for deterministic checks.
func Explain(cond Condition, p player.Player, env Env) Result {
	var res Result
	for _, chk := range cond {
		if ok, reason := check(chk, p, env); !ok {
			res.Failures = append(res.Failures, Failure{Check: chk, Reason: reason})
		}
	}
	return res
}

// check evaluates one atomic check and returns a reason when it fails.
func check(chk Check, p player.Player, env Env) (bool, string) {
	switch c := chk.(type) {
	case MinStat:
		have := p.Stats.Get(c.Stat)
		return have >= c.Value, fmt.Sprintf("requires %s %d (have %d)", c.Stat, c.Value, have)
	case MinMoney:
		return p.Money >= c.Amount, fmt.Sprintf("requires %d money (have %d)", c.Amount, p.Money)
	case HasItem:
		need := c.Count
		if need <= 0 {
			need = 1
		}
		have := p.ItemCount(c.Item)
		if need == 1 {
			return have >= need, fmt.Sprintf("requires %s", c.Item)
		}
		return have >= need, fmt.Sprintf("requires %d %s (have %d)", need, c.Item, have)
	case MinAffection:
		have := p.AffectionFor(c.Character)
		return have >= c.Value, fmt.Sprintf("requires affection %d with %s (have %d)", c.Value, c.Character, have)
	case MinDay:
		return p.Day >= c.Day, fmt.Sprintf("available from day %d", c.Day)
	case Probability:
		if env.Source == nil {
			return false, "not this time"
		}
		return dice.Chance(env.Source, c.P), "not this time"
	case AggregateAffection:
		have := p.TotalAffection()
		return have >= c.Min, fmt.Sprintf("requires total affection %d (have %d)", c.Min, have)
	case AtTime:
		return slices.Contains(c.Times, p.Time), "only in the "+joinTimes(c.Times)
	case Flag:
		if c.Want {
			return p.Flag(c.Name), fmt.Sprintf("requires %s", c.Name)
		}
		return !p.Flag(c.Name), fmt.Sprintf("not available after %s", c.Name)
	case Unlocked:
		return p.IsUnlocked(c.Character), fmt.Sprintf("requires meeting %s", c.Character)
	case Script:
		if env.Scripts == nil {
			return false, fmt.Sprintf("requirement %s unavailable", c.Hook)
		}
		ok, err := env.Scripts.EvalPredicate(c.Hook, p, env.Source)
		if err != nil {
			return false, fmt.Sprintf("requirement %s failed: %v", c.Hook, err)
		}
		return ok, "requirement not met"
	default:
		panic(fmt.Sprintf("condition: unhandled check type %T", chk))
	}
}
