package combat

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a Battle.
type Status int

const (
	StatusPreparing Status = iota
	StatusActive
	StatusVictory
	StatusDefeat
	StatusDraw
)

// String returns a lowercase status label.
func (s Status) String() string {
	switch s {
	case StatusPreparing:
		return "preparing"
	case StatusActive:
		return "active"
	case StatusVictory:
		return "victory"
	case StatusDefeat:
		return "defeat"
	case StatusDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further turns can be resolved.
func (s Status) IsTerminal() bool {
	return s == StatusVictory || s == StatusDefeat || s == StatusDraw
}

// EffectKind classifies a log entry.
type EffectKind string

const (
	KindDamage EffectKind = "damage"
	KindHeal   EffectKind = "heal"
	// KindPass records a forfeited turn: the actor had no usable skill.
	KindPass EffectKind = "pass"
)

// LogEntry records one resolved action.
type LogEntry struct {
	Round     int        `json:"round"`
	Actor     Side       `json:"actor"`
	ActorName string     `json:"actor_name"`
	Skill     string     `json:"skill"`
	Kind      EffectKind `json:"kind"`
	// Magnitude is the formula result: damage dealt before the HP floor, or heal amount.
	Magnitude int `json:"magnitude"`
	// Applied is the HP actually removed from the target or restored to the caster.
	Applied  int `json:"applied"`
	TargetHP int `json:"target_hp"`
}

// Options tunes a battle.
type Options struct {
	// MaxRounds ends the battle in a draw once that many full rounds have
	// passed without a winner. Zero means no limit.
	MaxRounds int
}

var (
	// ErrBattleOver is returned by ResolveTurn once the battle is resolved.
	ErrBattleOver = errors.New("battle is over")
	// ErrNotStarted is returned by ResolveTurn before Start.
	ErrNotStarted = errors.New("battle has not started")
	// ErrUnknownSkill is returned when the actor has no skill with the requested id.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrSkillUnavailable is returned when the requested skill is on cooldown or unaffordable.
	ErrSkillUnavailable = errors.New("skill unavailable")
)

// Battle is the state of one encounter between a player-side combatant and an
// opponent. A Battle owns copies of its combatants; nothing outside the
// battle shares them.
//
// A Battle is not safe for concurrent use; the caller must serialise access.
type Battle struct {
	ID       string
	Player   Combatant
	Opponent Combatant
	Turn     Side
	Round    int
	Status   Status
	Log      []LogEntry

	opts        Options
	first       Side
	startHP     [2]int
	damageTaken [2]int
	healed      [2]int
}

// NewBattle creates a battle in the preparing state from copies of player and opponent.
//
// Precondition: both combatants must be valid and not defeated.
// Postcondition: Returns a Battle with Status == StatusPreparing, or an error.
func NewBattle(id string, player, opponent Combatant, opts Options) (*Battle, error) {
	if id == "" {
		return nil, errors.New("battle id must not be empty")
	}
	if opts.MaxRounds < 0 {
		return nil, fmt.Errorf("max rounds must be >= 0, got %d", opts.MaxRounds)
	}
	for _, c := range []*Combatant{&player, &opponent} {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.IsDefeated() {
			return nil, fmt.Errorf("combatant %q is already defeated", c.ID)
		}
	}
	b := &Battle{
		ID:       id,
		Player:   player.Clone(),
		Opponent: opponent.Clone(),
		Status:   StatusPreparing,
		opts:     opts,
	}
	b.startHP = [2]int{player.HP, opponent.HP}
	return b, nil
}

// FirstTurn returns the side that acts first: the faster combatant, with ties going to the player.
func FirstTurn(player, opponent Combatant) Side {
	if opponent.Stats.Speed > player.Stats.Speed {
		return SideOpponent
	}
	return SidePlayer
}

// Start moves the battle from preparing to active and assigns the first turn.
//
// Postcondition: Status == StatusActive, Round == 1, Turn == FirstTurn(Player, Opponent).
func (b *Battle) Start() error {
	if b.Status != StatusPreparing {
		return fmt.Errorf("battle %s: cannot start from %s", b.ID, b.Status)
	}
	b.first = FirstTurn(b.Player, b.Opponent)
	b.Turn = b.first
	b.Round = 1
	b.Status = StatusActive
	return nil
}

// Combatant returns a pointer to the combatant on side s.
func (b *Battle) Combatant(s Side) *Combatant {
	if s == SidePlayer {
		return &b.Player
	}
	return &b.Opponent
}

// Clone returns a deep copy of b that shares no mutable state with it.
func (b *Battle) Clone() *Battle {
	out := *b
	out.Player = b.Player.Clone()
	out.Opponent = b.Opponent.Clone()
	out.Log = append([]LogEntry(nil), b.Log...)
	return &out
}

// Actor returns the combatant whose turn it is.
func (b *Battle) Actor() *Combatant { return b.Combatant(b.Turn) }

// DamageTaken returns the cumulative HP side s has lost to damage.
func (b *Battle) DamageTaken(s Side) int { return b.damageTaken[s] }

// Healed returns the cumulative HP side s has restored by healing.
func (b *Battle) Healed(s Side) int { return b.healed[s] }

// StartHP returns the HP side s entered the battle with.
func (b *Battle) StartHP(s Side) int { return b.startHP[s] }

// Options returns the options the battle was created with.
func (b *Battle) Options() Options { return b.opts }

// TurnResult describes one resolved turn.
type TurnResult struct {
	Entry     LogEntry
	Forfeited bool
	Status    Status
}

// ResolveTurn resolves the active side's turn using skillID.
//
// If the actor has no usable skill at all the turn is forfeited regardless of
// skillID. Damage skills hit the other side for Damage(power, attack,
// defense); heal skills restore the caster. Using a skill spends its MP and
// starts its cooldown; the actor's other cooldowns tick down by one.
//
// Precondition: the battle has been started.
// Postcondition: on error nothing changed. On success exactly one log entry
// was appended, and either the battle is terminal or the turn passed to the other side.
func (b *Battle) ResolveTurn(skillID string) (TurnResult, error) {
	switch {
	case b.Status == StatusPreparing:
		return TurnResult{}, ErrNotStarted
	case b.Status.IsTerminal():
		return TurnResult{}, ErrBattleOver
	}

	side := b.Turn
	actor := b.Combatant(side).Clone()
	target := b.Combatant(side.Other()).Clone()

	if len(actor.Available()) == 0 {
		actor.tickCooldowns()
		entry := LogEntry{
			Round:     b.Round,
			Actor:     side,
			ActorName: actor.Name,
			Kind:      KindPass,
			TargetHP:  target.HP,
		}
		*b.Combatant(side) = actor
		b.Log = append(b.Log, entry)
		b.endTurn()
		return TurnResult{Entry: entry, Forfeited: true, Status: b.Status}, nil
	}

	idx := actor.Skill(skillID)
	if idx < 0 {
		return TurnResult{}, fmt.Errorf("%w: %q", ErrUnknownSkill, skillID)
	}
	skill := actor.Skills[idx]
	if skill.CooldownLeft > 0 || skill.MPCost > actor.MP {
		return TurnResult{}, fmt.Errorf("%w: %q (cooldown %d, cost %d, mp %d)",
			ErrSkillUnavailable, skillID, skill.CooldownLeft, skill.MPCost, actor.MP)
	}

	actor.MP -= skill.MPCost
	actor.tickCooldowns()
	actor.Skills[idx].CooldownLeft = skill.Cooldown

	entry := LogEntry{
		Round:     b.Round,
		Actor:     side,
		ActorName: actor.Name,
		Skill:     skill.Name,
	}
	if skill.IsHeal() {
		entry.Kind = KindHeal
		entry.Magnitude = -skill.Power
		entry.Applied = actor.Heal(-skill.Power)
		entry.TargetHP = actor.HP
		b.healed[side] += entry.Applied
	} else {
		entry.Kind = KindDamage
		entry.Magnitude = Damage(skill.Power, actor.Stats.Attack, target.Stats.Defense)
		entry.Applied = target.ApplyDamage(entry.Magnitude)
		entry.TargetHP = target.HP
		b.damageTaken[side.Other()] += entry.Applied
	}

	*b.Combatant(side) = actor
	*b.Combatant(side.Other()) = target
	b.Log = append(b.Log, entry)

	if target.IsDefeated() {
		if side == SidePlayer {
			b.Status = StatusVictory
		} else {
			b.Status = StatusDefeat
		}
		return TurnResult{Entry: entry, Status: b.Status}, nil
	}
	b.endTurn()
	return TurnResult{Entry: entry, Status: b.Status}, nil
}

// endTurn passes the turn and closes the round when it returns to the first actor.
func (b *Battle) endTurn() {
	b.Turn = b.Turn.Other()
	if b.Turn != b.first {
		return
	}
	b.Round++
	if b.opts.MaxRounds > 0 && b.Round > b.opts.MaxRounds {
		b.Status = StatusDraw
	}
}

// Winner returns the winning side once the battle ended in victory or defeat.
//
// Postcondition: ok is false while the battle is not decided or ended in a draw.
func (b *Battle) Winner() (side Side, ok bool) {
	switch b.Status {
	case StatusVictory:
		return SidePlayer, true
	case StatusDefeat:
		return SideOpponent, true
	default:
		return 0, false
	}
}
