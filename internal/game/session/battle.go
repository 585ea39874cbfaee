package session

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/npc"
	"github.com/cory-johannsen/heartbound/internal/game/party"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// Self selects the player as the fighter in StartBattle.
const Self = -1

// DefaultAutoTurns bounds AutoBattle when no limit is given.
const DefaultAutoTurns = 1000

var (
	// ErrNoOpponent is returned when the opponent cannot be challenged here.
	ErrNoOpponent = errors.New("nobody by that name to fight here")
	// ErrCannotFight is returned when the chosen fighter has no HP left.
	ErrCannotFight = errors.New("too exhausted to fight")
)

// basicAttack is the player's fallback skill when the content defines no "strike".
var basicAttack = combat.Skill{ID: "strike", Name: "Strike", Power: 10}

// fight tracks the battle a session is in.
type fight struct {
	battleID string
	tmpl     *npc.Template
	// slot is the party slot of the fighter, or Self.
	slot int
}

// TurnReport collects what happened between two player decisions.
type TurnReport struct {
	Entries []combat.LogEntry
	Taunts  []string
	Status  combat.Status
	// Settlement is set once the battle has ended.
	Settlement *Settlement
}

// Settlement is the outcome applied to the player when a battle ends.
type Settlement struct {
	Status combat.Status
	Reward combat.Reward
	// Loot is the rolled drop on victory.
	Loot   effect.Effect
	Report effect.Report
}

// PlayerCombatant derives a combatant from the player: strength attacks,
// stamina defends, agility sets the speed.
func PlayerCombatant(p player.Player, skills *combat.SkillRegistry) combat.Combatant {
	sk := basicAttack
	if d, ok := skills.Get(basicAttack.ID); ok {
		sk = d.Skill()
	}
	return combat.Combatant{
		ID:     "player",
		Name:   p.Name,
		Level:  p.Level,
		HP:     p.HP,
		MaxHP:  p.MaxHP,
		MP:     p.MP,
		MaxMP:  p.MaxMP,
		Stats:  combat.Stats{Attack: p.Stats.Strength, Defense: p.Stats.Stamina, Speed: p.Stats.Agility},
		Skills: []combat.Skill{sk},
		Slot:   Self,
		Role:   combat.RoleDPS,
	}
}

// StartBattle challenges npcID at the current location with the party member
// in slot, or the player for Self. Opening opponent turns are resolved before
// it returns, so the report ends on the player's decision or a finished battle.
//
// Precondition: no battle is in progress and no event is waiting for a choice.
func (s *Session) StartBattle(npcID string, slot int) (TurnReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idle(); err != nil {
		return TurnReport{}, err
	}
	loc, _ := s.content.Map.Location(s.player.Location)
	if loc == nil || !slices.Contains(loc.Opponents, npcID) {
		return TurnReport{}, fmt.Errorf("%w: %s", ErrNoOpponent, npcID)
	}
	tmpl, ok := s.content.NPCs.Get(npcID)
	if !ok {
		return TurnReport{}, s.unknown("npc", npcID)
	}

	var fighter combat.Combatant
	if slot == Self {
		fighter = PlayerCombatant(s.player, s.content.Skills)
	} else {
		m, ok := s.party.Member(slot)
		if !ok {
			return TurnReport{}, fmt.Errorf("party slot %d: %w", slot, partyErr(slot, s.party.Size()))
		}
		fighter = m.Combatant.Clone()
	}
	if fighter.IsDefeated() {
		return TurnReport{}, fmt.Errorf("%w: %s", ErrCannotFight, fighter.Name)
	}
	opp, err := tmpl.Combatant("npc:"+tmpl.ID, s.content.Skills)
	if err != nil {
		return TurnReport{}, err
	}
	b, err := s.battles.StartBattle(fighter, opp, combat.Options{MaxRounds: s.opts.MaxRounds})
	if err != nil {
		return TurnReport{}, err
	}
	s.fight = &fight{battleID: b.ID, tmpl: tmpl, slot: slot}
	s.logger.Info("battle joined",
		zap.String("battle_id", b.ID),
		zap.String("opponent", tmpl.ID),
		zap.Int("slot", slot),
	)
	var rep TurnReport
	if err := s.opponentTurns(&rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// Act resolves the player's turn with skillID followed by the opponent's reply.
//
// Postcondition: combat.ErrUnknownSkill and combat.ErrSkillUnavailable leave the battle unchanged.
func (s *Session) Act(skillID string) (TurnReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return TurnReport{}, err
	}
	if s.fight == nil {
		return TurnReport{}, ErrNoBattle
	}
	res, err := s.battles.Act(s.fight.battleID, skillID)
	if err != nil {
		return TurnReport{}, err
	}
	rep := TurnReport{Entries: []combat.LogEntry{res.Entry}, Status: res.Status}
	if err := s.opponentTurns(&rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// AutoBattle lets chooser play the player's side until the battle ends or
// maxTurns player turns have passed; maxTurns <= 0 means DefaultAutoTurns.
//
// Postcondition: returns combat.ErrTurnLimit with the battle still in progress
// if the limit is reached.
func (s *Session) AutoBattle(chooser combat.Chooser, maxTurns int) (TurnReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return TurnReport{}, err
	}
	if s.fight == nil {
		return TurnReport{}, ErrNoBattle
	}
	if maxTurns <= 0 {
		maxTurns = DefaultAutoTurns
	}
	var rep TurnReport
	for range maxTurns {
		res, err := s.battles.AutoAct(s.fight.battleID, chooser)
		if err != nil {
			return rep, err
		}
		rep.Entries = append(rep.Entries, res.Entry)
		rep.Status = res.Status
		if err := s.opponentTurns(&rep); err != nil {
			return rep, err
		}
		if rep.Settlement != nil {
			return rep, nil
		}
	}
	return rep, combat.ErrTurnLimit
}

// Flee abandons the battle. No reward is applied; damage taken is kept.
func (s *Session) Flee() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	if s.fight == nil {
		return ErrNoBattle
	}
	b, _ := s.battles.End(s.fight.battleID)
	if b != nil {
		if err := s.writeBack(b.Player); err != nil {
			return err
		}
	}
	s.logger.Info("fled battle", zap.String("battle_id", s.fight.battleID))
	s.fight = nil
	return nil
}

// Battle returns a copy of the battle in progress. Later turns do not
// change the copy.
func (s *Session) Battle() (*combat.Battle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fight == nil {
		return nil, false
	}
	b, ok := s.battles.Get(s.fight.battleID)
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// opponentTurns resolves opponent turns until it is the player's move or the
// battle ends, then settles a finished battle. Must be called with s.mu held.
func (s *Session) opponentTurns(rep *TurnReport) error {
	b, ok := s.battles.Get(s.fight.battleID)
	if !ok {
		return fmt.Errorf("battle %q not found", s.fight.battleID)
	}
	chooser := s.fight.tmpl.Chooser(s.roller)
	for b.Status == combat.StatusActive && b.Turn == combat.SideOpponent {
		if line, ok := s.fight.tmpl.Taunt(s.roller); ok {
			rep.Taunts = append(rep.Taunts, line)
		}
		res, err := s.battles.AutoAct(b.ID, chooser)
		if err != nil {
			return err
		}
		rep.Entries = append(rep.Entries, res.Entry)
	}
	rep.Status = b.Status
	if b.Status.IsTerminal() {
		st, err := s.settle(b)
		if err != nil {
			return err
		}
		rep.Settlement = &st
	}
	return nil
}

// settle applies the reward and loot of a finished battle, writes the
// fighter's HP and MP back and discards the battle. Must be called with s.mu held.
func (s *Session) settle(b *combat.Battle) (Settlement, error) {
	st := Settlement{Status: b.Status, Reward: combat.RewardFor(b.Status)}
	eff := st.Reward.Effect()
	if b.Status == combat.StatusVictory && s.fight.tmpl.Loot != nil {
		st.Loot = npc.RollLoot(*s.fight.tmpl.Loot, s.roller)
		eff = append(eff, st.Loot...)
	}
	if err := s.writeBack(b.Player); err != nil {
		return st, err
	}
	rep, err := s.apply(eff)
	if err != nil {
		return st, err
	}
	st.Report = rep
	s.battles.End(b.ID)
	s.logger.Info("battle settled",
		zap.String("battle_id", b.ID),
		zap.Stringer("status", b.Status),
		zap.Int("rank", st.Reward.RankPoints),
		zap.Int("gold", st.Reward.Gold),
	)
	s.fight = nil
	return st, nil
}

// writeBack copies the fighter's remaining HP and MP to the player or party
// member it came from. Cooldowns do not outlive the battle.
func (s *Session) writeBack(c combat.Combatant) error {
	if s.fight.slot == Self {
		next := s.player.Clone()
		next.HP = min(c.HP, next.MaxHP)
		next.MP = min(c.MP, next.MaxMP)
		s.player = next
		return nil
	}
	c = c.Clone()
	for i := range c.Skills {
		c.Skills[i].CooldownLeft = 0
	}
	return s.party.Update(s.fight.slot, c)
}

func partyErr(slot, size int) error {
	if slot < 0 || slot >= size {
		return party.ErrBadSlot
	}
	return party.ErrEmptySlot
}
