package combat

import "github.com/cory-johannsen/heartbound/internal/game/effect"

// Fixed battle rewards. They do not depend on the combatants.
const (
	VictoryRank       = 25
	VictoryGold       = 100
	VictoryExperience = 50

	DefeatRank       = -10
	DefeatGold       = 20
	DefeatExperience = 10
)

// Reward is the outcome payout of a resolved battle.
type Reward struct {
	RankPoints int
	Gold       int
	Experience int
}

// RewardFor returns the payout for a battle that ended with status.
//
// Postcondition: non-terminal statuses and draws pay nothing.
func RewardFor(status Status) Reward {
	switch status {
	case StatusVictory:
		return Reward{RankPoints: VictoryRank, Gold: VictoryGold, Experience: VictoryExperience}
	case StatusDefeat:
		return Reward{RankPoints: DefeatRank, Gold: DefeatGold, Experience: DefeatExperience}
	default:
		return Reward{}
	}
}

// IsZero reports whether the reward pays nothing.
func (r Reward) IsZero() bool { return r == Reward{} }

// Effect converts r into an effect the Effect Applicator can apply to the player.
func (r Reward) Effect() effect.Effect {
	var eff effect.Effect
	if r.RankPoints != 0 {
		eff = append(eff, effect.RankDelta{Delta: r.RankPoints})
	}
	if r.Gold != 0 {
		eff = append(eff, effect.MoneyDelta{Delta: r.Gold})
	}
	if r.Experience != 0 {
		eff = append(eff, effect.GainExperience{Amount: r.Experience})
	}
	return eff
}
