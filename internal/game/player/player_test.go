package player_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heartbound/internal/game/player"
)

func TestNew_Defaults(t *testing.T) {
	p := player.New("Rin")
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 1, p.Day)
	assert.Equal(t, player.Morning, p.Time)
	assert.Equal(t, p.MaxHP, p.HP)
	assert.NotNil(t, p.Inventory)
	assert.NotNil(t, p.Affection)
	assert.NoError(t, p.Validate())
}

func TestClone_IsDeep(t *testing.T) {
	p := player.New("Rin")
	p.Inventory["rose"] = 2
	p.Affection["mika"] = 40
	p.Flags["met_mika"] = true
	p.Unlocked["mika"] = true

	c := p.Clone()
	c.Inventory["rose"] = 9
	c.Affection["mika"] = 99
	c.Flags["met_mika"] = false
	c.Unlocked["sora"] = true

	assert.Equal(t, 2, p.Inventory["rose"])
	assert.Equal(t, 40, p.Affection["mika"])
	assert.True(t, p.Flags["met_mika"])
	assert.False(t, p.Unlocked["sora"])
}

func TestAdvanceTime_RollsOverAtNight(t *testing.T) {
	p := player.New("Rin")
	p.Time = player.Evening
	p = player.AdvanceTime(p)
	assert.Equal(t, player.Night, p.Time)
	assert.Equal(t, 1, p.Day)

	p = player.AdvanceTime(p)
	assert.Equal(t, player.Morning, p.Time)
	assert.Equal(t, 2, p.Day)
}

func TestAdvanceTime_DoesNotMutateInput(t *testing.T) {
	p := player.New("Rin")
	_ = player.AdvanceTime(p)
	assert.Equal(t, player.Morning, p.Time)
}

func TestTotalAffection(t *testing.T) {
	p := player.New("Rin")
	p.Affection["a"] = 30
	p.Affection["b"] = 45
	assert.Equal(t, 75, p.TotalAffection())
}

func TestUnlockedIDs_Sorted(t *testing.T) {
	p := player.New("Rin")
	p.Unlocked["sora"] = true
	p.Unlocked["aki"] = true
	p.Unlocked["mika"] = false
	assert.Equal(t, []string{"aki", "sora"}, p.UnlockedIDs())
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	p := player.New("")
	p.Money = -1
	p.Affection["mika"] = 150
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "money must be >= 0")
	assert.Contains(t, err.Error(), "affection for \"mika\"")
}

func TestStats_WithClampsAtZero(t *testing.T) {
	s := player.Stats{Charm: 5}.With(player.StatCharm, -3)
	assert.Equal(t, 0, s.Get(player.StatCharm))
}

func TestParseStat(t *testing.T) {
	st, err := player.ParseStat("charm")
	require.NoError(t, err)
	assert.Equal(t, player.StatCharm, st)

	_, err = player.ParseStat("wisdom")
	assert.Error(t, err)
}

func TestTimeOfDay_TextRoundTrip(t *testing.T) {
	type wrapper struct {
		At player.TimeOfDay `json:"at" yaml:"at"`
	}
	b, err := json.Marshal(wrapper{At: player.Afternoon})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"afternoon"}`, string(b))

	var w wrapper
	require.NoError(t, yaml.Unmarshal([]byte("at: evening\n"), &w))
	assert.Equal(t, player.Evening, w.At)

	assert.Error(t, yaml.Unmarshal([]byte("at: dusk\n"), &w))
}

func TestPropertyClampAffection_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Int().Draw(rt, "v")
		got := player.ClampAffection(v)
		if got < player.MinAffection || got > player.MaxAffection {
			rt.Fatalf("ClampAffection(%d) = %d out of range", v, got)
		}
		if v >= 0 && v <= 100 && got != v {
			rt.Fatalf("ClampAffection(%d) = %d, want identity inside range", v, got)
		}
	})
}

func TestPropertyAdvanceTime_DayIncrementsEveryFiveSteps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(rt, "steps")
		p := player.New("Rin")
		for i := 0; i < n; i++ {
			p = player.AdvanceTime(p)
		}
		if p.Day != 1+n/5 {
			rt.Fatalf("after %d steps Day = %d, want %d", n, p.Day, 1+n/5)
		}
		if int(p.Time) != n%5 {
			rt.Fatalf("after %d steps Time = %v, want %d", n, p.Time, n%5)
		}
	})
}
