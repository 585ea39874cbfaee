package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/npc"
)

const botYAML = `
id: sparring_bot
name: Sparring Bot
description: A padded training robot.
level: 2
max_hp: 60
max_mp: 10
attack: 8
defense: 4
speed: 10
role: tank
skills: [strike]
tactics: random
taunts: ["Beep. Prepare.", "Calibrating."]
taunt_chance: 0.5
loot:
  currency: {min: 10, max: 20}
  items:
    - {item: rose, chance: 1.0, min_qty: 1, max_qty: 1}
    - {item: bolt, chance: 0.5, min_qty: 1, max_qty: 3}
`

func skills(t *testing.T) *combat.SkillRegistry {
	t.Helper()
	reg := combat.NewSkillRegistry()
	require.NoError(t, reg.Register(&combat.SkillDef{ID: "strike", Name: "Strike", Power: 15}))
	return reg
}

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(botYAML))
	require.NoError(t, err)
	assert.Equal(t, "sparring_bot", tmpl.ID)
	assert.Equal(t, combat.RoleTank, tmpl.Role)
	require.NotNil(t, tmpl.Loot)
	assert.Len(t, tmpl.Loot.Items, 2)
}

func TestLoadTemplateFromBytes_Rejects(t *testing.T) {
	for name, src := range map[string]string{
		"no skills":     "id: a\nname: A\nlevel: 1\nmax_hp: 5\nrole: dps\n",
		"bad role":      "id: a\nname: A\nlevel: 1\nmax_hp: 5\nrole: bard\nskills: [strike]\n",
		"bad tactics":   "id: a\nname: A\nlevel: 1\nmax_hp: 5\nrole: dps\nskills: [strike]\ntactics: clever\n",
		"unknown field": "id: a\nname: A\nlevel: 1\nmax_hp: 5\nrole: dps\nskills: [strike]\nac: 14\n",
		"bad loot":      "id: a\nname: A\nlevel: 1\nmax_hp: 5\nrole: dps\nskills: [strike]\nloot: {currency: {min: 5, max: 1}}\n",
		"zero hp":       "id: a\nname: A\nlevel: 1\nmax_hp: 0\nrole: dps\nskills: [strike]\n",
	} {
		_, err := npc.LoadTemplateFromBytes([]byte(src))
		assert.Error(t, err, name)
	}
}

func TestTemplate_Combatant(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(botYAML))
	require.NoError(t, err)
	cb, err := tmpl.Combatant("bot-1", skills(t))
	require.NoError(t, err)
	assert.Equal(t, "bot-1", cb.ID)
	assert.Equal(t, 60, cb.HP)
	assert.Equal(t, combat.Stats{Attack: 8, Defense: 4, Speed: 10}, cb.Stats)
	require.NoError(t, cb.Validate())

	tmpl.Skills = []string{"laser"}
	_, err = tmpl.Combatant("bot-2", skills(t))
	assert.ErrorIs(t, err, combat.ErrUnknownSkill)
}

func TestTemplate_Chooser(t *testing.T) {
	tmpl := &npc.Template{Tactics: npc.TacticsRandom}
	assert.IsType(t, combat.RandomChooser{}, tmpl.Chooser(dice.NewSequenceSource(0)))
	tmpl.Tactics = ""
	assert.IsType(t, combat.GreedyChooser{}, tmpl.Chooser(nil))
}

func TestTemplate_Taunt(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(botYAML))
	require.NoError(t, err)

	line, ok := tmpl.Taunt(dice.NewSequenceSource(0, 1))
	require.True(t, ok)
	assert.Equal(t, "Calibrating.", line)

	_, ok = tmpl.Taunt(dice.NewSequenceSource(9999))
	assert.False(t, ok)

	silent := &npc.Template{TauntChance: 1}
	_, ok = silent.Taunt(dice.NewSequenceSource(0))
	assert.False(t, ok)
}

func TestRollLoot_Deterministic(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(botYAML))
	require.NoError(t, err)

	eff := npc.RollLoot(*tmpl.Loot, dice.NewSequenceSource(5, 9999))
	assert.Equal(t, effect.Effect{
		effect.MoneyDelta{Delta: 15},
		effect.GrantItem{Item: "rose", Count: 1},
	}, eff)
}

func TestPropertyRollLoot_WithinBounds(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(botYAML))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		for _, op := range npc.RollLoot(*tmpl.Loot, src) {
			switch o := op.(type) {
			case effect.MoneyDelta:
				if o.Delta < 10 || o.Delta > 20 {
					rt.Fatalf("gold %d out of [10,20]", o.Delta)
				}
			case effect.GrantItem:
				if o.Count < 1 || o.Count > 3 {
					rt.Fatalf("item %s count %d out of range", o.Item, o.Count)
				}
			default:
				rt.Fatalf("unexpected op %T", op)
			}
		}
	})
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.yaml"), []byte(botYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# ignored"), 0o644))
	reg, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, reg.All(), 1)
	_, ok := reg.Get("sparring_bot")
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot2.yaml"), []byte(botYAML), 0o644))
	_, err = npc.LoadTemplates(dir)
	assert.Error(t, err, "duplicate ids")
}
