package party_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heartbound/internal/game/combat"
	"github.com/cory-johannsen/heartbound/internal/game/party"
)

func member(id string, role combat.Role, heroine bool) *party.Member {
	return &party.Member{
		Combatant: combat.Combatant{ID: id, CharacterID: id, Name: id, HP: 10, MaxHP: 10, Role: role},
		Heroine:   heroine,
	}
}

func TestComputeSynergy_Empty(t *testing.T) {
	assert.Equal(t, 0, party.ComputeSynergy(nil))
	assert.Equal(t, 0, party.ComputeSynergy([]*party.Member{nil, nil}))
}

func TestComputeSynergy_Formula(t *testing.T) {
	// 2 members (20) + 2 roles (30) + 1 heroine (10)
	got := party.ComputeSynergy([]*party.Member{
		member("mika", combat.RoleHealer, true),
		nil,
		member("kai", combat.RoleTank, false),
	})
	assert.Equal(t, 60, got)

	// same role twice only counts once
	got = party.ComputeSynergy([]*party.Member{
		member("a", combat.RoleDPS, false),
		member("b", combat.RoleDPS, false),
	})
	assert.Equal(t, 35, got)
}

func TestComputeSynergy_CappedAt100(t *testing.T) {
	got := party.ComputeSynergy([]*party.Member{
		member("a", combat.RoleDPS, true),
		member("b", combat.RoleTank, true),
		member("c", combat.RoleHealer, true),
		member("d", combat.RoleSupport, true),
	})
	assert.Equal(t, 100, got)
}

func TestParty_AddRemoveSwap(t *testing.T) {
	p := party.New(3)
	i, err := p.Add(member("mika", combat.RoleHealer, true))
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	i, err = p.Add(member("kai", combat.RoleTank, false))
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, 60, p.Synergy())

	_, err = p.Add(member("mika", combat.RoleHealer, true))
	assert.True(t, errors.Is(err, party.ErrAlreadyMember))

	require.NoError(t, p.Swap(0, 2))
	m, ok := p.Member(2)
	require.True(t, ok)
	assert.Equal(t, "mika", m.CharacterID())
	assert.Equal(t, 2, m.Combatant.Slot)
	_, ok = p.Member(0)
	assert.False(t, ok)

	removed, err := p.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "kai", removed.CharacterID())
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 35, p.Synergy())

	_, err = p.Remove(1)
	assert.True(t, errors.Is(err, party.ErrEmptySlot))
	assert.True(t, errors.Is(p.Swap(0, 5), party.ErrBadSlot))
}

func TestParty_Full(t *testing.T) {
	p := party.New(1)
	_, err := p.Add(member("a", combat.RoleDPS, false))
	require.NoError(t, err)
	_, err = p.Add(member("b", combat.RoleDPS, false))
	assert.ErrorIs(t, err, party.ErrFull)
}

func TestParty_CloneIsIndependent(t *testing.T) {
	p := party.New(2)
	_, err := p.Add(member("a", combat.RoleDPS, false))
	require.NoError(t, err)
	cp := p.Clone()
	require.NoError(t, p.Update(0, combat.Combatant{ID: "a", CharacterID: "a", HP: 1, MaxHP: 10, Role: combat.RoleDPS}))
	m, _ := cp.Member(0)
	assert.Equal(t, 10, m.Combatant.HP)
}

func TestRestore(t *testing.T) {
	a := *member("a", combat.RoleDPS, false)
	a.Combatant.Slot = 2
	p, err := party.Restore(3, []party.Member{a})
	require.NoError(t, err)
	m, ok := p.Member(2)
	require.True(t, ok)
	assert.Equal(t, "a", m.CharacterID())

	_, err = party.Restore(3, []party.Member{a, a})
	assert.Error(t, err)
	a.Combatant.Slot = 9
	_, err = party.Restore(3, []party.Member{a})
	assert.ErrorIs(t, err, party.ErrBadSlot)
}

var roles = []combat.Role{combat.RoleTank, combat.RoleHealer, combat.RoleDPS, combat.RoleSupport}

func genMembers(rt *rapid.T) []*party.Member {
	n := rapid.IntRange(0, 8).Draw(rt, "n")
	out := make([]*party.Member, n)
	for i := range out {
		if rapid.Bool().Draw(rt, "empty") {
			continue
		}
		out[i] = member(fmt.Sprintf("m%d", i), rapid.SampledFrom(roles).Draw(rt, "role"), rapid.Bool().Draw(rt, "heroine"))
	}
	return out
}

func TestPropertySynergy_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := party.ComputeSynergy(genMembers(rt))
		if s < 0 || s > party.MaxSynergy {
			rt.Fatalf("synergy %d out of range", s)
		}
	})
}

func TestPropertySynergy_AddingMemberNeverDecreases(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		members := genMembers(rt)
		before := party.ComputeSynergy(members)
		extra := member("new", rapid.SampledFrom(roles).Draw(rt, "new_role"), rapid.Bool().Draw(rt, "new_heroine"))
		after := party.ComputeSynergy(append(members, extra))
		if after < before {
			rt.Fatalf("synergy dropped from %d to %d", before, after)
		}
	})
}

func TestPropertySynergy_RoleTermNeverDecreases(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		members := genMembers(rt)
		distinct := func(ms []*party.Member) int {
			seen := map[combat.Role]bool{}
			for _, m := range ms {
				if m != nil {
					seen[m.Combatant.Role] = true
				}
			}
			return len(seen)
		}
		before := distinct(members)
		extra := member("new", rapid.SampledFrom(roles).Draw(rt, "new_role"), false)
		if distinct(append(members, extra)) < before {
			rt.Fatal("role-diversity term decreased")
		}
	})
}
