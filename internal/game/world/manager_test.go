package world_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heartbound/internal/game/player"
	"github.com/cory-johannsen/heartbound/internal/game/world"
)

const townYAML = `
start: home
locations:
  - id: home
    name: Home
    description: Your small apartment.
    exits: [street]
  - id: street
    name: Main Street
    exits: [home, cafe, arena]
  - id: cafe
    name: Cafe Lumen
    exits: [street]
    hours: [morning, noon, afternoon]
    shop: true
  - id: arena
    name: Arena
    exits: [street]
    opponents: [sparring_bot]
`

func TestLoadMapFromBytes(t *testing.T) {
	m, err := world.LoadMapFromBytes([]byte(townYAML))
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, "home", m.Start().ID)

	cafe, ok := m.Location("cafe")
	require.True(t, ok)
	assert.True(t, cafe.Shop)
	assert.Equal(t, []player.TimeOfDay{player.Morning, player.Noon, player.Afternoon}, cafe.Hours)

	arena, _ := m.Location("arena")
	assert.Equal(t, []string{"sparring_bot"}, arena.Opponents)
}

func TestLoadMapFromBytes_Rejects(t *testing.T) {
	for name, src := range map[string]string{
		"dangling exit": "start: a\nlocations:\n  - {id: a, name: A, exits: [nowhere]}\n",
		"missing start": "start: z\nlocations:\n  - {id: a, name: A}\n",
		"duplicate":     "start: a\nlocations:\n  - {id: a, name: A}\n  - {id: a, name: B}\n",
		"self exit":     "start: a\nlocations:\n  - {id: a, name: A, exits: [a]}\n",
		"unknown field": "start: a\nlocations:\n  - {id: a, name: A, weather: rain}\n",
		"bad hour":      "start: a\nlocations:\n  - {id: a, name: A, hours: [midnight]}\n",
	} {
		_, err := world.LoadMapFromBytes([]byte(src))
		assert.Error(t, err, name)
	}
}

func TestNavigate(t *testing.T) {
	m, err := world.LoadMapFromBytes([]byte(townYAML))
	require.NoError(t, err)

	dest, err := m.Navigate("home", "street", player.Night)
	require.NoError(t, err)
	assert.Equal(t, "street", dest.ID)

	_, err = m.Navigate("home", "cafe", player.Morning)
	assert.True(t, errors.Is(err, world.ErrNoExit))

	_, err = m.Navigate("street", "cafe", player.Evening)
	assert.True(t, errors.Is(err, world.ErrClosed))

	_, err = m.Navigate("street", "cafe", player.Noon)
	assert.NoError(t, err)

	_, err = m.Navigate("street", "moon", player.Noon)
	require.Error(t, err)
	assert.False(t, errors.Is(err, world.ErrNoExit))
}

// genRing builds n locations connected in a ring.
func genRing(n int) []*world.Location {
	locs := make([]*world.Location, n)
	for i := range locs {
		locs[i] = &world.Location{
			ID:    fmt.Sprintf("loc%d", i),
			Name:  fmt.Sprintf("Location %d", i),
			Exits: []string{fmt.Sprintf("loc%d", (i+1)%n)},
		}
	}
	return locs
}

func TestPropertyRingIsFullyReachable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 30).Draw(rt, "n")
		m, err := world.NewMap("loc0", genRing(n))
		if err != nil {
			rt.Fatal(err)
		}
		cur := m.Start().ID
		seen := map[string]bool{cur: true}
		for range n - 1 {
			l, _ := m.Location(cur)
			next, err := m.Navigate(cur, l.Exits[0], player.Morning)
			if err != nil {
				rt.Fatal(err)
			}
			cur = next.ID
			seen[cur] = true
		}
		if len(seen) != m.Len() {
			rt.Fatalf("visited %d of %d", len(seen), m.Len())
		}
	})
}
