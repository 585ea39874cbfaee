package event_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/effect"
	"github.com/cory-johannsen/heartbound/internal/game/event"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

func prob(p float64) *float64 { return &p }

func ev(id string, t event.Trigger) *event.Event {
	return &event.Event{
		ID:      id,
		Trigger: t,
		Choices: []event.Choice{{Text: "OK", Effect: effect.Effect{effect.Message{Text: id}}}},
	}
}

func catalog(t *testing.T, events []*event.Event, ambient ...*event.Event) *event.Catalog {
	t.Helper()
	cat, err := event.NewCatalog(events, ambient)
	require.NoError(t, err)
	return cat
}

func rin() player.Player {
	p := player.New("Rin")
	p.Location = "park"
	p.Day = 3
	p.Affection["mika"] = 40
	p.Affection["sora"] = 20
	p.Unlocked["mika"] = true
	return p
}

func selector(src dice.Source) *event.Selector {
	return event.NewSelector(src, nil, zap.NewNop())
}

func TestSelect_FiltersByLocation(t *testing.T) {
	cat := catalog(t, []*event.Event{
		ev("cafe_chat", event.Trigger{Location: "cafe"}),
		ev("park_walk", event.Trigger{Location: "park"}),
	})
	got := selector(dice.NewSequenceSource(0)).Select(cat, rin(), event.NewCompleted(), "park")
	require.NotNil(t, got)
	assert.Equal(t, "park_walk", got.ID)
}

func TestSelect_SkipsCompletedOnceEvents(t *testing.T) {
	cat := catalog(t, []*event.Event{
		ev("first_meeting", event.Trigger{Once: true}),
	})
	sel := selector(dice.NewSequenceSource(0))
	assert.NotNil(t, sel.Select(cat, rin(), event.NewCompleted(), "park"))
	assert.Nil(t, sel.Select(cat, rin(), event.NewCompleted("first_meeting"), "park"))
}

func TestSelect_RepeatableEventIgnoresCompletedSet(t *testing.T) {
	cat := catalog(t, []*event.Event{ev("chat", event.Trigger{})})
	got := selector(dice.NewSequenceSource(0)).Select(cat, rin(), event.NewCompleted("chat"), "park")
	assert.NotNil(t, got)
}

func TestSelect_Gates(t *testing.T) {
	cases := []struct {
		name string
		trig event.Trigger
		want bool
	}{
		{"day pass", event.Trigger{MinDay: 3}, true},
		{"day fail", event.Trigger{MinDay: 4}, false},
		{"affection pass", event.Trigger{Character: "mika", MinAffection: 40}, true},
		{"affection fail", event.Trigger{Character: "sora", MinAffection: 30}, false},
		{"character must be unlocked", event.Trigger{Character: "sora"}, false},
		{"unlocked character", event.Trigger{Character: "mika"}, true},
		{"aggregate pass", event.Trigger{AggregateAffection: 60}, true},
		{"aggregate fail", event.Trigger{AggregateAffection: 61}, false},
		{"time pass", event.Trigger{TimeOfDay: []player.TimeOfDay{player.Morning}}, true},
		{"time fail", event.Trigger{TimeOfDay: []player.TimeOfDay{player.Night}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat := catalog(t, []*event.Event{ev("e", tc.trig)})
			got := selector(dice.NewSequenceSource(0)).Select(cat, rin(), event.NewCompleted(), "park")
			assert.Equal(t, tc.want, got != nil)
		})
	}
}

func TestSelect_RandomTieBreakUsesSource(t *testing.T) {
	cat := catalog(t, []*event.Event{
		ev("a", event.Trigger{}),
		ev("b", event.Trigger{}),
		ev("c", event.Trigger{}),
	})
	for idx, want := range []string{"a", "b", "c"} {
		got := selector(dice.NewSequenceSource(idx)).Select(cat, rin(), event.NewCompleted(), "park")
		require.NotNil(t, got)
		assert.Equal(t, want, got.ID)
	}
}

func TestSelect_ProbabilityGateDrawsIndependently(t *testing.T) {
	cat := catalog(t, []*event.Event{
		ev("rare", event.Trigger{Probability: prob(0.25)}),
		ev("common", event.Trigger{Probability: prob(0.75)}),
	})
	// rare draws 3000 (misses 2500), common draws 3000 (fires under 7500).
	src := dice.NewSequenceSource(3000)
	got := selector(src).Select(cat, rin(), event.NewCompleted(), "park")
	require.NotNil(t, got)
	assert.Equal(t, "common", got.ID)
	assert.Equal(t, 2, src.Calls(), "single survivor must not draw a tie-break")
}

func TestSelect_AmbientFallback(t *testing.T) {
	cat := catalog(t,
		[]*event.Event{ev("rare", event.Trigger{Probability: prob(0.1)})},
		ev("breeze", event.Trigger{Probability: prob(0.5)}),
	)
	got, pool := selector(dice.NewSequenceSource(9000, 100)).SelectPool(cat, rin(), event.NewCompleted(), "park")
	require.NotNil(t, got)
	assert.Equal(t, "breeze", got.ID)
	assert.Equal(t, event.PoolAmbient, pool)
}

func TestSelect_AmbientNotConsultedWhenNarrativeFires(t *testing.T) {
	cat := catalog(t,
		[]*event.Event{ev("story", event.Trigger{})},
		ev("breeze", event.Trigger{}),
	)
	got, pool := selector(dice.NewSequenceSource(0)).SelectPool(cat, rin(), event.NewCompleted(), "park")
	require.NotNil(t, got)
	assert.Equal(t, "story", got.ID)
	assert.Equal(t, event.PoolNarrative, pool)
}

func TestSelect_NothingEligible(t *testing.T) {
	cat := catalog(t, []*event.Event{ev("late", event.Trigger{MinDay: 30})})
	got, pool := selector(dice.NewSequenceSource(0)).SelectPool(cat, rin(), event.NewCompleted(), "park")
	assert.Nil(t, got)
	assert.Equal(t, event.PoolNone, pool)
}

func TestSelect_DoesNotMutatePlayer(t *testing.T) {
	cat := catalog(t, []*event.Event{ev("e", event.Trigger{Character: "nobody", MinAffection: 10})})
	p := rin()
	before := p.Clone()
	_ = selector(dice.NewSequenceSource(0)).Select(cat, p, event.NewCompleted(), "park")
	assert.Equal(t, before, p)
}

func TestNewCatalog_Rejects(t *testing.T) {
	_, err := event.NewCatalog([]*event.Event{ev("a", event.Trigger{}), ev("a", event.Trigger{})}, nil)
	assert.Error(t, err, "duplicate")

	_, err = event.NewCatalog(nil, []*event.Event{ev("amb", event.Trigger{Location: "park"})})
	assert.Error(t, err, "ambient with location")

	_, err = event.NewCatalog([]*event.Event{ev("a", event.Trigger{MinAffection: 10})}, nil)
	assert.Error(t, err, "affection without character")

	_, err = event.NewCatalog([]*event.Event{ev("a", event.Trigger{Probability: prob(1.5)})}, nil)
	assert.Error(t, err, "probability out of range")

	_, err = event.NewCatalog([]*event.Event{{ID: "empty"}}, nil)
	assert.Error(t, err, "no choices")
}

func TestPropertySelect_NeverReturnsCompletedOnceEvent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		var events, ambient []*event.Event
		completed := event.NewCompleted()
		for i := range n {
			trig := event.Trigger{Once: rapid.Bool().Draw(rt, "once")}
			if rapid.Bool().Draw(rt, "has_prob") {
				trig.Probability = prob(rapid.Float64Range(0, 1).Draw(rt, "p"))
			}
			e := ev(fmt.Sprintf("e%d", i), trig)
			if rapid.Bool().Draw(rt, "ambient") {
				ambient = append(ambient, e)
			} else {
				events = append(events, e)
			}
			if rapid.Bool().Draw(rt, "done") {
				completed.Add(e.ID)
			}
		}
		cat, err := event.NewCatalog(events, ambient)
		if err != nil {
			rt.Fatal(err)
		}
		sel := selector(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		for range 20 {
			got := sel.Select(cat, rin(), completed, "park")
			if got != nil && got.Trigger.Once && completed.Has(got.ID) {
				rt.Fatalf("selected completed once-event %q", got.ID)
			}
		}
	})
}
