package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/content"
	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/save"
	"github.com/cory-johannsen/heartbound/internal/game/session"
)

var fixture = map[string]string{
	"skills.yaml": "skills:\n  - {id: strike, name: Strike, power: 12}\n",
	"items.yaml": `
items:
  - {id: rose, name: Rose, kind: gift, price: 30, gift_value: 10}
  - id: potion
    name: Potion
    kind: consumable
    price: 15
    use:
      restore: {hp: 40}
`,
	"locations.yaml": `
start: home
locations:
  - {id: home, name: Home, description: A small flat., exits: [street]}
  - {id: street, name: Street, exits: [home, park, shop, arena, library]}
  - {id: park, name: Park, exits: [street]}
  - {id: shop, name: Corner Shop, exits: [street], shop: true}
  - {id: library, name: Library, exits: [street], hours: [noon]}
  - {id: arena, name: Arena, exits: [street], opponents: [dummy]}
`,
	"characters/mika.yaml": `
id: mika
name: Mika
heroine: true
starting_affection: 10
likes: [rose]
dialogue:
  0: "Hi."
`,
	"npcs/dummy.yaml": "id: dummy\nname: Training Dummy\nlevel: 1\nmax_hp: 10\nrole: tank\nskills: [strike]\n",
	"events/park.yaml": `
events:
  - id: meet_mika
    title: A Girl on a Bench
    trigger: {location: park, once: true}
    choices:
      - text: Recite a poem
        condition:
          min_stat: {charm: 15}
        effect:
          unlock: mika
      - text: Say hi
        effect:
          unlock: mika
          affection: {mika: 5}
`,
}

func newLoop(t *testing.T, store save.Store) (*Loop, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	for name, body := range fixture {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	c, err := content.Load(root)
	require.NoError(t, err)
	s, err := session.New(c, session.NewPlayer(c, "Rin", 100), session.Options{Source: dice.NewSequenceSource(0)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var out bytes.Buffer
	l := NewLoop(s, DefaultRegistry(), store, "slot1", &out, zap.NewNop())
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l, &out
}

func exec(t *testing.T, l *Loop, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, l.Execute(context.Background(), line), line)
	return out.String()
}

func TestExecute_UnknownAndUsage(t *testing.T) {
	l, _ := newLoop(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, l.Execute(ctx, "dance"), ErrUnknownCommand)
	assert.ErrorIs(t, l.Execute(ctx, "go"), ErrUsage)
	assert.ErrorIs(t, l.Execute(ctx, "choose x"), ErrUsage)
	assert.ErrorIs(t, l.Execute(ctx, "quit"), ErrQuit)
	assert.NoError(t, l.Execute(ctx, "   "))
}

func TestExecute_LookMarksClosedExits(t *testing.T) {
	l, out := newLoop(t, nil)

	got := exec(t, l, out, "l")
	assert.Contains(t, got, "== Home ==")
	assert.Contains(t, got, "A small flat.")

	got = exec(t, l, out, "go street")
	assert.Contains(t, got, "library (closed)")
	assert.Contains(t, got, "park,")
}

func TestExecute_EventChoice(t *testing.T) {
	l, out := newLoop(t, nil)
	exec(t, l, out, "go street")

	got := exec(t, l, out, "go park")
	assert.Contains(t, got, "* A Girl on a Bench *")
	assert.Contains(t, got, "1) Recite a poem [requires charm 15 (have 0)]")
	assert.Contains(t, got, "2) Say hi")

	got = exec(t, l, out, "choose 1")
	assert.Contains(t, got, "You can't do that: requires charm 15 (have 0)")

	got = exec(t, l, out, "c 2")
	assert.Contains(t, got, "You got to know Mika.")
	assert.Contains(t, got, "Mika's affection: 10 -> 15")

	assert.ErrorIs(t, l.Execute(context.Background(), "event"), session.ErrNoEvent)

	got = exec(t, l, out, "talk mika")
	assert.Contains(t, got, `Mika: "Hi."`)

	got = exec(t, l, out, "status")
	assert.Contains(t, got, "Rin  Lv 1")
	assert.Contains(t, got, "affection 15")
}

func TestExecute_ShopBuyAndGift(t *testing.T) {
	l, out := newLoop(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, l.Execute(ctx, "shop"), session.ErrNoShop)
	exec(t, l, out, "go street")
	exec(t, l, out, "go park")
	exec(t, l, out, "choose 2")
	exec(t, l, out, "go street")
	exec(t, l, out, "go shop")

	got := exec(t, l, out, "wares")
	assert.Contains(t, got, "Rose")
	assert.Contains(t, got, "30 gold coins")

	got = exec(t, l, out, "buy rose 2")
	assert.Contains(t, got, "Bought 2 x rose. You have 40 gold coins left.")
	assert.ErrorIs(t, l.Execute(ctx, "buy rose 0"), ErrUsage)

	got = exec(t, l, out, "inv")
	assert.Contains(t, got, "Rose")
	assert.Contains(t, got, "x2")

	got = exec(t, l, out, "give mika rose")
	assert.Contains(t, got, "Mika's affection: 15 -> 30 (+15)")
}

func TestExecute_FightToVictory(t *testing.T) {
	l, out := newLoop(t, nil)
	exec(t, l, out, "go street")

	got := exec(t, l, out, "go arena")
	assert.Contains(t, got, "Challengers: dummy")

	got = exec(t, l, out, "fight dummy")
	assert.Contains(t, got, "The battle begins!")

	got = exec(t, l, out, "auto")
	all := got
	assert.Contains(t, all, "Victory!")
	assert.Contains(t, all, "Rank +25")
	assert.ErrorIs(t, l.Execute(context.Background(), "flee"), session.ErrNoBattle)
}

func TestExecute_SaveAndList(t *testing.T) {
	ctx := context.Background()
	l, _ := newLoop(t, nil)
	assert.ErrorIs(t, l.Execute(ctx, "save"), ErrNoStore)

	store := save.NewMemoryStore()
	l, out := newLoop(t, store)

	got := exec(t, l, out, "save")
	assert.Contains(t, got, `Saved to "slot1".`)
	exec(t, l, out, "save other")

	slots, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, slots, 2)

	got = exec(t, l, out, "saves")
	assert.Contains(t, got, "slot1")
	assert.Contains(t, got, "other")
	assert.Contains(t, got, "Rin, day 1")
}

func TestRun_PrintsErrorsAndStopsOnQuit(t *testing.T) {
	l, out := newLoop(t, nil)
	in := strings.NewReader("dance\nhelp\nquit\nlook\n")

	require.NoError(t, l.Run(context.Background(), in))
	got := out.String()
	assert.Contains(t, got, "! ")
	assert.Contains(t, got, "go <location>")
	assert.True(t, strings.HasSuffix(got, "Goodbye.\n"))
}

func TestRun_EndOfInput(t *testing.T) {
	l, out := newLoop(t, nil)
	require.NoError(t, l.Run(context.Background(), strings.NewReader("wait\n")))
	assert.Contains(t, out.String(), "Time passes.")
}

func TestRun_ContextCancelled(t *testing.T) {
	l, _ := newLoop(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx, strings.NewReader("look\n")), context.Canceled)
}

func TestExecute_LenientUnknownReference(t *testing.T) {
	l, out := newLoop(t, nil)

	assert.Contains(t, exec(t, l, out, "gift ghost rose"), "Nothing happens.")
	assert.Contains(t, exec(t, l, out, "recruit ghost"), "Nothing happens.")
}
