package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContent = "../../content"

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HEARTBOUND_LOGGING_LEVEL", "error")
	t.Setenv("HEARTBOUND_ENGINE_SEED", "7")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_SampleContent(t *testing.T) {
	cfg := ""
	out, err := run(t, validateCmd(&cfg), "--content", sampleContent)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "characters  3")
}

func TestValidate_MissingRoot(t *testing.T) {
	cfg := ""
	_, err := run(t, validateCmd(&cfg), "--content", t.TempDir())
	assert.Error(t, err)
}

func TestSimulateBattle(t *testing.T) {
	cfg := ""
	out, err := run(t, simulateCmd(&cfg), "battle", "--content", sampleContent, "--npc", "sparring_bot", "--runs", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "5 battles against sparring_bot")
	assert.Contains(t, out, "victory")
}

func TestSimulateBattle_UnknownOpponent(t *testing.T) {
	cfg := ""
	_, err := run(t, simulateCmd(&cfg), "battle", "--content", sampleContent, "--npc", "nobody")
	assert.ErrorContains(t, err, "no location offers a battle")
}

func TestSimulateWalk(t *testing.T) {
	cfg := ""
	out, err := run(t, simulateCmd(&cfg), "walk", "--content", sampleContent, "--steps", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "after 30 steps")
}

func TestSimulateWalk_Reproducible(t *testing.T) {
	cfg := ""
	first, err := run(t, simulateCmd(&cfg), "walk", "--content", sampleContent, "--steps", "20")
	require.NoError(t, err)
	second, err := run(t, simulateCmd(&cfg), "walk", "--content", sampleContent, "--steps", "20")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimulateDuel(t *testing.T) {
	cfg := ""
	out, err := run(t, simulateCmd(&cfg), "duel", "--content", sampleContent, "--a", "arena_champion", "--b", "sparring_bot", "--runs", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "4 duels, arena_champion vs sparring_bot")
	assert.Contains(t, out, "arena_champion wins")
	assert.Contains(t, out, "average turns per duel")
}

func TestSimulateDuel_UnknownNPC(t *testing.T) {
	cfg := ""
	_, err := run(t, simulateCmd(&cfg), "duel", "--content", sampleContent, "--a", "sparring_bot", "--b", "nobody")
	assert.ErrorContains(t, err, `unknown npc "nobody"`)
}
