package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("look")
	assert.Equal(t, "look", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("LOOK")
	assert.Equal(t, "look", result.Command)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("buy rose 2")
	assert.Equal(t, "buy", result.Command)
	assert.Equal(t, []string{"rose", "2"}, result.Args)
	assert.Equal(t, "rose 2", result.RawArgs)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  talk   mika   please  ")
	assert.Equal(t, "talk", result.Command)
	assert.Equal(t, []string{"mika", "please"}, result.Args)
	assert.Equal(t, "mika   please", result.RawArgs)
}

func TestParse_Alias(t *testing.T) {
	result := Parse("m")
	assert.Equal(t, "m", result.Command)
}

func TestParse_GiftArgs(t *testing.T) {
	result := Parse("gift Mika Rose")
	assert.Equal(t, "gift", result.Command)
	assert.Equal(t, []string{"Mika", "Rose"}, result.Args)
	assert.Equal(t, "mika", result.Arg(0))
	assert.Equal(t, "rose", result.Arg(1))
	assert.Equal(t, "", result.Arg(2))
	assert.Equal(t, "", result.Arg(-1))
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseNonEmptyInputHasCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")
		result := Parse(word)
		if result.Command == "" {
			t.Fatalf("non-empty input %q produced empty command", word)
		}
	})
}
