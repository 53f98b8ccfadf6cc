package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_PrefixOnly(t *testing.T) {
	result := Parse("!", "!")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("!", "!help")
	assert.Equal(t, "help", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("!", "!MUTE")
	assert.Equal(t, "mute", result.Command)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("!", "!mute bob 5")
	assert.Equal(t, "mute", result.Command)
	assert.Equal(t, []string{"bob", "5"}, result.Args)
	assert.Equal(t, "bob 5", result.RawArgs)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("!", "!  say   hello   world  ")
	assert.Equal(t, "say", result.Command)
	assert.Equal(t, []string{"hello", "world"}, result.Args)
	assert.Equal(t, "hello   world", result.RawArgs)
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("!", "!help"))
	assert.False(t, HasPrefix("!", "help!"))
	assert.False(t, HasPrefix("!", ""))
	assert.False(t, HasPrefix("", "!help"))
	assert.True(t, HasPrefix("§", "§help"))
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse("!", "!"+word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseArgsNeverEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringMatching(`![a-z]{1,5}( {0,3}[a-z0-9]{0,4}){0,5}`).Draw(t, "line")
		for _, a := range Parse("!", line).Args {
			if a == "" {
				t.Fatalf("empty argument parsed from %q", line)
			}
		}
	})
}
