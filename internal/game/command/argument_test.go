package command

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestArgument_Classifications(t *testing.T) {
	tests := []struct {
		in                                           string
		number, yesNo, password, extended, specialEx bool
	}{
		{"42", true, false, true, true, true},
		{"yes", false, true, true, true, true},
		{"No", false, true, true, true, true},
		{"nope", false, true, true, true, true},
		{"héllo", false, false, false, true, true},
		{"a@b.c", false, false, true, false, true},
		{"toolongpassword123", false, false, false, true, true},
		{"a×b", false, false, false, false, false},
		{"", false, false, false, true, true},
	}
	for _, tt := range tests {
		a := NewArgument(tt.in)
		assert.Equal(t, tt.number, a.IsNumber(), "number %q", tt.in)
		assert.Equal(t, tt.yesNo, a.IsYesNo(), "yesno %q", tt.in)
		assert.Equal(t, tt.password, a.IsPassword(), "password %q", tt.in)
		assert.Equal(t, tt.extended, a.IsExtended(), "extended %q", tt.in)
		assert.Equal(t, tt.specialEx, a.IsSpecialExtended(), "specialExtended %q", tt.in)
		assert.Equal(t, tt.in, a.String())
	}
}

func TestArgument_IsNickname(t *testing.T) {
	assert.True(t, NewArgument("a").IsNickname())
	assert.True(t, NewArgument("Žluťoučký kůň").IsNickname())
	assert.True(t, NewArgument(strings.Repeat("é", MaxNicknameLength)).IsNickname(), "length counts runes")
	assert.False(t, NewArgument(strings.Repeat("x", MaxNicknameLength+1)).IsNickname())
	assert.False(t, NewArgument("").IsNickname())
}

func TestPropertyArgument_NicknameLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringN(0, 40, -1).Draw(t, "s")
		n := utf8.RuneCountInString(s)
		if got, want := NewArgument(s).IsNickname(), n >= 1 && n <= MaxNicknameLength; got != want {
			t.Fatalf("IsNickname(%q) = %v, want %v", s, got, want)
		}
	})
}

func TestArgument_IsYes(t *testing.T) {
	assert.True(t, NewArgument("Y").IsYes())
	assert.False(t, NewArgument("no").IsYes())
	assert.False(t, NewArgument("maybe").IsYes())
}

func TestArgument_Int(t *testing.T) {
	n, err := NewArgument("17").Int()
	require.NoError(t, err)
	assert.Equal(t, 17, n)

	_, err = NewArgument("x").Int()
	assert.Error(t, err)
}

func TestPropertyArgument_DigitsAreNumbers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[0-9]{1,9}`).Draw(t, "digits")
		a := NewArgument(s)
		if !a.IsNumber() || !a.IsExtended() {
			t.Fatalf("%q should be number and extended", s)
		}
		if _, err := a.Int(); err != nil {
			t.Fatalf("Int(%q): %v", s, err)
		}
	})
}
