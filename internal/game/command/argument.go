package command

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

// MaxNicknameLength is the longest player name the host accepts, in runes.
const MaxNicknameLength = 25

var (
	numberPattern          = regexp.MustCompile(`^\d+$`)
	yesNoPattern           = regexp.MustCompile(`(?i)^(y(es)?|n(o)?)`)
	passwordPattern        = regexp.MustCompile(`^[a-zA-Z0-9_@.!*$?&%-]{1,16}$`)
	extendedPattern        = regexp.MustCompile(`^[a-zA-Z0-9\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{024F}]*$`)
	specialExtendedPattern = regexp.MustCompile(`^[a-zA-Z0-9\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{024F}_@.!*$?&%-]*$`)
)

// Argument is one whitespace-delimited command argument with its shape
// classifications computed at construction.
type Argument struct {
	value           string
	number          bool
	yesNo           bool
	password        bool
	extended        bool
	specialExtended bool
	nickname        bool
}

// NewArgument classifies s.
func NewArgument(s string) Argument {
	return Argument{
		value:           s,
		number:          numberPattern.MatchString(s),
		yesNo:           yesNoPattern.MatchString(s),
		password:        passwordPattern.MatchString(s),
		extended:        extendedPattern.MatchString(s),
		specialExtended: specialExtendedPattern.MatchString(s),
		nickname:        isNickname(s),
	}
}

// NewArguments classifies every token.
func NewArguments(tokens []string) []Argument {
	args := make([]Argument, len(tokens))
	for i, t := range tokens {
		args[i] = NewArgument(t)
	}
	return args
}

func (a Argument) String() string { return a.value }

// IsNumber reports whether the argument is all ASCII digits.
func (a Argument) IsNumber() bool { return a.number }

// IsYesNo reports whether the argument begins with y/yes/n/no, case-insensitively.
func (a Argument) IsYesNo() bool { return a.yesNo }

// IsYes reports whether the argument is a yes/no starting with y.
func (a Argument) IsYes() bool {
	return a.yesNo && (a.value[0] == 'y' || a.value[0] == 'Y')
}

// IsPassword reports whether the argument is 1-16 password-safe characters.
func (a Argument) IsPassword() bool { return a.password }

// IsExtended reports whether the argument is letters (Latin-1 and Latin
// Extended included) and digits only.
func (a Argument) IsExtended() bool { return a.extended }

// IsSpecialExtended is IsExtended that also admits _@.!*$?&%-.
func (a Argument) IsSpecialExtended() bool { return a.specialExtended }

// IsNickname reports whether the argument could be a player name: 1 to
// MaxNicknameLength characters.
func (a Argument) IsNickname() bool { return a.nickname }

func isNickname(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= MaxNicknameLength
}

// Int parses the argument as a base-10 integer.
func (a Argument) Int() (int, error) {
	return strconv.Atoi(a.value)
}
