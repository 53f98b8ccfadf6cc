package command

import (
	"strings"
	"unicode/utf8"
)

// ParseResult holds the parsed command name and arguments from a chat line.
type ParseResult struct {
	// Command is the first word after the prefix, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// HasPrefix reports whether message starts with the single-character prefix.
func HasPrefix(prefix, message string) bool {
	if prefix == "" || message == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(message)
	p, _ := utf8.DecodeRuneInString(prefix)
	return r == p
}

// Parse strips the prefix from message and splits it into a command and arguments.
//
// Precondition: HasPrefix(prefix, message) should hold.
// Postcondition: Returns a ParseResult. If nothing follows the prefix, Command is empty.
func Parse(prefix, message string) ParseResult {
	if HasPrefix(prefix, message) {
		_, size := utf8.DecodeRuneInString(message)
		message = message[size:]
	}
	line := strings.TrimSpace(message)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}
