package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultPrefix marks a chat message as a command.
const DefaultPrefix = "!"

// ErrInvalidPrefix is returned for a prefix that is not a single character.
var ErrInvalidPrefix = errors.New("command prefix must be a single character")

// ValidPrefix reports whether p is exactly one character.
func ValidPrefix(p string) bool {
	return utf8.RuneCountInString(p) == 1
}

// Registry is an ordered list of commands keyed by name and aliases.
// Not safe for concurrent use.
type Registry struct {
	commands []*Command
	prefix   string
}

// NewRegistry creates a Registry with the given prefix and commands.
//
// Postcondition: Later commands evict earlier ones on name/alias collisions.
// A prefix that is not a single character is replaced by DefaultPrefix.
func NewRegistry(prefix string, cmds ...*Command) *Registry {
	if !ValidPrefix(prefix) {
		prefix = DefaultPrefix
	}
	r := &Registry{prefix: prefix}
	for _, c := range cmds {
		r.Add(c)
	}
	return r
}

// Prefix returns the command prefix.
func (r *Registry) Prefix() string {
	return r.prefix
}

// SetPrefix replaces the command prefix.
//
// Postcondition: Returns ErrInvalidPrefix, leaving the prefix unchanged,
// unless p is exactly one character.
func (r *Registry) SetPrefix(p string) error {
	if !ValidPrefix(p) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, p)
	}
	r.prefix = p
	return nil
}

// Add appends cmd after removing every command that shares its name or any
// alias with cmd.
//
// Postcondition: No two commands in the registry share a key. A nil cmd is
// ignored.
func (r *Registry) Add(cmd *Command) {
	if cmd == nil {
		return
	}
	keys := append([]string{cmd.Name}, cmd.Aliases...)
	r.commands = slices.DeleteFunc(r.commands, func(existing *Command) bool {
		for _, k := range keys {
			if existing.Matches(k) {
				return true
			}
		}
		return false
	})
	r.commands = append(r.commands, cmd)
}

// Get looks up a command by name, then by alias, ignoring case.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Get(search string) (*Command, bool) {
	for _, c := range r.commands {
		if strings.EqualFold(c.Name, search) {
			return c, true
		}
	}
	for _, c := range r.commands {
		if slices.ContainsFunc(c.Aliases, func(a string) bool { return strings.EqualFold(a, search) }) {
			return c, true
		}
	}
	return nil, false
}

// Remove deletes the command named name, ignoring case.
//
// Postcondition: Returns true if a command was removed.
func (r *Registry) Remove(name string) bool {
	n := len(r.commands)
	r.commands = slices.DeleteFunc(r.commands, func(c *Command) bool { return strings.EqualFold(c.Name, name) })
	return len(r.commands) != n
}

// RemoveCommand deletes cmd only if that exact command is still registered.
//
// Postcondition: Returns true if cmd was removed.
func (r *Registry) RemoveCommand(cmd *Command) bool {
	n := len(r.commands)
	r.commands = slices.DeleteFunc(r.commands, func(c *Command) bool { return c == cmd })
	return len(r.commands) != n
}

// List returns the commands in insertion order.
func (r *Registry) List() []*Command {
	return slices.Clone(r.commands)
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.commands)
}

// CommandsByCategory returns commands grouped by category, each group in
// insertion order. Commands without a category are grouped under
// CategoryGeneral.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.commands {
		cat := cmd.Category
		if cat == "" {
			cat = CategoryGeneral
		}
		categories[cat] = append(categories[cat], cmd)
	}
	return categories
}
