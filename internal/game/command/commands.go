// Package command provides in-chat commands: the command model, its
// permission check, the registry, the argument classifier and the parser.
package command

import (
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/game/role"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// Categories for organizing commands in help output.
const (
	CategoryGeneral = "general"
	CategoryGame    = "game"
	CategoryAdmin   = "admin"
)

// Func is a command body.
type Func func(inv *Invocation) error

// Room is the part of the room a running command may use.
type Room interface {
	Send(msg native.Message)
	Players() *player.List
	Commands() *Registry
	Prefix() string
	State() *settings.Settings
	Emit(name string, args ...any)
}

// Invocation is the execution record handed to a command body.
type Invocation struct {
	Player  *player.Player
	Message string
	Room    Room
	At      time.Time
	Args    []Argument
}

// Subject is anything whose permissions can be checked.
type Subject interface {
	Admin() bool
	Roles() *role.List
}

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Desc is the short help text.
	Desc string
	// Usage shows the argument syntax, without the prefix and name.
	Usage string
	// Category groups the command in help output.
	Category string
	// Roles gates the command; empty means anyone may run it.
	Roles []string
	// DeleteMessage runs the command immediately and never relays the message.
	DeleteMessage bool
	Func          Func
}

// IsAllowed reports whether s may run the command.
//
// Postcondition: true when no roles are declared, when s holds an override
// role, when the admin role is declared and s carries the host admin flag, or
// when s holds at least one declared role.
func (c *Command) IsAllowed(s Subject) bool {
	if len(c.Roles) == 0 {
		return true
	}
	roles := s.Roles()
	if roles.HasOverride() {
		return true
	}
	if slices.Contains(c.Roles, role.AdminRole) && s.Admin() {
		return true
	}
	for _, name := range c.Roles {
		if roles.Has(name) {
			return true
		}
	}
	return false
}

// Matches reports whether search is the command's name or one of its
// aliases, ignoring case.
func (c *Command) Matches(search string) bool {
	return strings.EqualFold(c.Name, search) ||
		slices.ContainsFunc(c.Aliases, func(a string) bool { return strings.EqualFold(a, search) })
}

// Run executes the command body.
//
// Postcondition: A panic in the body is recovered and returned as an error.
func (c *Command) Run(inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v\n%s", c.Name, r, debug.Stack())
		}
	}()
	if c.Func == nil {
		return fmt.Errorf("command %q has no func", c.Name)
	}
	return c.Func(inv)
}
