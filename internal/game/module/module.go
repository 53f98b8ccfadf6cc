// Package module defines self-contained bundles of commands and listeners
// that can be attached to and detached from a room.
package module

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// ErrInvalidModule is returned for a module that cannot be attached.
var ErrInvalidModule = errors.New("invalid module")

// CustomHandler subscribes Func to the room's custom event Event.
type CustomHandler struct {
	Event string
	Func  func(args ...any)
}

// Module is a named bundle of commands, room listeners and custom event handlers.
type Module struct {
	Name      string
	Commands  []*command.Command
	Listeners event.Listeners
	Custom    []CustomHandler
}

// Validate reports every problem that prevents m from being attached.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidModule.
func (m *Module) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrInvalidModule)
	}
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	for i, c := range m.Commands {
		switch {
		case c == nil:
			errs = append(errs, fmt.Errorf("command %d is nil", i))
		case c.Name == "":
			errs = append(errs, fmt.Errorf("command %d has no name", i))
		case c.Func == nil:
			errs = append(errs, fmt.Errorf("command %q has no func", c.Name))
		}
	}
	for i, h := range m.Custom {
		if h.Event == "" || h.Func == nil {
			errs = append(errs, fmt.Errorf("custom handler %d needs an event name and func", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %w", ErrInvalidModule, m.Name, errors.Join(errs...))
	}
	return nil
}

// Builder assembles a Module.
type Builder struct {
	m *Module
}

// New starts a module named name.
func New(name string) *Builder {
	return &Builder{m: &Module{Name: name}}
}

// Command adds c.
func (b *Builder) Command(c *command.Command) *Builder {
	b.m.Commands = append(b.m.Commands, c)
	return b
}

// On sets the module's room listeners.
func (b *Builder) On(l event.Listeners) *Builder {
	b.m.Listeners = l
	return b
}

// OnCustom subscribes fn to the custom event name.
func (b *Builder) OnCustom(name string, fn func(args ...any)) *Builder {
	b.m.Custom = append(b.m.Custom, CustomHandler{Event: name, Func: fn})
	return b
}

// Build validates and returns the module.
func (b *Builder) Build() (*Module, error) {
	if err := b.m.Validate(); err != nil {
		return nil, err
	}
	return b.m, nil
}

// Room is the part of the room a module factory may hold on to.
type Room interface {
	command.Room
	Native() native.Host
}

// Options configures a module instance.
type Options struct {
	Settings     *settings.Settings
	LanguagePack map[string]string
}

// Factory builds a module bound to r.
type Factory func(r Room, opts Options, tr Translator) (*Module, error)
