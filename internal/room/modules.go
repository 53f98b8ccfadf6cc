package room

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/module"
)

// Attach registers m's commands, subscribes its listeners in the module
// tier and its custom handlers on the room emitter.
//
// Postcondition: Returns an error wrapping module.ErrInvalidModule if m is
// invalid or a module with the same name is attached; the room is unchanged.
func (r *Room) Attach(m *module.Module) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if r.findModule(m.Name) != nil {
		return fmt.Errorf("%w: module %q is already attached", module.ErrInvalidModule, m.Name)
	}
	a := &attached{mod: m}
	for _, c := range m.Commands {
		r.commands.Add(c)
	}
	a.sub = r.bus.Subscribe(event.ModuleTier, m.Listeners)
	for _, h := range m.Custom {
		a.custom = append(a.custom, r.emitter.On(h.Event, h.Func))
	}
	r.modules = append(r.modules, a)
	r.logger.Info("module attached",
		zap.String("module", m.Name),
		zap.Int("commands", len(m.Commands)),
	)
	return nil
}

// Use builds a module with f and attaches it. A module built without a name
// is named name.
func (r *Room) Use(name string, f module.Factory, opts module.Options) error {
	m, err := f(r, opts, module.NewTranslator(opts.LanguagePack))
	if err != nil {
		return fmt.Errorf("building module %q: %w", name, err)
	}
	if m != nil && m.Name == "" {
		m.Name = name
	}
	return r.Attach(m)
}

// Detach removes the module named name: each of its commands that is still
// registered as that exact command, its listeners, and its custom handlers.
//
// Postcondition: Returns false if no module named name is attached.
func (r *Room) Detach(name string) bool {
	a := r.findModule(name)
	if a == nil {
		return false
	}
	for _, c := range a.mod.Commands {
		r.commands.RemoveCommand(c)
	}
	r.bus.Unsubscribe(a.sub)
	for _, sub := range a.custom {
		r.emitter.Off(sub)
	}
	for i, other := range r.modules {
		if other == a {
			r.modules = append(r.modules[:i:i], r.modules[i+1:]...)
			break
		}
	}
	r.logger.Info("module detached", zap.String("module", name))
	return true
}

// Modules returns the attached module names in attach order.
func (r *Room) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for _, a := range r.modules {
		names = append(names, a.mod.Name)
	}
	return names
}

// Module returns the attached module named name, or nil.
func (r *Room) Module(name string) *module.Module {
	if a := r.findModule(name); a != nil {
		return a.mod
	}
	return nil
}

func (r *Room) findModule(name string) *attached {
	for _, a := range r.modules {
		if a.mod.Name == name {
			return a
		}
	}
	return nil
}
