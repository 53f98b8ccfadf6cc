package builtin

import (
	"slices"
	"sort"

	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/game/role"
)

// Roles returns a factory for the "roles" module, which grants each joining
// player every role whose Auths list the player's auth key. Granting an admin
// role also sets the host admin flag.
func Roles(roles map[string]*role.Role) module.Factory {
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(module.Room, module.Options, module.Translator) (*module.Module, error) {
		return module.New("roles").
			On(event.Listeners{
				PlayerJoin: func(p *player.Player) {
					if p.Auth == "" {
						return
					}
					for _, name := range names {
						r := roles[name]
						if !slices.Contains(r.Auths, p.Auth) {
							continue
						}
						p.AddRole(r)
						if r.Admin {
							p.SetAdmin(true)
						}
					}
				},
			}).
			Build()
	}
}
