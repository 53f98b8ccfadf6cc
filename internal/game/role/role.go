// Package role defines named permission tags and the per-player role list.
package role

import (
	"sort"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
)

// AdminRole is the built-in role satisfied by the host's admin flag.
const AdminRole = "admin"

// Role is a named permission tag.
type Role struct {
	Name string
	// Admin marks the role as an administrative role.
	Admin bool
	// Override grants every command regardless of declared roles.
	Override bool
	// Position ranks roles; higher wins in Top.
	Position int
	Color    *color.Color
	Prefix   string
	Settings *settings.Settings
	// Auths lists the player auth keys granted this role when they join.
	Auths []string
}

// New returns a role named name with an empty settings bag.
func New(name string) *Role {
	return &Role{Name: name, Settings: settings.New()}
}

// SetAdmin marks the role administrative.
func (r *Role) SetAdmin() *Role {
	r.Admin = true
	return r
}

// SetOverride marks the role as granting every command.
func (r *Role) SetOverride() *Role {
	r.Override = true
	return r
}

// SetPosition sets the role's rank.
func (r *Role) SetPosition(n int) *Role {
	r.Position = n
	return r
}

// SetColor sets the role's display color.
func (r *Role) SetColor(c color.Color) *Role {
	r.Color = &c
	return r
}

// SetPrefix sets the role's chat prefix.
func (r *Role) SetPrefix(p string) *Role {
	r.Prefix = p
	return r
}

// List holds a player's roles, partitioned into admin and player roles.
type List struct {
	admin  []*Role
	player []*Role
}

// NewList returns a List holding roles.
func NewList(roles ...*Role) *List {
	l := &List{}
	for _, r := range roles {
		l.Add(r)
	}
	return l
}

// Add inserts r, replacing any role with the same name.
//
// Precondition: r must be non-nil.
func (l *List) Add(r *Role) {
	l.Remove(r.Name)
	if r.Admin {
		l.admin = append(l.admin, r)
		return
	}
	l.player = append(l.player, r)
}

// Remove deletes the role named name.
//
// Postcondition: Returns true if a role was removed.
func (l *List) Remove(name string) bool {
	var removed bool
	l.admin, removed = without(l.admin, name)
	if removed {
		return true
	}
	l.player, removed = without(l.player, name)
	return removed
}

func without(roles []*Role, name string) ([]*Role, bool) {
	for i, r := range roles {
		if r.Name == name {
			return append(roles[:i:i], roles[i+1:]...), true
		}
	}
	return roles, false
}

// Get returns the role named name, or nil.
func (l *List) Get(name string) *Role {
	for _, r := range l.admin {
		if r.Name == name {
			return r
		}
	}
	for _, r := range l.player {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Has reports whether the list holds a role named name.
func (l *List) Has(name string) bool {
	return l.Get(name) != nil
}

// Roles returns admin roles first, then player roles.
func (l *List) Roles() []*Role {
	out := make([]*Role, 0, len(l.admin)+len(l.player))
	out = append(out, l.admin...)
	return append(out, l.player...)
}

// Len returns the number of roles held.
func (l *List) Len() int {
	return len(l.admin) + len(l.player)
}

// HasOverride reports whether any held role carries the override flag.
func (l *List) HasOverride() bool {
	for _, r := range l.Roles() {
		if r.Override {
			return true
		}
	}
	return false
}

// HasAdmin reports whether any held role is administrative.
func (l *List) HasAdmin() bool {
	return len(l.admin) > 0
}

// Top returns the highest-positioned role, or nil when empty. Ties go to the
// role added first within its partition, admin roles before player roles.
func (l *List) Top() *Role {
	roles := l.Roles()
	if len(roles) == 0 {
		return nil
	}
	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Position > roles[j].Position
	})
	return roles[0]
}
