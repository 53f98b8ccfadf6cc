package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/haxroom/internal/game/role"
)

type subject struct {
	admin bool
	roles *role.List
}

func (s subject) Admin() bool       { return s.admin }
func (s subject) Roles() *role.List { return s.roles }

func TestIsAllowed_NoRoles(t *testing.T) {
	cmd := &Command{Name: "help"}
	assert.True(t, cmd.IsAllowed(subject{roles: role.NewList()}))
}

func TestIsAllowed_RoleGating(t *testing.T) {
	cmd := &Command{Name: "mute", Roles: []string{"mod"}}
	s := subject{roles: role.NewList()}
	assert.False(t, cmd.IsAllowed(s))
	s.roles.Add(role.New("mod"))
	assert.True(t, cmd.IsAllowed(s))
}

func TestIsAllowed_AnyDeclaredRole(t *testing.T) {
	cmd := &Command{Name: "mute", Roles: []string{"mod", "vip"}}
	assert.True(t, cmd.IsAllowed(subject{roles: role.NewList(role.New("vip"))}))
}

func TestIsAllowed_AdminFlagSatisfiesAdminRole(t *testing.T) {
	cmd := &Command{Name: "mute", Roles: []string{role.AdminRole}}
	assert.False(t, cmd.IsAllowed(subject{roles: role.NewList()}))
	assert.True(t, cmd.IsAllowed(subject{admin: true, roles: role.NewList()}))

	other := &Command{Name: "ban", Roles: []string{"mod"}}
	assert.False(t, other.IsAllowed(subject{admin: true, roles: role.NewList()}))
}

func TestIsAllowed_Override(t *testing.T) {
	cmd := &Command{Name: "ban", Roles: []string{"mod"}}
	assert.True(t, cmd.IsAllowed(subject{roles: role.NewList(role.New("owner").SetOverride())}))
}

func TestRun_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	cmd := &Command{Name: "x", Func: func(*Invocation) error { return boom }}
	assert.ErrorIs(t, cmd.Run(&Invocation{}), boom)
}

func TestRun_RecoversPanic(t *testing.T) {
	cmd := &Command{Name: "x", Func: func(*Invocation) error { panic("nope") }}
	err := cmd.Run(&Invocation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `command "x" panicked: nope`)
}

func TestRun_NilFunc(t *testing.T) {
	assert.Error(t, (&Command{Name: "x"}).Run(&Invocation{}))
}

func TestPropertyIsAllowed_NoRolesAlwaysAllowed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := role.NewList()
		for _, n := range rapid.SliceOf(rapid.StringMatching(`[a-z]{1,6}`)).Draw(t, "roles") {
			l.Add(role.New(n))
		}
		s := subject{admin: rapid.Bool().Draw(t, "admin"), roles: l}
		if !(&Command{Name: "c"}).IsAllowed(s) {
			t.Fatal("command without roles denied")
		}
	})
}
