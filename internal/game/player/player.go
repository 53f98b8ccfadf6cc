// Package player wraps the host's player objects with roles, settings,
// command cooldowns and typed disc accessors.
package player

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/haxroom/internal/game/disc"
	"github.com/cory-johannsen/haxroom/internal/game/role"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// KickLimitDistance is the edge gap below which a player can kick a disc.
const KickLimitDistance = 4

// Sender delivers messages on behalf of a player.
type Sender interface {
	Send(msg native.Message)
}

// Player is a connected player. Team, admin flag and position are read from
// the host on every access.
type Player struct {
	disc.Body

	ID   int
	Name string
	// Auth is the player's public identity, empty when unverified.
	Auth string
	// Conn is the host's hex-encoded connection fingerprint.
	Conn string
	// IP is Conn decoded.
	IP string

	Settings *settings.Settings
	// CommandsCooldown is the minimum gap between two commands; 0 disables it.
	CommandsCooldown time.Duration
	CanReadChat      bool
	CanUseCommands   bool

	host        native.Host
	sender      Sender
	roles       *role.List
	lastCommand time.Time
	location    *geo.Location
}

type playerDisc struct {
	host native.Host
	id   int
}

func (s playerDisc) Properties() *native.DiscProperties { return s.host.PlayerDiscProperties(s.id) }

func (s playerDisc) SetProperties(p native.DiscProperties) { s.host.SetPlayerDiscProperties(s.id, p) }

// New wraps obj.
//
// Precondition: host and sender must be non-nil.
func New(host native.Host, sender Sender, obj native.PlayerObject) *Player {
	return &Player{
		Body:           disc.NewBody(playerDisc{host: host, id: obj.ID}),
		ID:             obj.ID,
		Name:           obj.Name,
		Auth:           obj.Auth,
		Conn:           obj.Conn,
		IP:             DecodeConn(obj.Conn),
		Settings:       settings.New(),
		CanReadChat:    true,
		CanUseCommands: true,
		host:           host,
		sender:         sender,
		roles:          role.NewList(),
	}
}

// DecodeConn turns the host's hex connection string into the IP text it
// encodes. Input that is not valid hex is returned unchanged.
func DecodeConn(conn string) string {
	b, err := hex.DecodeString(conn)
	if err != nil {
		return conn
	}
	return string(b)
}

func (p *Player) object() *native.PlayerObject {
	return p.host.Player(p.ID)
}

// Team returns the player's team, Spectators when the host no longer knows
// the player.
func (p *Player) Team() native.TeamID {
	if o := p.object(); o != nil {
		return o.Team
	}
	return native.Spectators
}

// SetTeam moves the player.
func (p *Player) SetTeam(team native.TeamID) {
	p.host.SetPlayerTeam(p.ID, team)
}

// Admin reports the host admin flag.
func (p *Player) Admin() bool {
	if o := p.object(); o != nil {
		return o.Admin
	}
	return false
}

// SetAdmin sets the host admin flag.
func (p *Player) SetAdmin(admin bool) {
	p.host.SetPlayerAdmin(p.ID, admin)
}

// SetAvatar overrides the player's avatar.
func (p *Player) SetAvatar(avatar string) {
	p.host.SetPlayerAvatar(p.ID, &avatar)
}

// ClearAvatar removes the avatar override.
func (p *Player) ClearAvatar() {
	p.host.SetPlayerAvatar(p.ID, nil)
}

// Kick removes the player from the room.
func (p *Player) Kick(reason string) {
	p.host.KickPlayer(p.ID, reason, false)
}

// Ban kicks the player and bans their connection.
func (p *Player) Ban(reason string) {
	p.host.KickPlayer(p.ID, reason, true)
}

// Reply sends msg privately to the player.
//
// Postcondition: Nothing is sent when CanReadChat is false.
func (p *Player) Reply(msg native.Message) {
	if !p.CanReadChat || p.sender == nil {
		return
	}
	msg.To = p.ID
	p.sender.Send(msg)
}

// CanKick reports whether d is within kicking distance.
func (p *Player) CanKick(d disc.Locator) bool {
	dist, ok := disc.Distance(d, p)
	return ok && dist < KickLimitDistance
}

// CooldownElapsed reports whether the player may run a command at now.
func (p *Player) CooldownElapsed(now time.Time) bool {
	if p.CommandsCooldown <= 0 {
		return true
	}
	return now.Sub(p.lastCommand) > p.CommandsCooldown
}

// TouchCooldown records now as the time of the player's last command.
func (p *Player) TouchCooldown(now time.Time) {
	p.lastCommand = now
}

// LastCommand returns the time of the last accepted command, zero if none.
func (p *Player) LastCommand() time.Time {
	return p.lastCommand
}

// Roles returns the player's role list.
func (p *Player) Roles() *role.List {
	return p.roles
}

// AddRole attaches r, replacing a role of the same name.
func (p *Player) AddRole(r *role.Role) {
	p.roles.Add(r)
}

// RemoveRole detaches the role named name.
func (p *Player) RemoveRole(name string) bool {
	return p.roles.Remove(name)
}

// HasRole reports whether the player holds the role named name.
func (p *Player) HasRole(name string) bool {
	return p.roles.Has(name)
}

// TopRole returns the player's highest-positioned role, or nil.
func (p *Player) TopRole() *role.Role {
	return p.roles.Top()
}

// Geolocation returns the player's location once it has been fetched.
func (p *Player) Geolocation() (geo.Location, bool) {
	if p.location == nil {
		return geo.Location{}, false
	}
	return *p.location, true
}

// SetGeolocation records the fetched location.
func (p *Player) SetGeolocation(loc geo.Location) {
	p.location = &loc
}

// Tag returns "name #id".
func (p *Player) Tag() string {
	return fmt.Sprintf("%s #%d", p.Name, p.ID)
}

// Mention returns "@name" with spaces replaced by underscores.
func (p *Player) Mention() string {
	return "@" + strings.ReplaceAll(p.Name, " ", "_")
}
