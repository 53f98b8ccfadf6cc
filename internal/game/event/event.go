// Package event provides the room's typed listener bus and the custom event
// emitter shared by modules.
package event

import (
	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// ChatResult tells the room whether to relay a chat message.
type ChatResult int

const (
	// Relay lets the host broadcast the message.
	Relay ChatResult = iota
	// Suppress stops the host from broadcasting the message.
	Suppress
)

// Listeners holds optional callbacks, one per room event. A nil field is
// not subscribed. by is nil when the action was not taken by a player.
type Listeners struct {
	PlayerJoin             func(p *player.Player)
	PlayerLeave            func(p *player.Player)
	TeamVictory            func(scores native.Scores)
	PlayerChat             func(p *player.Player, message string) ChatResult
	PlayerBallKick         func(p *player.Player)
	TeamGoal               func(team native.TeamID)
	GameStart              func(by *player.Player)
	GameStop               func(by *player.Player)
	PlayerAdminChange      func(changed, by *player.Player)
	PlayerTeamChange       func(changed, by *player.Player)
	PlayerKicked           func(kicked *player.Player, reason string, by *player.Player)
	PlayerBanned           func(banned *player.Player, reason string, by *player.Player)
	GameTick               func()
	GamePause              func(by *player.Player)
	GameUnpause            func(by *player.Player)
	PositionsReset         func()
	PlayerActivity         func(p *player.Player)
	StadiumChange          func(name string, by *player.Player)
	RoomLink               func(url string)
	KickRateLimitSet       func(min, rate, burst int, by *player.Player)
	PlayerRunCommand       func(p *player.Player, cmd *command.Command)
	PlayerGeoLocationFetch func(p *player.Player)
}

// Tier orders listener groups. Module listeners run before room listeners.
type Tier int

const (
	ModuleTier Tier = iota
	RoomTier
)

// Subscription identifies one registration. Unsubscribe compares by pointer.
type Subscription struct {
	tier Tier
	name string
}

type entry struct {
	sub       *Subscription
	listeners Listeners
}

// Bus dispatches room events to two ordered tiers of listeners.
// Not safe for concurrent use.
type Bus struct {
	tiers [2][]entry
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers l in tier.
//
// Postcondition: Returns a handle that removes exactly this registration.
func (b *Bus) Subscribe(tier Tier, l Listeners) *Subscription {
	sub := &Subscription{tier: tier}
	b.tiers[tier] = append(b.tiers[tier], entry{sub: sub, listeners: l})
	return sub
}

// Unsubscribe removes the registration sub.
//
// Postcondition: Returns false if sub was not registered.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	entries := b.tiers[sub.tier]
	for i, e := range entries {
		if e.sub == sub {
			b.tiers[sub.tier] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registrations in tier.
func (b *Bus) Len(tier Tier) int {
	return len(b.tiers[tier])
}

// Each calls fn for every registration, module tier first, each tier in
// registration order. Registrations added or removed by fn take effect on the
// next Each.
func (b *Bus) Each(fn func(l *Listeners)) {
	for _, tier := range b.tiers {
		snapshot := append([]entry(nil), tier...)
		for i := range snapshot {
			fn(&snapshot[i].listeners)
		}
	}
}

// Tier calls fn for every registration of one tier.
func (b *Bus) Tier(tier Tier, fn func(l *Listeners)) {
	snapshot := append([]entry(nil), b.tiers[tier]...)
	for i := range snapshot {
		fn(&snapshot[i].listeners)
	}
}
