// Package room is the aggregate root over one native host session. It wraps
// host events into players and discs, runs the chat command pipeline, and
// fans events out to module and room listeners.
//
// The host delivers events on one goroutine and Room holds its lock for the
// duration of each. Every other method must be called from inside an event
// callback or through Do.
package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/disc"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// Default rejection messages.
const (
	DefaultNoPermissionMessage = "You're not allowed to use this command!"
	DefaultCooldownMessage     = "Don't type commands too fast!"
)

// Config is the room's creation settings.
type Config struct {
	native.RoomConfig
	// Prefix marks a chat message as a command. Defaults to "!".
	Prefix string
	// CommandsCooldown is copied to every joining player.
	CommandsCooldown time.Duration
	// NoPermissionMessage and CooldownMessage override the default rejection texts.
	NoPermissionMessage string
	CooldownMessage     string
}

// Option customizes a Room.
type Option func(*Room)

// WithHistory records every join in store.
func WithHistory(store history.Store) Option {
	return func(r *Room) { r.history = store }
}

// WithLocator geolocates every joining player.
func WithLocator(l geo.Lookup) Option {
	return func(r *Room) { r.locator = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Room) { r.now = now }
}

// WithLookupTimeout bounds each background geolocation and history write.
func WithLookupTimeout(d time.Duration) Option {
	return func(r *Room) { r.lookupTimeout = d }
}

type attached struct {
	mod    *module.Module
	sub    *event.Subscription
	custom []*event.Subscription
}

// Room wraps one native host session.
type Room struct {
	mu sync.Mutex

	host      native.Host
	logger    *zap.Logger
	cfg       Config
	sessionID uuid.UUID

	players  *player.List
	discs    []*disc.Disc
	commands *command.Registry
	bus      *event.Bus
	emitter  *event.Emitter
	modules  []*attached
	state    *settings.Settings

	password *string
	logging  bool
	paused   bool
	pauses   []*PauseHold

	noPermission native.Message
	cooldown     native.Message

	history       history.Store
	locator       geo.Lookup
	lookupTimeout time.Duration
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func rejection(text string) native.Message {
	c := color.Red
	return native.Message{Text: text, Color: &c, Style: native.StyleBold, Sound: native.SoundNotification}
}

// New wraps host and binds the room as its event handler.
//
// Precondition: host and logger must be non-nil.
// Postcondition: Returns a Room with logging enabled and an empty registry.
func New(host native.Host, cfg Config, logger *zap.Logger, opts ...Option) *Room {
	if !command.ValidPrefix(cfg.Prefix) {
		if cfg.Prefix != "" {
			logger.Warn("ignoring invalid command prefix", zap.String("prefix", cfg.Prefix))
		}
		cfg.Prefix = command.DefaultPrefix
	}
	if cfg.NoPermissionMessage == "" {
		cfg.NoPermissionMessage = DefaultNoPermissionMessage
	}
	if cfg.CooldownMessage == "" {
		cfg.CooldownMessage = DefaultCooldownMessage
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		host:          host,
		logger:        logger,
		cfg:           cfg,
		sessionID:     uuid.New(),
		players:       player.NewList(),
		commands:      command.NewRegistry(cfg.Prefix),
		bus:           event.NewBus(),
		emitter:       event.NewEmitter(),
		state:         settings.New(),
		logging:       true,
		noPermission:  rejection(cfg.NoPermissionMessage),
		cooldown:      rejection(cfg.CooldownMessage),
		lookupTimeout: 10 * time.Second,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}
	if cfg.Password != "" {
		pw := cfg.Password
		r.password = &pw
	}
	for _, opt := range opts {
		opt(r)
	}
	host.Bind(r)
	logger.Info("room created",
		zap.String("name", cfg.Name),
		zap.Stringer("session", r.sessionID),
		zap.Int("max_players", cfg.MaxPlayers),
	)
	return r
}

// Do runs fn under the room lock. Use it from goroutines other than the
// host's event loop.
func (r *Room) Do(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// Close stops background lookups and waits for them to finish.
func (r *Room) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Room) Name() string { return r.cfg.Name }
func (r *Room) PlayerName() string { return r.cfg.PlayerName }
func (r *Room) MaxPlayers() int { return r.cfg.MaxPlayers }
func (r *Room) Geo() *native.GeoOverride { return r.cfg.Geo }
func (r *Room) Token() string { return r.cfg.Token }
func (r *Room) NoPlayer() bool { return r.cfg.NoPlayer }
func (r *Room) SessionID() uuid.UUID { return r.sessionID }
func (r *Room) Native() native.Host { return r.host }
func (r *Room) Players() *player.List { return r.players }
func (r *Room) Commands() *command.Registry { return r.commands }
func (r *Room) State() *settings.Settings { return r.state }
func (r *Room) Logger() *zap.Logger { return r.logger }
func (r *Room) Prefix() string { return r.commands.Prefix() }

// SetPrefix replaces the command prefix.
//
// Postcondition: Returns an error wrapping command.ErrInvalidPrefix, leaving
// the prefix unchanged, unless p is a single character.
func (r *Room) SetPrefix(p string) error { return r.commands.SetPrefix(p) }

func (r *Room) Logging() bool { return r.logging }
func (r *Room) SetLogging(enabled bool) { r.logging = enabled }
func (r *Room) Paused() bool { return r.paused }
func (r *Room) Scores() *native.Scores { return r.host.Scores() }
func (r *Room) DiscCount() int { return r.host.DiscCount() }
func (r *Room) IsGameInProgress() bool { return r.host.Scores() != nil }
func (r *Room) BallPosition() *native.Position { return r.host.BallPosition() }

// Discs returns the discs of the game in progress, empty when stopped.
func (r *Room) Discs() []*disc.Disc {
	return append([]*disc.Disc(nil), r.discs...)
}

// Ball returns disc 0, or nil when no game is in progress.
func (r *Room) Ball() *disc.Disc {
	if len(r.discs) == 0 {
		return nil
	}
	return r.discs[0]
}

// Password returns the room password, nil when none is set.
func (r *Room) Password() *string {
	if r.password == nil {
		return nil
	}
	pw := *r.password
	return &pw
}

// SetNoPermissionMessage replaces the reply sent when a command is denied.
func (r *Room) SetNoPermissionMessage(msg native.Message) { r.noPermission = msg }

// SetCooldownMessage replaces the reply sent when a player types commands too fast.
func (r *Room) SetCooldownMessage(msg native.Message) { r.cooldown = msg }

// Command registers c, evicting any command that shares a name or alias.
//
// Postcondition: Returns an error, leaving the registry unchanged, for a nil
// command or one without a name or func.
func (r *Room) Command(c *command.Command) error {
	switch {
	case c == nil:
		return errors.New("room: nil command")
	case c.Name == "":
		return errors.New("room: command has no name")
	case c.Func == nil:
		return fmt.Errorf("room: command %q has no func", c.Name)
	}
	r.commands.Add(c)
	return nil
}

// RemoveCommand deletes the command named name.
func (r *Room) RemoveCommand(name string) bool { return r.commands.Remove(name) }

// On subscribes room-level listeners. They run after every module's.
func (r *Room) On(l event.Listeners) *event.Subscription {
	return r.bus.Subscribe(event.RoomTier, l)
}

// Off removes a subscription made with On.
func (r *Room) Off(sub *event.Subscription) bool { return r.bus.Unsubscribe(sub) }

// OnCustom subscribes fn to the custom event name.
func (r *Room) OnCustom(name string, fn func(args ...any)) *event.Subscription {
	return r.emitter.On(name, fn)
}

// OffCustom removes a subscription made with OnCustom.
func (r *Room) OffCustom(sub *event.Subscription) bool { return r.emitter.Off(sub) }

// Emit fires the custom event name.
func (r *Room) Emit(name string, args ...any) {
	r.emitter.Emit(name, args...)
}

// Send delivers an announcement. A message addressed to a player is sent
// only if that player is present and can read chat; a broadcast is sent to
// each player that can read chat.
func (r *Room) Send(msg native.Message) {
	if msg.To != 0 {
		p := r.players.Get(msg.To)
		if p == nil || !p.CanReadChat {
			return
		}
		r.host.SendAnnouncement(msg.Text, msg.To, msg.Color, msg.Style, msg.Sound)
		r.logDirect(msg, p)
		return
	}
	for _, p := range r.players.Values() {
		if !p.CanReadChat {
			continue
		}
		r.host.SendAnnouncement(msg.Text, p.ID, msg.Color, msg.Style, msg.Sound)
	}
	r.logAnnouncement(msg)
}

// Chat sends a plain chat line as the host player. to == 0 sends to every
// player that can read chat. These lines are not logged.
func (r *Room) Chat(message string, to int) {
	if to != 0 {
		if p := r.players.Get(to); p != nil && p.CanReadChat {
			r.host.SendChat(message, to)
		}
		return
	}
	for _, p := range r.players.Values() {
		if p.CanReadChat {
			r.host.SendChat(message, p.ID)
		}
	}
}

var (
	_ native.Handler = (*Room)(nil)
	_ module.Room    = (*Room)(nil)
)
