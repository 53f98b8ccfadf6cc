package room_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/game/role"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/native"
	"github.com/cory-johannsen/haxroom/internal/room"
	"github.com/cory-johannsen/haxroom/internal/testutil"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newRoom(t *testing.T, cfg room.Config, opts ...room.Option) (*room.Room, *testutil.FakeHost, *observer.ObservedLogs, *clock) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	host := testutil.NewFakeHost()
	clk := &clock{now: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)}
	opts = append([]room.Option{room.WithClock(clk.Now)}, opts...)
	if cfg.Name == "" {
		cfg.Name = "test room"
	}
	r := room.New(host, cfg, zap.New(core), opts...)
	t.Cleanup(r.Close)
	return r, host, logs, clk
}

func TestNew_Defaults(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{RoomConfig: native.RoomConfig{Name: "pub", MaxPlayers: 12, NoPlayer: true}})
	assert.Equal(t, "pub", r.Name())
	assert.Equal(t, 12, r.MaxPlayers())
	assert.True(t, r.NoPlayer())
	assert.Equal(t, "!", r.Prefix())
	assert.True(t, r.Logging())
	assert.Nil(t, r.Password())
	assert.NotEqual(t, uuid.Nil, r.SessionID())
	assert.Same(t, r, host.Handler())
}

func TestChat_NonAdminRejectedWithoutCooldownUpdate(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var ran bool
	r.Command(&command.Command{
		Name:  "mute",
		Roles: []string{role.AdminRole},
		Func:  func(*command.Invocation) error { ran = true; return nil },
	})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	relayed := host.Chat(1, "!mute bob")

	assert.False(t, relayed)
	assert.False(t, ran)
	replies := host.AnnouncementsTo(1)
	require.Len(t, replies, 1)
	assert.Equal(t, room.DefaultNoPermissionMessage, replies[0].Text)
	assert.True(t, r.Players().Get(1).LastCommand().IsZero())
}

func TestChat_AdminDeleteMessageRunsWithoutRelay(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var args []string
	r.Command(&command.Command{
		Name:          "mute",
		Roles:         []string{role.AdminRole},
		DeleteMessage: true,
		Func: func(inv *command.Invocation) error {
			for _, a := range inv.Args {
				args = append(args, a.String())
			}
			return nil
		},
	})
	host.Join(native.PlayerObject{ID: 1, Name: "alice", Admin: true})

	assert.False(t, host.Chat(1, "!mute bob"))
	assert.False(t, host.Chat(1, "!MUTE carol"), "zero cooldown never blocks")
	assert.Equal(t, []string{"bob", "carol"}, args)
	assert.Empty(t, host.AnnouncementsTo(1))
}

func TestChat_CooldownRejectsSecondCommand(t *testing.T) {
	r, host, _, clk := newRoom(t, room.Config{CommandsCooldown: 5 * time.Second})
	var runs int
	r.Command(&command.Command{Name: "afk", Func: func(*command.Invocation) error { runs++; return nil }})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	assert.True(t, host.Chat(1, "!afk"))
	clk.now = clk.now.Add(2 * time.Second)
	assert.False(t, host.Chat(1, "!afk"))
	assert.Equal(t, 1, runs)
	replies := host.AnnouncementsTo(1)
	require.Len(t, replies, 1)
	assert.Equal(t, room.DefaultCooldownMessage, replies[0].Text)

	clk.now = clk.now.Add(4 * time.Second)
	assert.True(t, host.Chat(1, "!afk"))
	assert.Equal(t, 2, runs)
}

func TestChat_MixedCaseCommandName(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var runs int
	require.NoError(t, r.Command(&command.Command{
		Name:          "AFK",
		Aliases:       []string{"Away"},
		DeleteMessage: true,
		Func:          func(*command.Invocation) error { runs++; return nil },
	}))
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	assert.False(t, host.Chat(1, "!afk"))
	assert.False(t, host.Chat(1, "!AFK"))
	assert.False(t, host.Chat(1, "!away"))
	assert.Equal(t, 3, runs)
}

func TestSetPrefix_RejectsMultiCharacter(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var runs int
	require.NoError(t, r.Command(&command.Command{Name: "x", Func: func(*command.Invocation) error { runs++; return nil }}))
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	require.ErrorIs(t, r.SetPrefix("!!"), command.ErrInvalidPrefix)
	assert.Equal(t, "!", r.Prefix())
	require.NoError(t, r.SetPrefix("."))
	host.Chat(1, ".x")
	host.Chat(1, "!x")
	assert.Equal(t, 1, runs)
}

func TestNew_InvalidPrefixFallsBack(t *testing.T) {
	r, _, logs, _ := newRoom(t, room.Config{Prefix: "!!"})
	assert.Equal(t, command.DefaultPrefix, r.Prefix())
	assert.Equal(t, 1, logs.FilterMessage("ignoring invalid command prefix").Len())
}

func TestCommand_RejectsIncompleteCommands(t *testing.T) {
	r, _, _, _ := newRoom(t, room.Config{})
	before := r.Commands().Len()

	assert.NotPanics(t, func() { assert.Error(t, r.Command(nil)) })
	assert.Error(t, r.Command(&command.Command{Func: func(*command.Invocation) error { return nil }}))
	assert.Error(t, r.Command(&command.Command{Name: "nofunc"}))
	assert.Equal(t, before, r.Commands().Len())
}

func TestChat_DeferredCommandRunsAfterListeners(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var order []string
	r.Command(&command.Command{Name: "hi", Func: func(*command.Invocation) error {
		order = append(order, "command")
		return nil
	}})
	r.On(event.Listeners{PlayerChat: func(*player.Player, string) event.ChatResult {
		order = append(order, "room")
		return event.Relay
	}})
	m, err := module.New("first").On(event.Listeners{PlayerChat: func(*player.Player, string) event.ChatResult {
		order = append(order, "module")
		return event.Suppress
	}}).Build()
	require.NoError(t, err)
	require.NoError(t, r.Attach(m))
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	assert.False(t, host.Chat(1, "!hi"), "module suppression stops the relay")
	assert.Equal(t, []string{"module", "room", "command"}, order)
}

func TestChat_PlainChatRelayedAndLogged(t *testing.T) {
	_, host, logs, _ := newRoom(t, room.Config{})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})
	host.Join(native.PlayerObject{ID: 2, Name: "root", Admin: true})

	assert.True(t, host.Chat(1, "hello"))
	assert.True(t, host.Chat(1, "!unknown command"))
	assert.True(t, host.Chat(2, "gg"))

	chats := logs.FilterField(zap.String("kind", "chat")).All()
	require.Len(t, chats, 2)
	assert.Equal(t, "hello", chats[0].Message)
	admin := logs.FilterField(zap.String("kind", "admin")).All()
	require.Len(t, admin, 1)
	assert.Equal(t, "gg", admin[0].Message)
}

func TestChat_LoggingDisabled(t *testing.T) {
	r, host, logs, _ := newRoom(t, room.Config{})
	r.SetLogging(false)
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})
	host.Chat(1, "quiet")
	assert.Zero(t, logs.FilterField(zap.String("kind", "chat")).Len())
}

func TestChat_CannotUseCommands(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var ran bool
	r.Command(&command.Command{Name: "x", Func: func(*command.Invocation) error { ran = true; return nil }})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})
	r.Players().Get(1).CanUseCommands = false

	assert.True(t, host.Chat(1, "!x"))
	assert.False(t, ran)
}

func TestChat_CommandErrorsAreIsolated(t *testing.T) {
	r, host, logs, _ := newRoom(t, room.Config{})
	r.Command(&command.Command{Name: "boom", Func: func(*command.Invocation) error { panic("kaboom") }})
	r.Command(&command.Command{Name: "fail", Func: func(*command.Invocation) error { return errors.New("nope") }})
	var ran []string
	r.On(event.Listeners{PlayerRunCommand: func(_ *player.Player, c *command.Command) { ran = append(ran, c.Name) }})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	assert.True(t, host.Chat(1, "!boom"))
	assert.True(t, host.Chat(1, "!fail"))
	assert.Equal(t, []string{"boom", "fail"}, ran)
	failures := logs.FilterMessage("command failed").All()
	require.Len(t, failures, 2)
	assert.Equal(t, "alice #1", failures[0].ContextMap()["player"])
}

func TestChat_ListenerPanicDoesNotStopOthers(t *testing.T) {
	r, host, logs, _ := newRoom(t, room.Config{})
	var reached bool
	r.On(event.Listeners{PlayerChat: func(*player.Player, string) event.ChatResult { panic("bad listener") }})
	r.On(event.Listeners{PlayerChat: func(*player.Player, string) event.ChatResult { reached = true; return event.Relay }})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	assert.True(t, host.Chat(1, "hi"))
	assert.True(t, reached)
	assert.Equal(t, 1, logs.FilterMessage("listener panicked").Len())
}

func TestChat_InvocationCarriesRoom(t *testing.T) {
	r, host, _, clk := newRoom(t, room.Config{})
	var got *command.Invocation
	r.Command(&command.Command{Name: "echo", Aliases: []string{"e"}, Func: func(inv *command.Invocation) error {
		got = inv
		inv.Player.Reply(native.Message{Text: "echo " + inv.Args[0].String()})
		return nil
	}})
	host.Join(native.PlayerObject{ID: 1, Name: "alice"})

	host.Chat(1, "!e 42")
	require.NotNil(t, got)
	assert.Equal(t, "!e 42", got.Message)
	assert.Equal(t, clk.now, got.At)
	assert.True(t, got.Args[0].IsNumber())
	assert.Equal(t, "!", got.Room.Prefix())
	assert.Equal(t, "echo 42", host.AnnouncementsTo(1)[0].Text)
}

func TestDetach_KeepsRoomCommandWithSameName(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var who string
	m, err := module.New("stats").
		Command(&command.Command{Name: "rank", Func: func(*command.Invocation) error { who = "module"; return nil }}).
		Build()
	require.NoError(t, err)
	require.NoError(t, r.Attach(m))
	r.Command(&command.Command{Name: "rank", Func: func(*command.Invocation) error { who = "room"; return nil }})

	assert.True(t, r.Detach("stats"))
	assert.False(t, r.Detach("stats"))
	assert.Empty(t, r.Modules())

	host.Join(native.PlayerObject{ID: 1, Name: "alice"})
	host.Chat(1, "!rank")
	assert.Equal(t, "room", who)
}

func TestDetach_RemovesOwnCommandsAndListeners(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var ticks, custom int
	m, err := module.New("ticker").
		Command(&command.Command{Name: "tick", Func: func(*command.Invocation) error { return nil }}).
		On(event.Listeners{GameTick: func() { ticks++ }}).
		OnCustom("ping", func(...any) { custom++ }).
		Build()
	require.NoError(t, err)
	require.NoError(t, r.Attach(m))

	host.Handler().GameTick()
	r.Emit("ping")
	require.True(t, r.Detach("ticker"))
	host.Handler().GameTick()
	r.Emit("ping")

	assert.Equal(t, 1, ticks)
	assert.Equal(t, 1, custom)
	_, ok := r.Commands().Get("tick")
	assert.False(t, ok)
}

func TestAttach_Invalid(t *testing.T) {
	r, _, _, _ := newRoom(t, room.Config{})
	assert.ErrorIs(t, r.Attach(nil), module.ErrInvalidModule)
	assert.ErrorIs(t, r.Attach(&module.Module{Name: ""}), module.ErrInvalidModule)

	require.NoError(t, r.Attach(&module.Module{Name: "a"}))
	assert.ErrorIs(t, r.Attach(&module.Module{Name: "a"}), module.ErrInvalidModule)
}

func TestUse_Factory(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	factory := func(rm module.Room, opts module.Options, tr module.Translator) (*module.Module, error) {
		greeting, _ := opts.Settings.String("greeting")
		return &module.Module{Listeners: event.Listeners{PlayerJoin: func(p *player.Player) {
			rm.Send(native.Message{Text: tr.Translate(greeting, "GREET", p.Name), To: p.ID})
		}}}, nil
	}
	greeting := settings.New()
	greeting.SetString("greeting", "Welcome, %%!")
	err := r.Use("welcome", factory, module.Options{
		Settings:     greeting,
		LanguagePack: map[string]string{"GREET": "Bem-vindo, %%!"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"welcome"}, r.Modules())

	host.Join(native.PlayerObject{ID: 4, Name: "dora"})
	replies := host.AnnouncementsTo(4)
	require.Len(t, replies, 1)
	assert.Equal(t, "Bem-vindo, dora!", replies[0].Text)

	err = r.Use("broken", func(module.Room, module.Options, module.Translator) (*module.Module, error) {
		return nil, errors.New("missing config")
	}, module.Options{})
	assert.ErrorContains(t, err, "missing config")
}

func TestSend(t *testing.T) {
	r, host, logs, _ := newRoom(t, room.Config{})
	host.Join(native.PlayerObject{ID: 1, Name: "a"})
	host.Join(native.PlayerObject{ID: 2, Name: "b"})
	r.Players().Get(2).CanReadChat = false

	r.Send(native.Message{Text: "everyone"})
	r.Send(native.Message{Text: "to b", To: 2})
	r.Send(native.Message{Text: "to ghost", To: 9})
	r.Send(native.Message{Text: "to a", To: 1})

	all := host.Announcements()
	require.Len(t, all, 2)
	assert.Equal(t, testutil.Announcement{Text: "everyone", To: 1}, all[0])
	assert.Equal(t, "to a", all[1].Text)
	assert.Equal(t, 1, logs.FilterField(zap.String("kind", "announcement")).Len())
	assert.Equal(t, 1, logs.FilterField(zap.String("kind", "direct")).Len())
}

func TestChatPassThrough(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	host.Join(native.PlayerObject{ID: 1, Name: "a"})
	host.Join(native.PlayerObject{ID: 2, Name: "b"})
	r.Players().Get(1).CanReadChat = false

	r.Chat("hello", 0)
	r.Chat("direct", 1)
	assert.Equal(t, []testutil.Chat{{Text: "hello", To: 2}}, host.Chats())
}

func TestEvents_JoinLeaveKickBan(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{CommandsCooldown: time.Second})
	var kicked, banned, left []string
	r.On(event.Listeners{
		PlayerKicked: func(p *player.Player, reason string, _ *player.Player) { kicked = append(kicked, p.Name+":"+reason) },
		PlayerBanned: func(p *player.Player, reason string, _ *player.Player) { banned = append(banned, p.Name+":"+reason) },
		PlayerLeave:  func(p *player.Player) { left = append(left, p.Name) },
	})
	host.Join(native.PlayerObject{ID: 1, Name: "a"})
	host.Join(native.PlayerObject{ID: 2, Name: "b"})
	assert.Equal(t, 2, r.Players().Len())
	assert.Equal(t, time.Second, r.Players().Get(1).CommandsCooldown)

	admin := native.PlayerObject{ID: 2, Name: "b", Admin: true}
	host.Handler().PlayerKicked(native.PlayerObject{ID: 1, Name: "a"}, "spam", false, &admin)
	host.Leave(1)
	host.Handler().PlayerKicked(native.PlayerObject{ID: 2, Name: "b"}, "cheat", true, nil)
	host.Leave(2)

	assert.Equal(t, []string{"a:spam"}, kicked)
	assert.Equal(t, []string{"b:cheat"}, banned)
	assert.Equal(t, []string{"a", "b"}, left)
	assert.Equal(t, 0, r.Players().Len())
}

func TestEvents_GameLifecycle(t *testing.T) {
	r, host, logs, _ := newRoom(t, room.Config{})
	host.AddDisc(native.DiscProperties{Radius: native.Float(15)})
	host.AddDisc(native.DiscProperties{Radius: native.Float(15)})
	host.Join(native.PlayerObject{ID: 1, Name: "a", Team: native.Red})
	host.Join(native.PlayerObject{ID: 2, Name: "b"})

	assert.Nil(t, r.Ball())
	host.StartGame()
	host.Handler().GameStart(nil)
	assert.Len(t, r.Discs(), 2, "disc count minus players on a team")
	require.NotNil(t, r.Ball())
	assert.Equal(t, 0, r.Ball().Index)
	assert.True(t, r.IsGameInProgress())

	host.Handler().GamePause(nil)
	assert.True(t, r.Paused())
	host.Handler().GameUnpause(nil)
	assert.False(t, r.Paused())
	host.Handler().GamePause(nil)

	host.Handler().TeamVictory(native.Scores{Red: 3, Blue: 1})
	host.StopGame()
	host.Handler().GameStop(nil)
	assert.Empty(t, r.Discs())
	assert.False(t, r.Paused())
	assert.False(t, r.IsGameInProgress())

	victory := logs.FilterMessage("team won the match").All()
	require.Len(t, victory, 1)
	assert.Equal(t, "Red", victory[0].ContextMap()["team"])
}

func TestEvents_ByPlayerResolution(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var gotBy *player.Player
	var gotChanged *player.Player
	r.On(event.Listeners{PlayerTeamChange: func(changed, by *player.Player) { gotChanged, gotBy = changed, by }})
	host.Join(native.PlayerObject{ID: 1, Name: "a"})
	host.Join(native.PlayerObject{ID: 2, Name: "b"})

	by := host.Player(2)
	host.Handler().PlayerTeamChange(native.PlayerObject{ID: 1, Name: "a", Team: native.Blue}, by)
	assert.Same(t, r.Players().Get(1), gotChanged)
	assert.Same(t, r.Players().Get(2), gotBy)

	host.Handler().PlayerTeamChange(native.PlayerObject{ID: 1, Name: "a"}, nil)
	assert.Nil(t, gotBy)
}

func TestCustomEvents(t *testing.T) {
	r, _, _, _ := newRoom(t, room.Config{})
	var got []any
	sub := r.OnCustom("goal", func(args ...any) { got = append(got, args...) })
	r.Emit("goal", "red")
	assert.True(t, r.OffCustom(sub))
	r.Emit("goal", "blue")
	assert.Equal(t, []any{"red"}, got)
}

func TestPassThroughs(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{RoomConfig: native.RoomConfig{Password: "secret"}})
	require.NotNil(t, r.Password())
	assert.Equal(t, "secret", *r.Password())

	r.SetPassword("new")
	assert.Equal(t, "new", *host.Password())
	r.ClearPassword()
	assert.Nil(t, r.Password())
	assert.Nil(t, host.Password())

	r.LockTeams()
	assert.True(t, host.TeamsLocked())
	r.UnlockTeams()
	assert.False(t, host.TeamsLocked())

	r.EnableCaptcha()
	assert.True(t, host.Recaptcha())
	r.DisableCaptcha()
	assert.False(t, host.Recaptcha())

	r.SetScoreLimit(3)
	r.SetTimeLimit(5)
	score, minutes := host.Limits()
	assert.Equal(t, 3, score)
	assert.Equal(t, 5, minutes)

	require.NoError(t, r.SetDefaultStadium("Big"))
	assert.Equal(t, "Big", host.Stadium())
	assert.Error(t, r.SetDefaultStadium("Moon"))
	r.SetCustomStadium(`{"name":"custom"}`)
	assert.Equal(t, `{"name":"custom"}`, host.Stadium())

	tc := native.TeamColors{Angle: 60, TextColor: 0xffffff, Colors: []color.Color{color.Red}}
	r.SetAllTeamColors(tc)
	blue, ok := host.TeamColors(native.Blue)
	require.True(t, ok)
	assert.Equal(t, 60, blue.Angle)

	r.SetKickRateLimit(2, 0, 0)
	assert.Equal(t, [3]int{2, 0, 0}, host.KickRate())

	r.Unban(4)
	r.UnbanAll()
	ids, all := host.BansCleared()
	assert.Equal(t, []int{4}, ids)
	assert.Equal(t, 1, all)

	r.StartRecording()
	assert.Equal(t, []byte("replay"), r.StopRecording())
	assert.Nil(t, r.StopRecording())

	r.Pause()
	assert.True(t, host.Paused())
	r.Unpause()
	assert.False(t, host.Paused())
}

func TestPauseHolds(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var results []bool
	cb := func(unpaused bool) { results = append(results, unpaused) }

	first := r.HoldPause(cb, 0)
	second := r.HoldPause(cb, 0)
	assert.True(t, host.Paused())
	assert.Equal(t, 2, r.Holds())

	assert.False(t, first.Release())
	assert.True(t, host.Paused())
	assert.False(t, first.Release(), "second release is a no-op")
	assert.True(t, second.Release())
	assert.False(t, host.Paused())
	assert.Equal(t, []bool{false, true}, results)
}

func TestPauseHold_AutoRelease(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	done := make(chan bool, 1)
	var h *room.PauseHold
	r.Do(func() {
		h = r.HoldPause(func(unpaused bool) { done <- unpaused }, 10*time.Millisecond)
	})

	select {
	case unpaused := <-done:
		assert.True(t, unpaused)
	case <-time.After(2 * time.Second):
		t.Fatal("hold was not released")
	}
	r.Do(func() { assert.True(t, h.Released()) })
	assert.False(t, host.Paused())
}

func TestGameStopDropsHolds(t *testing.T) {
	r, host, _, _ := newRoom(t, room.Config{})
	var called bool
	r.HoldPause(func(bool) { called = true }, 0)
	host.Handler().GameStop(nil)
	assert.Zero(t, r.Holds())
	assert.False(t, called)
}

type fakeLocator struct {
	release chan struct{}
	loc     geo.Location
	err     error
}

func (f *fakeLocator) Locate(ctx context.Context, _ string) (geo.Location, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return geo.Location{}, ctx.Err()
		}
	}
	return f.loc, f.err
}

func TestGeolocation_FetchedAndRecorded(t *testing.T) {
	store := history.NewMemoryStore()
	loc := &fakeLocator{loc: geo.Location{Country: "Argentina"}}
	r, host, _, _ := newRoom(t, room.Config{}, room.WithLocator(loc), room.WithHistory(store))
	fetched := make(chan *player.Player, 1)
	r.On(event.Listeners{PlayerGeoLocationFetch: func(p *player.Player) { fetched <- p }})

	host.Join(native.PlayerObject{ID: 1, Name: "a", Conn: "3132372E302E302E31"})

	select {
	case p := <-fetched:
		got, ok := p.Geolocation()
		require.True(t, ok)
		assert.Equal(t, "Argentina", got.Country)
	case <-time.After(2 * time.Second):
		t.Fatal("geolocation event not fired")
	}

	require.Eventually(t, func() bool {
		rec, err := store.Get(context.Background(), "127.0.0.1")
		return err == nil && len(rec.Players) == 1 && rec.Geo != nil
	}, 2*time.Second, 10*time.Millisecond)
	rec, _ := store.Get(context.Background(), "127.0.0.1")
	assert.Equal(t, r.SessionID(), rec.Players[0].Session)
}

func TestGeolocation_LateResultDropped(t *testing.T) {
	loc := &fakeLocator{release: make(chan struct{}), loc: geo.Location{Country: "Chile"}}
	r, host, logs, _ := newRoom(t, room.Config{}, room.WithLocator(loc))
	var fired bool
	r.On(event.Listeners{PlayerGeoLocationFetch: func(*player.Player) { fired = true }})

	host.Join(native.PlayerObject{ID: 1, Name: "a"})
	var first *player.Player
	r.Do(func() { first = r.Players().Get(1) })
	host.Leave(1)
	close(loc.release)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("dropping geolocation for departed player").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := first.Geolocation()
	assert.False(t, ok)
	r.Do(func() { assert.False(t, fired) })
}

func TestGeolocation_FailureLogged(t *testing.T) {
	loc := &fakeLocator{err: errors.New("rate limited")}
	r, host, logs, _ := newRoom(t, room.Config{}, room.WithLocator(loc))
	host.Join(native.PlayerObject{ID: 1, Name: "a"})

	require.Eventually(t, func() bool {
		return logs.FilterMessage("unable to fetch player's geolocation").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	r.Do(func() {
		_, ok := r.Players().Get(1).Geolocation()
		assert.False(t, ok)
	})
}
