package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// Loader turns Lua scripts into modules. It owns every state it creates.
//
// Scripts are only entered from room events and commands, so one state is
// never used by two goroutines at once.
type Loader struct {
	logger    *zap.Logger
	instLimit int

	mu     sync.Mutex
	states []*lua.LState
}

// NewLoader creates a Loader whose scripts may run instLimit opcodes per call.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
func NewLoader(logger *zap.Logger, instLimit int) *Loader {
	return &Loader{logger: logger, instLimit: instLimit}
}

// Close closes every Lua state created by the Loader.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, L := range l.states {
		L.Close()
	}
	l.states = nil
}

// LoadDir loads every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns one module per file, or the first load error.
func (l *Loader) LoadDir(dir string, r module.Room) ([]*module.Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading module dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	mods := make([]*module.Module, 0, len(luaFiles))
	for _, path := range luaFiles {
		m, err := l.LoadFile(path, r)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// LoadFile loads one script. A module without a name is named after the
// file without its extension.
func (l *Loader) LoadFile(path string, r module.Room) (*module.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading %q: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := l.LoadString(name, string(src), r)
	if err != nil {
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	return m, nil
}

// LoadString runs src in a fresh sandbox and builds a module from the table
// it returns, or from its global `module` table.
//
// Postcondition: Returns a valid module or an error; on error the state is closed.
func (l *Loader) LoadString(name, src string, r module.Room) (*module.Module, error) {
	s := &script{
		name:   name,
		L:      NewSandboxedState(l.instLimit),
		room:   r,
		logger: l.logger,
		limit:  l.instLimit,
	}
	m, err := s.load(src)
	if err != nil {
		s.L.Close()
		return nil, err
	}
	l.mu.Lock()
	l.states = append(l.states, s.L)
	l.mu.Unlock()
	return m, nil
}

type script struct {
	name   string
	L      *lua.LState
	room   module.Room
	logger *zap.Logger
	limit  int
}

func (s *script) load(src string) (*module.Module, error) {
	s.registerAPI()

	fn, err := s.L.LoadString(src)
	if err != nil {
		return nil, err
	}
	ret, err := s.call(fn, 1)
	if err != nil {
		return nil, err
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		tbl, ok = s.L.GetGlobal("module").(*lua.LTable)
	}
	if !ok {
		return nil, fmt.Errorf("script %q defines no module table", s.name)
	}

	b := module.New(stringField(tbl, "name", s.name))
	cmds, err := s.commands(tbl)
	if err != nil {
		return nil, err
	}
	for _, c := range cmds {
		b.Command(c)
	}
	if events, ok := tbl.RawGetString("events").(*lua.LTable); ok {
		b.On(s.listeners(events))
	}
	return b.Build()
}

// call runs fn with a fresh instruction budget.
func (s *script) call(fn *lua.LFunction, nret int, args ...lua.LValue) (lua.LValue, error) {
	cancel := ResetBudget(s.L, s.limit)
	defer cancel()
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	if nret == 0 {
		return lua.LNil, nil
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

func (s *script) commands(tbl *lua.LTable) ([]*command.Command, error) {
	list, ok := tbl.RawGetString("commands").(*lua.LTable)
	if !ok {
		return nil, nil
	}
	var cmds []*command.Command
	var err error
	list.ForEach(func(_, v lua.LValue) {
		if err != nil {
			return
		}
		def, ok := v.(*lua.LTable)
		if !ok {
			err = fmt.Errorf("script %q: command entry is %s, not a table", s.name, v.Type())
			return
		}
		run, ok := def.RawGetString("run").(*lua.LFunction)
		if !ok {
			err = fmt.Errorf("script %q: command %q has no run function", s.name, stringField(def, "name", ""))
			return
		}
		cmds = append(cmds, &command.Command{
			Name:          stringField(def, "name", ""),
			Aliases:       stringList(def, "aliases"),
			Desc:          stringField(def, "desc", ""),
			Usage:         stringField(def, "usage", ""),
			Category:      stringField(def, "category", command.CategoryGeneral),
			Roles:         stringList(def, "roles"),
			DeleteMessage: lua.LVAsBool(def.RawGetString("delete_message")),
			Func:          s.commandFunc(run),
		})
	})
	return cmds, err
}

func (s *script) commandFunc(run *lua.LFunction) command.Func {
	return func(inv *command.Invocation) error {
		ctx := s.L.NewTable()
		ctx.RawSetString("player", s.playerTable(inv.Player))
		ctx.RawSetString("message", lua.LString(inv.Message))
		args := s.L.NewTable()
		for _, a := range inv.Args {
			args.Append(lua.LString(a.String()))
		}
		ctx.RawSetString("args", args)
		_, err := s.call(run, 0, ctx)
		return err
	}
}

func (s *script) fire(name string, fn *lua.LFunction, nret int, args ...lua.LValue) lua.LValue {
	ret, err := s.call(fn, nret, args...)
	if err != nil {
		s.logger.Warn("scripting: Lua runtime error",
			zap.String("module", s.name),
			zap.String("event", name),
			zap.Error(err),
		)
		return lua.LNil
	}
	return ret
}

func (s *script) listeners(events *lua.LTable) event.Listeners {
	var l event.Listeners
	fn := func(name string) *lua.LFunction {
		f, _ := events.RawGetString(name).(*lua.LFunction)
		return f
	}
	if f := fn("player_join"); f != nil {
		l.PlayerJoin = func(p *player.Player) { s.fire("player_join", f, 0, s.playerTable(p)) }
	}
	if f := fn("player_leave"); f != nil {
		l.PlayerLeave = func(p *player.Player) { s.fire("player_leave", f, 0, s.playerTable(p)) }
	}
	if f := fn("player_chat"); f != nil {
		l.PlayerChat = func(p *player.Player, message string) event.ChatResult {
			if s.fire("player_chat", f, 1, s.playerTable(p), lua.LString(message)) == lua.LFalse {
				return event.Suppress
			}
			return event.Relay
		}
	}
	if f := fn("team_goal"); f != nil {
		l.TeamGoal = func(team native.TeamID) { s.fire("team_goal", f, 0, lua.LNumber(team)) }
	}
	if f := fn("game_start"); f != nil {
		l.GameStart = func(by *player.Player) { s.fire("game_start", f, 0, s.playerTable(by)) }
	}
	if f := fn("game_stop"); f != nil {
		l.GameStop = func(by *player.Player) { s.fire("game_stop", f, 0, s.playerTable(by)) }
	}
	if f := fn("game_tick"); f != nil {
		l.GameTick = func() { s.fire("game_tick", f, 0) }
	}
	return l
}

func stringField(t *lua.LTable, key, def string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return def
}

func stringList(t *lua.LTable, key string) []string {
	list, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	list.ForEach(func(_, v lua.LValue) {
		if str, ok := v.(lua.LString); ok {
			out = append(out, string(str))
		}
	})
	return out
}
