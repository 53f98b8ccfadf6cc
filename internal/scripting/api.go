package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// registerAPI installs the global `room` table.
//
//	room.send(text [, to])   announcement; to = 0 or absent broadcasts
//	room.reply(id, text)     private announcement
//	room.kick(id, reason)
//	room.ban(id, reason)
//	room.prefix()            command prefix
//	room.players()           array of player tables
//	room.log(text)           info log tagged with the module name
func (s *script) registerAPI() {
	L := s.L
	api := L.NewTable()
	api.RawSetString("send", L.NewFunction(func(L *lua.LState) int {
		s.room.Send(native.Message{Text: L.CheckString(1), To: L.OptInt(2, 0)})
		return 0
	}))
	api.RawSetString("reply", L.NewFunction(func(L *lua.LState) int {
		if p := s.room.Players().Get(L.CheckInt(1)); p != nil {
			p.Reply(native.Message{Text: L.CheckString(2)})
		}
		return 0
	}))
	api.RawSetString("kick", L.NewFunction(func(L *lua.LState) int {
		if p := s.room.Players().Get(L.CheckInt(1)); p != nil {
			p.Kick(L.OptString(2, ""))
		}
		return 0
	}))
	api.RawSetString("ban", L.NewFunction(func(L *lua.LState) int {
		if p := s.room.Players().Get(L.CheckInt(1)); p != nil {
			p.Ban(L.OptString(2, ""))
		}
		return 0
	}))
	api.RawSetString("prefix", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(s.room.Prefix()))
		return 1
	}))
	api.RawSetString("players", L.NewFunction(func(L *lua.LState) int {
		list := L.NewTable()
		for _, p := range s.room.Players().Values() {
			list.Append(s.playerTable(p))
		}
		L.Push(list)
		return 1
	}))
	api.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		s.logger.Info(L.CheckString(1), zap.String("module", s.name))
		return 0
	}))
	L.SetGlobal("room", api)
}

// playerTable snapshots p for a script; nil becomes nil.
func (s *script) playerTable(p *player.Player) lua.LValue {
	if p == nil {
		return lua.LNil
	}
	t := s.L.NewTable()
	t.RawSetString("id", lua.LNumber(p.ID))
	t.RawSetString("name", lua.LString(p.Name))
	t.RawSetString("auth", lua.LString(p.Auth))
	t.RawSetString("team", lua.LNumber(p.Team()))
	t.RawSetString("admin", lua.LBool(p.Admin()))
	return t
}
