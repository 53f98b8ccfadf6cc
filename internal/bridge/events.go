package bridge

import (
	"fmt"

	"github.com/cory-johannsen/haxroom/internal/native"
)

// eventFunc delivers one decoded event frame to h. The returned value, if
// any, is sent back to the page as the event's result.
type eventFunc func(h native.Handler, f Frame) (any, error)

func playerEvent(fn func(native.Handler, native.PlayerObject)) eventFunc {
	return func(h native.Handler, f Frame) (any, error) {
		var p native.PlayerObject
		if err := f.Decode(&p); err != nil {
			return nil, err
		}
		fn(h, p)
		return nil, nil
	}
}

func byEvent(fn func(native.Handler, *native.PlayerObject)) eventFunc {
	return func(h native.Handler, f Frame) (any, error) {
		var by *native.PlayerObject
		if err := f.Decode(&by); err != nil {
			return nil, err
		}
		fn(h, by)
		return nil, nil
	}
}

func changeEvent(fn func(native.Handler, native.PlayerObject, *native.PlayerObject)) eventFunc {
	return func(h native.Handler, f Frame) (any, error) {
		var (
			changed native.PlayerObject
			by      *native.PlayerObject
		)
		if err := f.Decode(&changed, &by); err != nil {
			return nil, err
		}
		fn(h, changed, by)
		return nil, nil
	}
}

func bare(fn func(native.Handler)) eventFunc {
	return func(h native.Handler, _ Frame) (any, error) {
		fn(h)
		return nil, nil
	}
}

// events maps the page's event names to handler methods.
var events = map[string]eventFunc{
	"playerJoin":     playerEvent(native.Handler.PlayerJoin),
	"playerLeave":    playerEvent(native.Handler.PlayerLeave),
	"playerBallKick": playerEvent(native.Handler.PlayerBallKick),
	"playerActivity": playerEvent(native.Handler.PlayerActivity),

	"gameStart":   byEvent(native.Handler.GameStart),
	"gameStop":    byEvent(native.Handler.GameStop),
	"gamePause":   byEvent(native.Handler.GamePause),
	"gameUnpause": byEvent(native.Handler.GameUnpause),

	"playerAdminChange": changeEvent(native.Handler.PlayerAdminChange),
	"playerTeamChange":  changeEvent(native.Handler.PlayerTeamChange),

	"gameTick":       bare(native.Handler.GameTick),
	"positionsReset": bare(native.Handler.PositionsReset),

	"playerChat": func(h native.Handler, f Frame) (any, error) {
		var (
			p       native.PlayerObject
			message string
		)
		if err := f.Decode(&p, &message); err != nil {
			return nil, err
		}
		return h.PlayerChat(p, message), nil
	},
	"teamVictory": func(h native.Handler, f Frame) (any, error) {
		var s native.Scores
		if err := f.Decode(&s); err != nil {
			return nil, err
		}
		h.TeamVictory(s)
		return nil, nil
	},
	"teamGoal": func(h native.Handler, f Frame) (any, error) {
		var team native.TeamID
		if err := f.Decode(&team); err != nil {
			return nil, err
		}
		h.TeamGoal(team)
		return nil, nil
	},
	"playerKicked": func(h native.Handler, f Frame) (any, error) {
		var (
			kicked native.PlayerObject
			reason string
			ban    bool
			by     *native.PlayerObject
		)
		if err := f.Decode(&kicked, &reason, &ban, &by); err != nil {
			return nil, err
		}
		h.PlayerKicked(kicked, reason, ban, by)
		return nil, nil
	},
	"stadiumChange": func(h native.Handler, f Frame) (any, error) {
		var (
			name string
			by   *native.PlayerObject
		)
		if err := f.Decode(&name, &by); err != nil {
			return nil, err
		}
		h.StadiumChange(name, by)
		return nil, nil
	},
	"roomLink": func(h native.Handler, f Frame) (any, error) {
		var url string
		if err := f.Decode(&url); err != nil {
			return nil, err
		}
		h.RoomLink(url)
		return nil, nil
	},
	"kickRateLimitSet": func(h native.Handler, f Frame) (any, error) {
		var (
			min, rate, burst int
			by               *native.PlayerObject
		)
		if err := f.Decode(&min, &rate, &burst, &by); err != nil {
			return nil, err
		}
		h.KickRateLimitSet(min, rate, burst, by)
		return nil, nil
	},
}

func deliver(h native.Handler, f Frame) (any, error) {
	fn, ok := events[f.Name]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", f.Name)
	}
	return fn(h, f)
}
