package room

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/game/disc"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// by resolves the acting player of a host event; nil when the host passed
// none or the player is unknown.
func (r *Room) by(obj *native.PlayerObject) *player.Player {
	if obj == nil {
		return nil
	}
	return r.players.Get(obj.ID)
}

// wrap returns the tracked player for obj, or a detached wrapper when the
// room never saw the join.
func (r *Room) wrap(obj native.PlayerObject) *player.Player {
	if p := r.players.Get(obj.ID); p != nil {
		return p
	}
	return player.New(r.host, r, obj)
}

func byName(p *player.Player) zap.Field {
	if p == nil {
		return zap.Skip()
	}
	return zap.String("by", p.Tag())
}

func (r *Room) PlayerJoin(obj native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := player.New(r.host, r, obj)
	p.CommandsCooldown = r.cfg.CommandsCooldown
	r.players.Add(p)
	r.logEvent("player joined", zap.String("player", p.Tag()))
	r.lookup(p)
	r.each("PlayerJoin", func(l *event.Listeners) {
		if l.PlayerJoin != nil {
			l.PlayerJoin(p)
		}
	})
}

func (r *Room) PlayerLeave(obj native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.players.Remove(obj.ID)
	if p == nil {
		p = player.New(r.host, r, obj)
	}
	r.logEvent("player left", zap.String("player", p.Tag()))
	r.each("PlayerLeave", func(l *event.Listeners) {
		if l.PlayerLeave != nil {
			l.PlayerLeave(p)
		}
	})
}

func (r *Room) TeamVictory(scores native.Scores) {
	r.mu.Lock()
	defer r.mu.Unlock()

	winner := native.Blue
	if scores.Red > scores.Blue {
		winner = native.Red
	}
	r.logEvent("team won the match",
		zap.Stringer("team", winner),
		zap.Int("red", scores.Red),
		zap.Int("blue", scores.Blue),
	)
	r.each("TeamVictory", func(l *event.Listeners) {
		if l.TeamVictory != nil {
			l.TeamVictory(scores)
		}
	})
}

func (r *Room) PlayerChat(obj native.PlayerObject, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.wrap(obj)
	return r.dispatchChat(p, message) == event.Relay
}

func (r *Room) PlayerBallKick(obj native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.wrap(obj)
	r.each("PlayerBallKick", func(l *event.Listeners) {
		if l.PlayerBallKick != nil {
			l.PlayerBallKick(p)
		}
	})
}

func (r *Room) TeamGoal(team native.TeamID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logEvent("goal", zap.Stringer("team", team))
	r.each("TeamGoal", func(l *event.Listeners) {
		if l.TeamGoal != nil {
			l.TeamGoal(team)
		}
	})
}

func (r *Room) GameStart(byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	by := r.by(byObj)
	r.logEvent("game started", byName(by))
	r.discs = disc.Rebuild(r.host, r.host.DiscCount()-r.players.Teams().Len())
	r.each("GameStart", func(l *event.Listeners) {
		if l.GameStart != nil {
			l.GameStart(by)
		}
	})
}

func (r *Room) GameStop(byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	by := r.by(byObj)
	r.logEvent("game stopped", byName(by))
	r.discs = nil
	r.paused = false
	r.dropPauses()
	r.each("GameStop", func(l *event.Listeners) {
		if l.GameStop != nil {
			l.GameStop(by)
		}
	})
}

func (r *Room) PlayerAdminChange(changedObj native.PlayerObject, byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed, by := r.wrap(changedObj), r.by(byObj)
	if changedObj.Admin {
		r.logEvent("player was given admin rights", zap.String("player", changed.Tag()), byName(by))
	} else {
		r.logEvent("player's admin rights were taken away", zap.String("player", changed.Tag()), byName(by))
	}
	r.each("PlayerAdminChange", func(l *event.Listeners) {
		if l.PlayerAdminChange != nil {
			l.PlayerAdminChange(changed, by)
		}
	})
}

func (r *Room) PlayerTeamChange(changedObj native.PlayerObject, byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed, by := r.wrap(changedObj), r.by(byObj)
	r.logEvent("player was moved", zap.String("player", changed.Tag()), zap.Stringer("team", changedObj.Team), byName(by))
	r.each("PlayerTeamChange", func(l *event.Listeners) {
		if l.PlayerTeamChange != nil {
			l.PlayerTeamChange(changed, by)
		}
	})
}

func (r *Room) PlayerKicked(kickedObj native.PlayerObject, reason string, ban bool, byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kicked, by := r.wrap(kickedObj), r.by(byObj)
	if ban {
		r.logEvent("player was banned", zap.String("player", kicked.Tag()), zap.String("reason", reason), byName(by))
		r.each("PlayerBanned", func(l *event.Listeners) {
			if l.PlayerBanned != nil {
				l.PlayerBanned(kicked, reason, by)
			}
		})
		return
	}
	r.logEvent("player was kicked", zap.String("player", kicked.Tag()), zap.String("reason", reason), byName(by))
	r.each("PlayerKicked", func(l *event.Listeners) {
		if l.PlayerKicked != nil {
			l.PlayerKicked(kicked, reason, by)
		}
	})
}

func (r *Room) GameTick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.each("GameTick", func(l *event.Listeners) {
		if l.GameTick != nil {
			l.GameTick()
		}
	})
}

func (r *Room) GamePause(byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	by := r.by(byObj)
	r.paused = true
	r.logEvent("game paused", byName(by))
	r.each("GamePause", func(l *event.Listeners) {
		if l.GamePause != nil {
			l.GamePause(by)
		}
	})
}

func (r *Room) GameUnpause(byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	by := r.by(byObj)
	r.paused = false
	r.logEvent("game unpaused", byName(by))
	r.each("GameUnpause", func(l *event.Listeners) {
		if l.GameUnpause != nil {
			l.GameUnpause(by)
		}
	})
}

func (r *Room) PositionsReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.each("PositionsReset", func(l *event.Listeners) {
		if l.PositionsReset != nil {
			l.PositionsReset()
		}
	})
}

func (r *Room) PlayerActivity(obj native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.wrap(obj)
	r.each("PlayerActivity", func(l *event.Listeners) {
		if l.PlayerActivity != nil {
			l.PlayerActivity(p)
		}
	})
}

func (r *Room) StadiumChange(name string, byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	by := r.by(byObj)
	r.logEvent("stadium changed", zap.String("stadium", name), byName(by))
	r.each("StadiumChange", func(l *event.Listeners) {
		if l.StadiumChange != nil {
			l.StadiumChange(name, by)
		}
	})
}

func (r *Room) RoomLink(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("room link", zap.String("url", url))
	r.each("RoomLink", func(l *event.Listeners) {
		if l.RoomLink != nil {
			l.RoomLink(url)
		}
	})
}

func (r *Room) KickRateLimitSet(min, rate, burst int, byObj *native.PlayerObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	by := r.by(byObj)
	r.each("KickRateLimitSet", func(l *event.Listeners) {
		if l.KickRateLimitSet != nil {
			l.KickRateLimitSet(min, rate, burst, by)
		}
	})
}
