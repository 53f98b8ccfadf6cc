package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/history"
)

// lookup geolocates p and records the join in history on a goroutine.
// A result that arrives after p left, or after another player took p's id,
// is dropped.
//
// Precondition: the room lock is held.
func (r *Room) lookup(p *player.Player) {
	if r.locator == nil && r.history == nil {
		return
	}
	entry := history.Entry{
		ID:       p.ID,
		Name:     p.Name,
		Auth:     p.Auth,
		JoinedAt: r.now(),
		Session:  r.sessionID,
	}
	ip := p.IP

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		var loc *geo.Location
		if r.locator != nil {
			ctx, cancel := context.WithTimeout(r.ctx, r.lookupTimeout)
			l, err := r.locator.Locate(ctx, ip)
			cancel()
			if err != nil {
				r.logger.Warn("unable to fetch player's geolocation",
					zap.String("player", entry.Name),
					zap.Int("id", entry.ID),
					zap.Error(err),
				)
			} else {
				loc = &l
				r.Do(func() { r.geolocated(p, l) })
			}
		}

		if r.history != nil {
			ctx, cancel := context.WithTimeout(r.ctx, r.lookupTimeout)
			defer cancel()
			if _, err := history.Append(ctx, r.history, ip, loc, entry); err != nil {
				r.logger.Warn("recording connection history",
					zap.String("player", entry.Name),
					zap.Error(err),
				)
			}
		}
	}()
}

// geolocated stores loc on p and fires PlayerGeoLocationFetch.
//
// Precondition: the room lock is held.
func (r *Room) geolocated(p *player.Player, loc geo.Location) {
	if r.players.Get(p.ID) != p {
		r.logger.Debug("dropping geolocation for departed player",
			zap.String("player", p.Tag()),
		)
		return
	}
	p.SetGeolocation(loc)
	r.each("PlayerGeoLocationFetch", func(l *event.Listeners) {
		if l.PlayerGeoLocationFetch != nil {
			l.PlayerGeoLocationFetch(p)
		}
	})
}
