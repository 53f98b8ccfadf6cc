package room

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/native"
)

func colorField(c *color.Color) zap.Field {
	if c == nil {
		return zap.Skip()
	}
	return zap.String("color", color.Legible(*c))
}

func (r *Room) logEvent(msg string, fields ...zap.Field) {
	if !r.logging {
		return
	}
	fields = append(fields, zap.String("kind", "event"), colorField(colorPtr(color.Haxball)))
	r.logger.Info(msg, fields...)
}

func (r *Room) logChat(p *player.Player, message string) {
	if !r.logging {
		return
	}
	kind := "chat"
	if p.Admin() {
		kind = "admin"
	}
	r.logger.Info(message, zap.String("kind", kind), zap.String("player", p.Tag()))
}

func (r *Room) logAnnouncement(msg native.Message) {
	if !r.logging {
		return
	}
	r.logger.Info(msg.Text,
		zap.String("kind", "announcement"),
		colorField(msg.Color),
		zap.String("style", string(msg.Style)),
	)
}

func (r *Room) logDirect(msg native.Message, to *player.Player) {
	if !r.logging {
		return
	}
	r.logger.Info(msg.Text,
		zap.String("kind", "direct"),
		zap.String("player", to.Tag()),
		colorField(msg.Color),
		zap.String("style", string(msg.Style)),
	)
}

func colorPtr(c color.Color) *color.Color { return &c }
