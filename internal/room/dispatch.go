package room

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/player"
)

// dispatchChat runs the chat pipeline for one message.
//
// Precondition: the room lock is held.
// Postcondition: the matched command, if any, runs at most once; the player's
// cooldown is touched only when the command passed the cooldown and
// permission gates.
func (r *Room) dispatchChat(p *player.Player, message string) event.ChatResult {
	var (
		pending    *command.Command
		invocation *command.Invocation
	)

	prefix := r.commands.Prefix()
	if p.CanUseCommands && command.HasPrefix(prefix, message) {
		parsed := command.Parse(prefix, message)
		if cmd, ok := r.commands.Get(parsed.Command); ok {
			now := r.now()
			if !p.CooldownElapsed(now) {
				p.Reply(r.cooldown)
				return event.Suppress
			}
			if !cmd.IsAllowed(p) {
				p.Reply(r.noPermission)
				return event.Suppress
			}
			invocation = &command.Invocation{
				Player:  p,
				Message: message,
				Room:    r,
				At:      now,
				Args:    command.NewArguments(parsed.Args),
			}
			p.TouchCooldown(now)
			if cmd.DeleteMessage {
				r.runCommand(cmd, invocation)
				return event.Suppress
			}
			pending = cmd
		}
	}

	result := event.Relay
	r.each("PlayerChat", func(l *event.Listeners) {
		if l.PlayerChat != nil && l.PlayerChat(p, message) == event.Suppress {
			result = event.Suppress
		}
	})

	if result == event.Relay {
		r.logChat(p, message)
	}
	if pending != nil {
		r.runCommand(pending, invocation)
	}
	return result
}

// runCommand executes cmd and announces it to PlayerRunCommand listeners.
func (r *Room) runCommand(cmd *command.Command, inv *command.Invocation) {
	if err := cmd.Run(inv); err != nil {
		r.logger.Error("command failed",
			zap.String("command", cmd.Name),
			zap.String("player", inv.Player.Tag()),
			zap.Error(err),
		)
	}
	r.each("PlayerRunCommand", func(l *event.Listeners) {
		if l.PlayerRunCommand != nil {
			l.PlayerRunCommand(inv.Player, cmd)
		}
	})
}

// each calls fn for every listener set, module tier first. A panicking
// listener is logged and does not stop the others.
func (r *Room) each(name string, fn func(l *event.Listeners)) {
	r.bus.Each(func(l *event.Listeners) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("listener panicked",
					zap.String("event", name),
					zap.Any("panic", rec),
				)
			}
		}()
		fn(l)
	})
}
