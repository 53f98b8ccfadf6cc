package builtin

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/event"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/game/role"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// ErrNoClaimHash is returned by Claim when no password hash is configured.
var ErrNoClaimHash = errors.New("claim: no password hash configured")

// Claim attempts allowed per player: a burst of claimBurst, then one every claimEvery.
const (
	claimBurst = 3
	claimEvery = 20 * time.Second
)

// Claim returns a factory for the "claim" module. Its command compares the
// typed password against hash and, on a match, grants the host admin flag and
// the admin role. The message is never relayed.
//
// Precondition: hash must be a bcrypt hash.
func Claim(hash string) module.Factory {
	return func(r module.Room, _ module.Options, tr module.Translator) (*module.Module, error) {
		if hash == "" {
			return nil, ErrNoClaimHash
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, err
		}
		c := &claimer{hash: []byte(hash), tr: tr, limits: make(map[int]*rate.Limiter)}
		return module.New("claim").
			Command(&command.Command{
				Name:          "claim",
				Desc:          tr.Translate("Claims room admin with the room password.", "claim.desc"),
				Usage:         "<password>",
				Category:      command.CategoryAdmin,
				DeleteMessage: true,
				Func:          c.run,
			}).
			On(event.Listeners{
				PlayerLeave: func(p *player.Player) { c.forget(p.ID) },
			}).
			Build()
	}
}

type claimer struct {
	hash []byte
	tr   module.Translator

	mu     sync.Mutex
	limits map[int]*rate.Limiter
}

func (c *claimer) allow(id int, at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limits[id]
	if !ok {
		l = rate.NewLimiter(rate.Every(claimEvery), claimBurst)
		c.limits[id] = l
	}
	return l.AllowN(at, 1)
}

func (c *claimer) forget(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.limits, id)
}

func (c *claimer) run(inv *command.Invocation) error {
	p := inv.Player
	deny := func(text string) {
		p.Reply(native.Message{Text: text, Color: colorPtr(color.Tomato)})
	}
	if len(inv.Args) == 0 {
		deny(c.tr.Translate("Usage: %%claim <password>", "claim.usage", inv.Room.Prefix()))
		return nil
	}
	if p.Roles().Has(role.AdminRole) && p.Admin() {
		deny(c.tr.Translate("You are already an admin.", "claim.already"))
		return nil
	}
	if !c.allow(p.ID, inv.At) {
		deny(c.tr.Translate("Too many attempts, try again later.", "claim.limited"))
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(inv.Args[0].String())); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			deny(c.tr.Translate("Wrong password.", "claim.wrong"))
			return nil
		}
		return err
	}

	p.SetAdmin(true)
	if !p.HasRole(role.AdminRole) {
		p.AddRole(role.New(role.AdminRole).SetAdmin().SetColor(color.Gold))
	}
	inv.Room.Send(native.Message{
		Text:  c.tr.Translate("%% is now an admin.", "claim.granted", p.Name),
		Color: colorPtr(color.Gold),
		Style: native.StyleBold,
	})
	return nil
}

func colorPtr(c color.Color) *color.Color { return &c }
