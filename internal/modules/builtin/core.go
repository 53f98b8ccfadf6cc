// Package builtin provides the modules every room starts with.
package builtin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/haxroom/internal/game/command"
	"github.com/cory-johannsen/haxroom/internal/game/module"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// categoryOrder is the order categories are listed in help output.
var categoryOrder = []string{command.CategoryGeneral, command.CategoryGame, command.CategoryAdmin}

// Core builds the "core" module: help and bb.
func Core(r module.Room, _ module.Options, tr module.Translator) (*module.Module, error) {
	return module.New("core").
		Command(&command.Command{
			Name:     "help",
			Aliases:  []string{"commands"},
			Desc:     tr.Translate("Lists the commands you can use.", "core.help.desc"),
			Usage:    "[command]",
			Category: command.CategoryGeneral,
			Func:     func(inv *command.Invocation) error { return help(inv, tr) },
		}).
		Command(&command.Command{
			Name:     "bb",
			Desc:     tr.Translate("Leaves the room.", "core.bb.desc"),
			Category: command.CategoryGeneral,
			Func: func(inv *command.Invocation) error {
				inv.Player.Kick(tr.Translate("Bye", "core.bb.reason"))
				return nil
			},
		}).
		Build()
}

func help(inv *command.Invocation, tr module.Translator) error {
	prefix := inv.Room.Prefix()
	reply := func(text string) {
		inv.Player.Reply(native.Message{Text: text, Style: native.StyleSmall})
	}

	if len(inv.Args) > 0 {
		name := strings.ToLower(inv.Args[0].String())
		cmd, ok := inv.Room.Commands().Get(name)
		if !ok || !cmd.IsAllowed(inv.Player) {
			reply(tr.Translate("There is no command named %%.", "core.help.unknown", name))
			return nil
		}
		line := prefix + cmd.Name
		if cmd.Usage != "" {
			line += " " + cmd.Usage
		}
		if cmd.Desc != "" {
			line += ": " + cmd.Desc
		}
		reply(line)
		if len(cmd.Aliases) > 0 {
			reply(tr.Translate("Aliases: %%", "core.help.aliases", strings.Join(cmd.Aliases, ", ")))
		}
		return nil
	}

	groups := inv.Room.Commands().CommandsByCategory()
	cats := make([]string, 0, len(groups))
	for cat := range groups {
		cats = append(cats, cat)
	}
	slices.SortFunc(cats, func(a, b string) int {
		ia, ib := rank(a), rank(b)
		if ia != ib {
			return ia - ib
		}
		return strings.Compare(a, b)
	})

	for _, cat := range cats {
		var names []string
		for _, cmd := range groups[cat] {
			if cmd.IsAllowed(inv.Player) {
				names = append(names, prefix+cmd.Name)
			}
		}
		if len(names) == 0 {
			continue
		}
		reply(fmt.Sprintf("%s: %s", cat, strings.Join(names, " ")))
	}
	return nil
}

func rank(cat string) int {
	if i := slices.Index(categoryOrder, cat); i >= 0 {
		return i
	}
	return len(categoryOrder)
}
