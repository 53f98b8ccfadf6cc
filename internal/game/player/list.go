package player

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cory-johannsen/haxroom/internal/native"
)

// List is a collection of players keyed by ID, iterated in insertion order.
type List struct {
	byID  map[int]*Player
	order []int
}

// NewList returns a List holding players.
func NewList(players ...*Player) *List {
	l := &List{byID: make(map[int]*Player, len(players))}
	for _, p := range players {
		l.Add(p)
	}
	return l
}

// Add inserts p, replacing any player with the same ID in place.
func (l *List) Add(p *Player) {
	if l.byID == nil {
		l.byID = make(map[int]*Player)
	}
	if _, exists := l.byID[p.ID]; !exists {
		l.order = append(l.order, p.ID)
	}
	l.byID[p.ID] = p
}

// Remove deletes the player with id.
//
// Postcondition: Returns the removed player, or nil.
func (l *List) Remove(id int) *Player {
	p, ok := l.byID[id]
	if !ok {
		return nil
	}
	delete(l.byID, id)
	l.order = slices.DeleteFunc(l.order, func(x int) bool { return x == id })
	return p
}

// Get returns the player with id, or nil.
func (l *List) Get(id int) *Player {
	return l.byID[id]
}

// Len returns the number of players.
func (l *List) Len() int {
	return len(l.order)
}

// Values returns the players in insertion order.
func (l *List) Values() []*Player {
	out := make([]*Player, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

// Find returns the first player matching pred, or nil.
func (l *List) Find(pred func(*Player) bool) *Player {
	for _, id := range l.order {
		if p := l.byID[id]; pred(p) {
			return p
		}
	}
	return nil
}

// Filter returns a new List of the players matching pred.
func (l *List) Filter(pred func(*Player) bool) *List {
	out := NewList()
	for _, id := range l.order {
		if p := l.byID[id]; pred(p) {
			out.Add(p)
		}
	}
	return out
}

// First returns the earliest-added player, or nil.
func (l *List) First() *Player {
	if len(l.order) == 0 {
		return nil
	}
	return l.byID[l.order[0]]
}

// Last returns the latest-added player, or nil.
func (l *List) Last() *Player {
	if len(l.order) == 0 {
		return nil
	}
	return l.byID[l.order[len(l.order)-1]]
}

// ByName returns every player named name.
func (l *List) ByName(name string) *List {
	return l.Filter(func(p *Player) bool { return p.Name == name })
}

// ByAuth returns the player with the given public identity, or nil.
func (l *List) ByAuth(auth string) *Player {
	if auth == "" {
		return nil
	}
	return l.Find(func(p *Player) bool { return p.Auth == auth })
}

// ByConnOrIP returns every player whose Conn or decoded IP equals connOrIP.
func (l *List) ByConnOrIP(connOrIP string) *List {
	return l.Filter(func(p *Player) bool { return p.Conn == connOrIP || p.IP == connOrIP })
}

func (l *List) team(t native.TeamID) *List {
	return l.Filter(func(p *Player) bool { return p.Team() == t })
}

// Spectators returns the players not on a team.
func (l *List) Spectators() *List { return l.team(native.Spectators) }

// Red returns the red team.
func (l *List) Red() *List { return l.team(native.Red) }

// Blue returns the blue team.
func (l *List) Blue() *List { return l.team(native.Blue) }

// Teams returns every player on the field.
func (l *List) Teams() *List {
	return l.Filter(func(p *Player) bool { return p.Team() != native.Spectators })
}

// Admins returns the players holding the host admin flag.
func (l *List) Admins() *List {
	return l.Filter(func(p *Player) bool { return p.Admin() })
}

// Ordered returns the players sorted by their position in the host's own list.
// Players unknown to the host sort first.
func (l *List) Ordered(host native.Host) *List {
	rank := make(map[int]int)
	for i, o := range host.PlayerList() {
		rank[o.ID] = i
	}
	index := func(id int) int {
		if i, ok := rank[id]; ok {
			return i
		}
		return -1
	}
	players := l.Values()
	slices.SortStableFunc(players, func(a, b *Player) int { return index(a.ID) - index(b.ID) })
	return NewList(players...)
}

// Kick kicks every player.
func (l *List) Kick(reason string) {
	for _, p := range l.Values() {
		p.Kick(reason)
	}
}

// Ban bans every player.
func (l *List) Ban(reason string) {
	for _, p := range l.Values() {
		p.Ban(reason)
	}
}

// Reply sends msg privately to every player.
func (l *List) Reply(msg native.Message) {
	for _, p := range l.Values() {
		p.Reply(msg)
	}
}

// String returns "name (id), name (id)".
func (l *List) String() string {
	parts := make([]string, 0, len(l.order))
	for _, p := range l.Values() {
		parts = append(parts, p.Name+" ("+strconv.Itoa(p.ID)+")")
	}
	return strings.Join(parts, ", ")
}
