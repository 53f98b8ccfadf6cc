package testutil

import (
	"slices"
	"sync"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/native"
)

// Announcement is one recorded SendAnnouncement call.
type Announcement struct {
	Text  string
	To    int
	Color *color.Color
	Style native.ChatStyle
	Sound native.ChatSound
}

// Chat is one recorded SendChat call.
type Chat struct {
	Text string
	To   int
}

// Kick is one recorded KickPlayer call.
type Kick struct {
	ID     int
	Reason string
	Ban    bool
}

// FakeHost is an in-memory native.Host. It records outbound calls, holds
// player and disc property tables, and lets tests fire host events.
// Safe for concurrent use; events are delivered without holding its lock.
type FakeHost struct {
	mu sync.Mutex

	handler     native.Handler
	players     []native.PlayerObject
	discs       []native.DiscProperties
	playerDiscs map[int]*native.DiscProperties
	scores      *native.Scores

	announcements []Announcement
	chats         []Chat
	kicks         []Kick
	avatars       map[int]*string
	bansCleared   []int
	allBansClear  int
	paused        bool
	teamsLocked   bool
	password      *string
	recaptcha     bool
	recording     bool
	scoreLimit    int
	timeLimit     int
	stadium       string
	teamColors    map[native.TeamID]native.TeamColors
	kickRate      [3]int
}

// NewFakeHost returns an empty FakeHost with a ball at disc 0.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		discs:       []native.DiscProperties{{X: native.Float(0), Y: native.Float(0), Radius: native.Float(10)}},
		playerDiscs: make(map[int]*native.DiscProperties),
		avatars:     make(map[int]*string),
		teamColors:  make(map[native.TeamID]native.TeamColors),
	}
}

func (f *FakeHost) Bind(h native.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *FakeHost) h() native.Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}

func (f *FakeHost) SendChat(message string, to int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, Chat{Text: message, To: to})
}

func (f *FakeHost) SendAnnouncement(message string, to int, c *color.Color, style native.ChatStyle, sound native.ChatSound) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announcements = append(f.announcements, Announcement{Text: message, To: to, Color: c, Style: style, Sound: sound})
}

func (f *FakeHost) indexOf(id int) int {
	return slices.IndexFunc(f.players, func(p native.PlayerObject) bool { return p.ID == id })
}

func (f *FakeHost) SetPlayerAdmin(id int, admin bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(id); i >= 0 {
		f.players[i].Admin = admin
	}
}

func (f *FakeHost) SetPlayerTeam(id int, team native.TeamID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(id); i >= 0 {
		f.players[i].Team = team
	}
}

func (f *FakeHost) KickPlayer(id int, reason string, ban bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, Kick{ID: id, Reason: reason, Ban: ban})
}

func (f *FakeHost) ClearBan(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bansCleared = append(f.bansCleared, id)
}

func (f *FakeHost) ClearBans() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allBansClear++
}

func (f *FakeHost) SetPlayerAvatar(id int, avatar *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.avatars[id] = avatar
}

func (f *FakeHost) SetScoreLimit(limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreLimit = limit
}

func (f *FakeHost) SetTimeLimit(minutes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeLimit = minutes
}

func (f *FakeHost) SetCustomStadium(contents string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stadium = contents
}

func (f *FakeHost) SetDefaultStadium(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stadium = name
}

func (f *FakeHost) SetTeamsLock(locked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teamsLocked = locked
}

func (f *FakeHost) SetTeamColors(team native.TeamID, angle int, textColor color.Color, colors []color.Color) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teamColors[team] = native.TeamColors{Angle: angle, TextColor: textColor, Colors: slices.Clone(colors)}
}

func (f *FakeHost) StartGame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores == nil {
		f.scores = &native.Scores{ScoreLimit: f.scoreLimit, TimeLimit: float64(f.timeLimit * 60)}
	}
}

func (f *FakeHost) StopGame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = nil
	f.paused = false
}

func (f *FakeHost) PauseGame(paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
}

func (f *FakeHost) StartRecording() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = true
}

func (f *FakeHost) StopRecording() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.recording {
		return nil
	}
	f.recording = false
	return []byte("replay")
}

func (f *FakeHost) SetPassword(password *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = password
}

func (f *FakeHost) SetRequireRecaptcha(required bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recaptcha = required
}

func (f *FakeHost) ReorderPlayers(ids []int, moveToTop bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	moved := make([]native.PlayerObject, 0, len(f.players))
	rest := make([]native.PlayerObject, 0, len(f.players))
	for _, p := range f.players {
		if slices.Contains(ids, p.ID) {
			continue
		}
		rest = append(rest, p)
	}
	for _, id := range ids {
		if i := f.indexOf(id); i >= 0 {
			moved = append(moved, f.players[i])
		}
	}
	if moveToTop {
		f.players = append(moved, rest...)
	} else {
		f.players = append(rest, moved...)
	}
}

func (f *FakeHost) SetKickRateLimit(min, rate, burst int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kickRate = [3]int{min, rate, burst}
}

func (f *FakeHost) Player(id int) *native.PlayerObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return nil
	}
	p := f.players[i]
	if d, ok := f.playerDiscs[id]; ok && d.X != nil && d.Y != nil {
		p.Position = &native.Position{X: *d.X, Y: *d.Y}
	}
	return &p
}

func (f *FakeHost) PlayerList() []native.PlayerObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.players)
}

func (f *FakeHost) Scores() *native.Scores {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores == nil {
		return nil
	}
	s := *f.scores
	return &s
}

func (f *FakeHost) BallPosition() *native.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores == nil || len(f.discs) == 0 || f.discs[0].X == nil || f.discs[0].Y == nil {
		return nil
	}
	return &native.Position{X: *f.discs[0].X, Y: *f.discs[0].Y}
}

func (f *FakeHost) DiscCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.discs)
}

func (f *FakeHost) DiscProperties(index int) *native.DiscProperties {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.discs) {
		return nil
	}
	p := f.discs[index]
	return &p
}

func (f *FakeHost) SetDiscProperties(index int, props native.DiscProperties) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.discs) {
		return
	}
	merge(&f.discs[index], props)
}

func (f *FakeHost) PlayerDiscProperties(id int) *native.DiscProperties {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.playerDiscs[id]
	if !ok {
		return nil
	}
	p := *d
	return &p
}

func (f *FakeHost) SetPlayerDiscProperties(id int, props native.DiscProperties) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.playerDiscs[id]
	if !ok {
		return
	}
	merge(d, props)
}

func merge(dst *native.DiscProperties, src native.DiscProperties) {
	set := func(d **float64, s *float64) {
		if s != nil {
			v := *s
			*d = &v
		}
	}
	setInt := func(d **int, s *int) {
		if s != nil {
			v := *s
			*d = &v
		}
	}
	set(&dst.X, src.X)
	set(&dst.Y, src.Y)
	set(&dst.XSpeed, src.XSpeed)
	set(&dst.YSpeed, src.YSpeed)
	set(&dst.XGravity, src.XGravity)
	set(&dst.YGravity, src.YGravity)
	set(&dst.Radius, src.Radius)
	set(&dst.BCoeff, src.BCoeff)
	set(&dst.InvMass, src.InvMass)
	set(&dst.Damping, src.Damping)
	setInt(&dst.Color, src.Color)
	setInt(&dst.CMask, src.CMask)
	setInt(&dst.CGroup, src.CGroup)
}

// AddDisc appends a disc to the host's disc table.
func (f *FakeHost) AddDisc(p native.DiscProperties) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discs = append(f.discs, p)
}

// PlacePlayer gives a joined player an on-field disc.
func (f *FakeHost) PlacePlayer(id int, x, y, radius float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playerDiscs[id] = &native.DiscProperties{X: native.Float(x), Y: native.Float(y), Radius: native.Float(radius)}
}

// Join adds p to the host and fires PlayerJoin.
func (f *FakeHost) Join(p native.PlayerObject) {
	f.mu.Lock()
	f.players = append(f.players, p)
	f.mu.Unlock()
	if h := f.h(); h != nil {
		h.PlayerJoin(p)
	}
}

// Leave removes the player and fires PlayerLeave.
func (f *FakeHost) Leave(id int) {
	f.mu.Lock()
	i := f.indexOf(id)
	if i < 0 {
		f.mu.Unlock()
		return
	}
	p := f.players[i]
	f.players = slices.Delete(f.players, i, i+1)
	delete(f.playerDiscs, id)
	f.mu.Unlock()
	if h := f.h(); h != nil {
		h.PlayerLeave(p)
	}
}

// Chat fires PlayerChat for the player and reports whether the host would relay.
func (f *FakeHost) Chat(id int, message string) bool {
	p := f.Player(id)
	if p == nil {
		return false
	}
	h := f.h()
	if h == nil {
		return true
	}
	return h.PlayerChat(*p, message)
}

// Handler returns the bound handler for firing arbitrary events.
func (f *FakeHost) Handler() native.Handler {
	return f.h()
}

// Announcements returns every recorded announcement.
func (f *FakeHost) Announcements() []Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.announcements)
}

// AnnouncementsTo returns the announcements addressed to id.
func (f *FakeHost) AnnouncementsTo(id int) []Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Announcement
	for _, a := range f.announcements {
		if a.To == id {
			out = append(out, a)
		}
	}
	return out
}

// Chats returns every recorded SendChat call.
func (f *FakeHost) Chats() []Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.chats)
}

// Kicks returns every recorded kick or ban.
func (f *FakeHost) Kicks() []Kick {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.kicks)
}

// Avatar returns the avatar override for id and whether one was ever set.
func (f *FakeHost) Avatar(id int) (*string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.avatars[id]
	return a, ok
}

// Paused reports the host pause flag.
func (f *FakeHost) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

// TeamsLocked reports the host team lock.
func (f *FakeHost) TeamsLocked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teamsLocked
}

// Password returns the host password, nil when none.
func (f *FakeHost) Password() *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.password
}

// Recaptcha reports whether the host requires recaptcha.
func (f *FakeHost) Recaptcha() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recaptcha
}

// Limits returns the score and time limits.
func (f *FakeHost) Limits() (score, minutes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scoreLimit, f.timeLimit
}

// Stadium returns the last stadium set.
func (f *FakeHost) Stadium() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stadium
}

// TeamColors returns the colors set for team.
func (f *FakeHost) TeamColors(team native.TeamID) (native.TeamColors, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.teamColors[team]
	return c, ok
}

// KickRate returns the last kick rate limit set.
func (f *FakeHost) KickRate() [3]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kickRate
}

// BansCleared returns the ids passed to ClearBan and the ClearBans call count.
func (f *FakeHost) BansCleared() ([]int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.bansCleared), f.allBansClear
}
