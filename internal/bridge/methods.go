package bridge

import (
	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/native"
)

func (b *Host) SendChat(message string, to int) { b.Notify("sendChat", message, to) }

func (b *Host) SendAnnouncement(message string, to int, c *color.Color, style native.ChatStyle, sound native.ChatSound) {
	b.Notify("sendAnnouncement", message, to, c, style, sound)
}

func (b *Host) SetPlayerAdmin(id int, admin bool) { b.Notify("setPlayerAdmin", id, admin) }
func (b *Host) SetPlayerTeam(id int, team native.TeamID) { b.Notify("setPlayerTeam", id, team) }

func (b *Host) KickPlayer(id int, reason string, ban bool) {
	b.Notify("kickPlayer", id, reason, ban)
}

func (b *Host) ClearBan(id int) { b.Notify("clearBan", id) }
func (b *Host) ClearBans() { b.Notify("clearBans") }
func (b *Host) SetPlayerAvatar(id int, avatar *string) { b.Notify("setPlayerAvatar", id, avatar) }
func (b *Host) SetScoreLimit(limit int) { b.Notify("setScoreLimit", limit) }
func (b *Host) SetTimeLimit(minutes int) { b.Notify("setTimeLimit", minutes) }
func (b *Host) SetCustomStadium(contents string) { b.Notify("setCustomStadium", contents) }
func (b *Host) SetDefaultStadium(name string) { b.Notify("setDefaultStadium", name) }
func (b *Host) SetTeamsLock(locked bool) { b.Notify("setTeamsLock", locked) }
func (b *Host) StartGame() { b.Notify("startGame") }
func (b *Host) StopGame() { b.Notify("stopGame") }
func (b *Host) PauseGame(paused bool) { b.Notify("pauseGame", paused) }
func (b *Host) StartRecording() { b.Notify("startRecording") }
func (b *Host) SetPassword(password *string) { b.Notify("setPassword", password) }
func (b *Host) SetRequireRecaptcha(required bool) { b.Notify("setRequireRecaptcha", required) }
func (b *Host) ReorderPlayers(ids []int, moveToTop bool) { b.Notify("reorderPlayers", ids, moveToTop) }

func (b *Host) SetTeamColors(team native.TeamID, angle int, textColor color.Color, colors []color.Color) {
	b.Notify("setTeamColors", team, angle, textColor, colors)
}

func (b *Host) SetKickRateLimit(min, rate, burst int) {
	b.Notify("setKickRateLimit", min, rate, burst)
}

func (b *Host) SetDiscProperties(index int, props native.DiscProperties) {
	b.Notify("setDiscProperties", index, props)
}

func (b *Host) SetPlayerDiscProperties(id int, props native.DiscProperties) {
	b.Notify("setPlayerDiscProperties", id, props)
}

// StopRecording returns the replay bytes, nil if none was recording or the call failed.
func (b *Host) StopRecording() []byte {
	var replay []byte
	if !b.get("stopRecording", &replay) {
		return nil
	}
	return replay
}

func (b *Host) Player(id int) *native.PlayerObject {
	var p *native.PlayerObject
	b.get("getPlayer", &p, id)
	return p
}

func (b *Host) PlayerList() []native.PlayerObject {
	var list []native.PlayerObject
	b.get("getPlayerList", &list)
	return list
}

func (b *Host) Scores() *native.Scores {
	var s *native.Scores
	b.get("getScores", &s)
	return s
}

func (b *Host) BallPosition() *native.Position {
	var p *native.Position
	b.get("getBallPosition", &p)
	return p
}

func (b *Host) DiscCount() int {
	var n int
	b.get("getDiscCount", &n)
	return n
}

func (b *Host) DiscProperties(index int) *native.DiscProperties {
	var p *native.DiscProperties
	b.get("getDiscProperties", &p, index)
	return p
}

func (b *Host) PlayerDiscProperties(id int) *native.DiscProperties {
	var p *native.DiscProperties
	b.get("getPlayerDiscProperties", &p, id)
	return p
}
