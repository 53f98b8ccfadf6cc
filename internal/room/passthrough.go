package room

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/haxroom/internal/native"
)

// Start starts the game.
func (r *Room) Start() { r.host.StartGame() }

// Stop stops the game.
func (r *Room) Stop() { r.host.StopGame() }

// Pause pauses the game.
func (r *Room) Pause() { r.host.PauseGame(true) }

// Unpause resumes the game.
func (r *Room) Unpause() { r.host.PauseGame(false) }

func (r *Room) Unban(id int) { r.host.ClearBan(id) }

func (r *Room) UnbanAll() { r.host.ClearBans() }

func (r *Room) SetScoreLimit(limit int) { r.host.SetScoreLimit(limit) }

// SetTimeLimit sets the time limit in minutes.
func (r *Room) SetTimeLimit(minutes int) { r.host.SetTimeLimit(minutes) }

// SetCustomStadium loads a stadium from its .hbs JSON contents.
func (r *Room) SetCustomStadium(contents string) { r.host.SetCustomStadium(contents) }

// SetDefaultStadium loads one of native.DefaultStadiums.
func (r *Room) SetDefaultStadium(name string) error {
	if !slices.Contains(native.DefaultStadiums, name) {
		return fmt.Errorf("unknown default stadium %q", name)
	}
	r.host.SetDefaultStadium(name)
	return nil
}

func (r *Room) LockTeams() { r.host.SetTeamsLock(true) }

func (r *Room) UnlockTeams() { r.host.SetTeamsLock(false) }

// SetTeamColors sets one team's uniform.
func (r *Room) SetTeamColors(team native.TeamID, tc native.TeamColors) {
	r.host.SetTeamColors(team, tc.Angle, tc.TextColor, tc.Colors)
}

// SetAllTeamColors gives both teams the same uniform.
func (r *Room) SetAllTeamColors(tc native.TeamColors) {
	r.SetTeamColors(native.Red, tc)
	r.SetTeamColors(native.Blue, tc)
}

func (r *Room) StartRecording() { r.host.StartRecording() }

// StopRecording returns the replay, nil if no recording was running.
func (r *Room) StopRecording() []byte { return r.host.StopRecording() }

// SetPassword sets the room password.
func (r *Room) SetPassword(password string) {
	r.password = &password
	r.host.SetPassword(&password)
}

// ClearPassword removes the room password.
func (r *Room) ClearPassword() {
	r.password = nil
	r.host.SetPassword(nil)
}

func (r *Room) EnableCaptcha() { r.host.SetRequireRecaptcha(true) }

func (r *Room) DisableCaptcha() { r.host.SetRequireRecaptcha(false) }

// ReorderPlayers moves ids to the top or bottom of the host's player list.
func (r *Room) ReorderPlayers(ids []int, moveToTop bool) { r.host.ReorderPlayers(ids, moveToTop) }

// SetKickRateLimit configures the host's kick rate limit.
func (r *Room) SetKickRateLimit(min, rate, burst int) { r.host.SetKickRateLimit(min, rate, burst) }
