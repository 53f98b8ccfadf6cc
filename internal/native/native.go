// Package native describes the boundary to the closed-source room host: the
// value types it exchanges and the Host/Handler contracts. The host owns
// physics and networking; everything here is a plain property read/write or
// a synchronous callback.
package native

import "github.com/cory-johannsen/haxroom/internal/color"

// TeamID identifies a team on the field.
type TeamID int

const (
	Spectators TeamID = 0
	Red        TeamID = 1
	Blue       TeamID = 2
)

// String returns the display name of the team.
func (t TeamID) String() string {
	switch t {
	case Spectators:
		return "Spectators"
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	default:
		return "Unknown"
	}
}

// ChatStyle is the announcement font style.
type ChatStyle string

const (
	StyleNormal      ChatStyle = "normal"
	StyleBold        ChatStyle = "bold"
	StyleItalic      ChatStyle = "italic"
	StyleSmall       ChatStyle = "small"
	StyleSmallBold   ChatStyle = "small-bold"
	StyleSmallItalic ChatStyle = "small-italic"
)

// ChatSound is the notification sound played with an announcement.
type ChatSound int

const (
	SoundNone         ChatSound = 0
	SoundNormal       ChatSound = 1
	SoundNotification ChatSound = 2
)

// Collision flag bits used by DiscProperties.CMask and CGroup.
const (
	CollisionBall   = 1
	CollisionRed    = 2
	CollisionBlue   = 4
	CollisionRedKO  = 8
	CollisionBlueKO = 16
	CollisionWall   = 32
	CollisionAll    = 63
	CollisionKick   = 64
	CollisionScore  = 128
	CollisionC0     = 268435456
	CollisionC1     = 536870912
	CollisionC2     = 1073741824
	CollisionC3     = -2147483648
)

// DefaultStadiums lists the stadium names accepted by SetDefaultStadium.
var DefaultStadiums = []string{
	"Classic", "Easy", "Small", "Big", "Rounded",
	"Hockey", "BigHockey", "BigEasy", "BigRounded", "Huge",
}

// Position is a point on the field.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerObject is the host's snapshot of a player.
type PlayerObject struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Team     TeamID    `json:"team"`
	Admin    bool      `json:"admin"`
	Position *Position `json:"position"`
	Auth     string    `json:"auth,omitempty"`
	Conn     string    `json:"conn"`
}

// Scores is the host's score snapshot for the game in progress.
type Scores struct {
	Red        int     `json:"red"`
	Blue       int     `json:"blue"`
	Time       float64 `json:"time"`
	ScoreLimit int     `json:"scoreLimit"`
	TimeLimit  float64 `json:"timeLimit"`
}

// DiscProperties mirrors the host's per-disc property object. A nil field is
// absent: on reads it means the host has no value (e.g. the disc is not in
// play); on writes it leaves the property untouched.
type DiscProperties struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	XSpeed   *float64 `json:"xspeed,omitempty"`
	YSpeed   *float64 `json:"yspeed,omitempty"`
	XGravity *float64 `json:"xgravity,omitempty"`
	YGravity *float64 `json:"ygravity,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
	BCoeff   *float64 `json:"bCoeff,omitempty"`
	InvMass  *float64 `json:"invMass,omitempty"`
	Damping  *float64 `json:"damping,omitempty"`
	Color    *int     `json:"color,omitempty"`
	CMask    *int     `json:"cMask,omitempty"`
	CGroup   *int     `json:"cGroup,omitempty"`
}

// TeamColors is a team's uniform.
type TeamColors struct {
	Angle     int           `json:"angle"`
	TextColor color.Color   `json:"textColor"`
	Colors    []color.Color `json:"colors"`
}

// GeoOverride overrides the room's advertised location.
type GeoOverride struct {
	Code string  `json:"code" mapstructure:"code"`
	Lat  float64 `json:"lat" mapstructure:"lat"`
	Lon  float64 `json:"lon" mapstructure:"lon"`
}

// RoomConfig is passed through to the host when the room is created.
type RoomConfig struct {
	Name       string       `json:"roomName"`
	PlayerName string       `json:"playerName,omitempty"`
	Password   string       `json:"password,omitempty"`
	MaxPlayers int          `json:"maxPlayers"`
	Public     bool         `json:"public"`
	Geo        *GeoOverride `json:"geo,omitempty"`
	Token      string       `json:"token,omitempty"`
	NoPlayer   bool         `json:"noPlayer"`
}

// Message is an announcement. To == 0 addresses every player.
type Message struct {
	Text  string
	To    int
	Color *color.Color
	Style ChatStyle
	Sound ChatSound
}

// Host is the injected native room.
type Host interface {
	Bind(h Handler)

	SendChat(message string, to int)
	SendAnnouncement(message string, to int, c *color.Color, style ChatStyle, sound ChatSound)

	SetPlayerAdmin(id int, admin bool)
	SetPlayerTeam(id int, team TeamID)
	KickPlayer(id int, reason string, ban bool)
	ClearBan(id int)
	ClearBans()
	SetPlayerAvatar(id int, avatar *string)

	SetScoreLimit(limit int)
	SetTimeLimit(minutes int)
	SetCustomStadium(contents string)
	SetDefaultStadium(name string)
	SetTeamsLock(locked bool)
	SetTeamColors(team TeamID, angle int, textColor color.Color, colors []color.Color)
	StartGame()
	StopGame()
	PauseGame(paused bool)
	StartRecording()
	StopRecording() []byte
	SetPassword(password *string)
	SetRequireRecaptcha(required bool)
	ReorderPlayers(ids []int, moveToTop bool)
	SetKickRateLimit(min, rate, burst int)

	Player(id int) *PlayerObject
	PlayerList() []PlayerObject
	Scores() *Scores
	BallPosition() *Position

	DiscCount() int
	DiscProperties(index int) *DiscProperties
	SetDiscProperties(index int, props DiscProperties)
	PlayerDiscProperties(id int) *DiscProperties
	SetPlayerDiscProperties(id int, props DiscProperties)
}

// Handler receives the host's events. The host calls it from a single
// goroutine; by is nil when an action was not taken by a player.
type Handler interface {
	PlayerJoin(p PlayerObject)
	PlayerLeave(p PlayerObject)
	TeamVictory(scores Scores)
	// PlayerChat returns false to stop the host from relaying the message.
	PlayerChat(p PlayerObject, message string) bool
	PlayerBallKick(p PlayerObject)
	TeamGoal(team TeamID)
	GameStart(by *PlayerObject)
	GameStop(by *PlayerObject)
	PlayerAdminChange(changed PlayerObject, by *PlayerObject)
	PlayerTeamChange(changed PlayerObject, by *PlayerObject)
	PlayerKicked(kicked PlayerObject, reason string, ban bool, by *PlayerObject)
	GameTick()
	GamePause(by *PlayerObject)
	GameUnpause(by *PlayerObject)
	PositionsReset()
	PlayerActivity(p PlayerObject)
	StadiumChange(name string, by *PlayerObject)
	RoomLink(url string)
	KickRateLimitSet(min, rate, burst int, by *PlayerObject)
}

// Float returns a pointer to v, for building DiscProperties literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building DiscProperties literals.
func Int(v int) *int { return &v }
