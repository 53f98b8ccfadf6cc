package adminapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/player"
	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/native"
)

const healthTimeout = 2 * time.Second

type roomView struct {
	Name    string   `json:"name"`
	Session string   `json:"session"`
	Players int      `json:"players"`
	Max     int      `json:"max_players"`
	Paused  bool     `json:"paused"`
	Prefix  string   `json:"prefix"`
	Modules []string `json:"modules"`
}

type playerView struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Auth  string        `json:"auth,omitempty"`
	IP    string        `json:"ip"`
	Team  string        `json:"team"`
	Admin bool          `json:"admin"`
	Roles []string      `json:"roles"`
	Geo   *geo.Location `json:"geo,omitempty"`
}

type announceRequest struct {
	Message string `json:"message" binding:"required"`
	To      int    `json:"to"`
	Color   string `json:"color"`
}

// health answers 503 when the history backend is a server that does not
// answer a ping.
func (s *Server) health(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	if p, ok := s.history.(history.Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("history backend unreachable", zap.Error(err))
			body["status"] = "degraded"
			body["history"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["history"] = "ok"
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) getRoom(c *gin.Context) {
	var v roomView
	s.room.Do(func() {
		v = roomView{
			Name:    s.room.Name(),
			Session: s.room.SessionID().String(),
			Players: s.room.Players().Len(),
			Max:     s.room.MaxPlayers(),
			Paused:  s.room.Paused(),
			Prefix:  s.room.Prefix(),
			Modules: s.room.Modules(),
		}
	})
	c.JSON(http.StatusOK, v)
}

func viewOf(p *player.Player) playerView {
	v := playerView{
		ID:    p.ID,
		Name:  p.Name,
		Auth:  p.Auth,
		IP:    p.IP,
		Team:  p.Team().String(),
		Admin: p.Admin(),
		Roles: []string{},
	}
	for _, r := range p.Roles().Roles() {
		v.Roles = append(v.Roles, r.Name)
	}
	if loc, ok := p.Geolocation(); ok {
		v.Geo = &loc
	}
	return v
}

func (s *Server) getPlayers(c *gin.Context) {
	views := []playerView{}
	s.room.Do(func() {
		for _, p := range s.room.Players().Values() {
			views = append(views, viewOf(p))
		}
	})
	c.JSON(http.StatusOK, views)
}

func (s *Server) getHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}
	ip := c.Param("ip")
	rec, err := s.history.Get(c.Request.Context(), ip)
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no history for " + ip})
		return
	}
	if err != nil {
		s.logger.Error("reading history", zap.String("ip", ip), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) announce(c *gin.Context) {
	var req announceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := native.Message{Text: req.Message, To: req.To, Style: native.StyleBold, Sound: native.SoundNotification}
	if req.Color != "" {
		col, err := color.Parse(req.Color)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		msg.Color = &col
	}

	found := true
	s.room.Do(func() {
		if req.To != 0 && s.room.Players().Get(req.To) == nil {
			found = false
			return
		}
		s.room.Send(msg)
	})
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such player"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
