package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/maingk/setback-game/internal/auth"
	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/game/setback"
	"github.com/maingk/setback-game/internal/middleware"
	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/room"
	ws "github.com/maingk/setback-game/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (a *API) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		// Non-browser clients (no Origin) are allowed.
		return true
	}
	if a.Cfg.IsDevelopment() {
		if a.Cfg.DevWebSocketsAllowAll || middleware.IsLoopbackOrigin(origin) {
			return true
		}
	}
	for _, o := range a.Cfg.WSAllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// WebSocket upgrades the connection. The client starts in the lobby and
// sits down with join_room or watches with watch_room.
func (a *API) WebSocket(c *gin.Context) {
	hub, ok := a.Hubs()
	if !ok || hub == nil {
		a.Log.WithField("remote", c.ClientIP()).Error("websocket: no hub")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "kind": "internal"})
		return
	}

	conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.Log.WithFields(logrus.Fields{
			"remote": c.ClientIP(),
			"origin": c.Request.Header.Get("Origin"),
		}).WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := ws.NewClient(conn, hub)
	hub.Register(client)
	s := &session{
		api:    a,
		hub:    hub,
		client: client,
		seat:   setback.NoSeat,
		log:    a.Log.WithField("remote", c.ClientIP()),
	}

	// Queued before reads start so it is always the first frame.
	hub.Direct(client, "connected", gin.H{"rooms": a.Rooms.Len()})

	go client.WritePump(s.log)
	go func() {
		client.ReadPump(s.handle)
		s.disconnect()
	}()
}

// session is one connection's table state. It is only touched from the
// connection's read goroutine.
type session struct {
	api    *API
	hub    *ws.Hub
	client *ws.Client
	log    logrus.FieldLogger

	roomID   string
	playerID string
	seat     int
	watching bool
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *session) handle(msg []byte) {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		s.send("error", gin.H{"error": "invalid json"})
		return
	}

	ctx := context.Background()
	var err error
	switch in.Type {
	case "join_room":
		err = s.joinRoom(ctx, in.Payload)
	case "watch_room":
		err = s.watchRoom(in.Payload)
	case "leave_room":
		err = s.leaveRoom(ctx)
	case "set_ready":
		err = s.intent(func(r *room.Room) error {
			_, err := r.SetReady(ctx, s.playerID)
			return err
		})
	case "place_bid":
		err = s.placeBid(ctx, in.Payload)
	case "select_trump":
		err = s.selectTrump(ctx, in.Payload)
	case "play_card":
		err = s.playCard(ctx, in.Payload)
	case "next_hand":
		err = s.intent(func(r *room.Room) error {
			_, err := r.StartNextHand(ctx, s.playerID)
			return err
		})
	default:
		s.send("error", gin.H{"error": "unknown message type", "type": in.Type})
		return
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"type": in.Type, "room_id": s.roomID}).WithError(err).Debug("ws message failed")
	}
}

func (s *session) send(typ string, payload any) {
	s.hub.Direct(s.client, typ, payload)
}

// reject reports an error the room did not already report to the player.
func (s *session) reject(err error) error {
	s.send(string(room.EventRejected), room.Rejection(s.seat, err))
	return err
}

// intent runs fn against the session's room. A seated player's failures
// come back through the room's own rejected event.
func (s *session) intent(fn func(r *room.Room) error) error {
	if s.playerID == "" {
		return s.reject(fmt.Errorf("not at a table: %w", models.ErrNotSeated))
	}
	r, err := s.api.Rooms.Get(s.roomID)
	if err != nil {
		return s.reject(err)
	}
	return fn(r)
}

func (s *session) joinRoom(ctx context.Context, raw json.RawMessage) error {
	var p struct {
		Room string `json:"room"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return s.reject(fmt.Errorf("join payload: %w", models.ErrInvalidRoomID))
	}
	if s.playerID != "" {
		return s.reject(fmt.Errorf("seated in %s: %w", s.roomID, models.ErrAlreadySeated))
	}
	roomID := strings.TrimSpace(p.Room)

	r, m, _, err := s.api.Rooms.Join(ctx, roomID, p.Name)
	if err != nil {
		// A rejected first join must not leave an empty room behind.
		s.api.Rooms.RemoveIfEmpty(roomID)
		return s.reject(err)
	}
	s.roomID, s.playerID, s.seat, s.watching = r.ID, m.ID, m.Seat, false
	s.log = s.log.WithFields(logrus.Fields{"room_id": r.ID, "player_id": m.ID, "seat": m.Seat})
	s.hub.Join(s.client, ws.PlayerRoom(r.ID), m.ID)

	token, err := auth.GenerateSeatToken(m.ID, r.ID, m.Seat, m.Name, s.api.Cfg)
	if err != nil {
		s.log.WithError(err).Error("seat token")
	}
	s.send("joined", gin.H{
		"room":      r.ID,
		"seat":      m.Seat,
		"player_id": m.ID,
		"name":      m.Name,
		"token":     token,
	})
	s.send("room_state", r.View())
	s.log.Info("player joined")
	return nil
}

func (s *session) watchRoom(raw json.RawMessage) error {
	var p struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return s.reject(fmt.Errorf("watch payload: %w", models.ErrInvalidRoomID))
	}
	if s.playerID != "" {
		return s.reject(fmt.Errorf("seated in %s: %w", s.roomID, models.ErrAlreadySeated))
	}
	r, err := s.api.Rooms.Get(strings.TrimSpace(p.Room))
	if err != nil {
		return s.reject(err)
	}
	s.roomID, s.watching = r.ID, true
	s.hub.Join(s.client, ws.WatchRoom(r.ID), "")
	s.send("watching", gin.H{"room": r.ID})
	s.send("room_state", r.View())
	return nil
}

func (s *session) leaveRoom(ctx context.Context) error {
	if s.playerID == "" && !s.watching {
		return s.reject(fmt.Errorf("not at a table: %w", models.ErrNotSeated))
	}
	roomID := s.roomID
	s.vacate(ctx)
	s.hub.Join(s.client, ws.LobbyRoom, "")
	s.send("left", gin.H{"room": roomID})
	return nil
}

func (s *session) disconnect() {
	s.vacate(context.Background())
}

// vacate gives up the seat (or spectator spot) and drops the room once
// nobody is seated.
func (s *session) vacate(ctx context.Context) {
	if s.playerID != "" {
		if r, err := s.api.Rooms.Get(s.roomID); err == nil {
			if _, err := r.Leave(ctx, s.playerID); err != nil {
				s.log.WithError(err).Warn("leave failed")
			}
		}
		s.api.Rooms.RemoveIfEmpty(s.roomID)
		s.log.Info("player left")
	}
	s.roomID, s.playerID, s.seat, s.watching = "", "", setback.NoSeat, false
}

func (s *session) placeBid(ctx context.Context, raw json.RawMessage) error {
	var p struct {
		Amount int  `json:"amount"`
		Pass   bool `json:"pass"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return s.reject(fmt.Errorf("bid payload: %w", models.ErrInvalidBid))
	}
	amount := p.Amount
	if p.Pass {
		amount = setback.Pass
	}
	return s.intent(func(r *room.Room) error {
		_, err := r.PlaceBid(ctx, s.playerID, amount)
		return err
	})
}

func (s *session) selectTrump(ctx context.Context, raw json.RawMessage) error {
	var p struct {
		Suit string `json:"suit"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return s.reject(fmt.Errorf("trump payload: %w", models.ErrInvalidSuit))
	}
	suit, err := common.ParseSuit(p.Suit)
	if err != nil {
		return s.reject(fmt.Errorf("%v: %w", err, models.ErrInvalidSuit))
	}
	return s.intent(func(r *room.Room) error {
		_, err := r.SelectTrump(ctx, s.playerID, suit)
		return err
	})
}

func (s *session) playCard(ctx context.Context, raw json.RawMessage) error {
	var p struct {
		Index *int `json:"index"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.Index == nil {
		return s.reject(fmt.Errorf("play payload: %w", models.ErrInvalidCard))
	}
	return s.intent(func(r *room.Room) error {
		_, err := r.PlayCard(ctx, s.playerID, *p.Index)
		return err
	})
}
