package handlers

import (
	"database/sql"

	"github.com/maingk/setback-game/internal/config"
	"github.com/maingk/setback-game/internal/middleware"
	"github.com/maingk/setback-game/internal/room"
	ws "github.com/maingk/setback-game/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// API carries what the HTTP and websocket handlers share.
type API struct {
	Rooms *room.Registry
	DB    *sql.DB
	Hubs  func() (*ws.Hub, bool)
	Cfg   config.Config
	Log   logrus.FieldLogger

	upgrader websocket.Upgrader
}

// NewAPI builds the handler set and points the registry's event sink at
// the websocket hub.
func NewAPI(rooms *room.Registry, db *sql.DB, hubs func() (*ws.Hub, bool), cfg config.Config, log logrus.FieldLogger) *API {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &API{Rooms: rooms, DB: db, Hubs: hubs, Cfg: cfg, Log: log}
	a.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     a.checkOrigin,
	}
	rooms.Publish = a.publish
	return a
}

// Register wires every route onto r.
func (a *API) Register(r *gin.Engine) {
	r.GET("/healthz", a.Health)
	r.GET("/ws", a.WebSocket)

	api := r.Group("/api")
	api.GET("/rooms", a.ListRooms)
	api.GET("/rooms/:id", a.GetRoom)
	api.GET("/rooms/:id/me", middleware.RequireSeat(a.Cfg), a.Me)
	api.GET("/rooms/:id/hands", a.RoomHands)
	api.GET("/scoreboard", a.Scoreboard)
	api.GET("/games/:gameId", a.GetGame)

	if a.Cfg.DebugRoutes {
		dbg := r.Group("/debug")
		dbg.Use(middleware.RequireDebugKey(a.Cfg))
		dbg.POST("/autoplay/:roomId", a.DebugAutoPlay)
		dbg.POST("/complete-bidding/:roomId", a.DebugCompleteBidding)
		dbg.POST("/complete-hand/:roomId", a.DebugCompleteHand)
		dbg.POST("/complete-game/:roomId", a.DebugCompleteGame)
		dbg.GET("/game-state/:roomId", a.DebugGameState)
	}
}

// publish fans room events out to the hub: addressed events to that
// player's connections, watcher events to spectators, the rest to both.
func (a *API) publish(roomID string, evs []room.Event) {
	hub, ok := a.Hubs()
	if !ok || hub == nil {
		return
	}
	players, watchers := ws.PlayerRoom(roomID), ws.WatchRoom(roomID)
	for _, e := range evs {
		typ := string(e.Type)
		switch {
		case e.To != "":
			hub.SendTo(players, e.To, typ, e.Payload)
		case e.Watchers:
			hub.Broadcast(watchers, typ, e.Payload)
		default:
			hub.Broadcast(players, typ, e.Payload)
			hub.Broadcast(watchers, typ, e.Payload)
		}
	}
}
