package handlers

import (
	"net/http"
	"strconv"

	"github.com/maingk/setback-game/internal/middleware"
	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/room"
	"github.com/maingk/setback-game/internal/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "rooms": a.Rooms.Len()})
}

func (a *API) ListRooms(c *gin.Context) {
	_, span := tracing.StartSpan(c.Request.Context(), "handlers.ListRooms")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"rooms": a.Rooms.List()})
}

// GetRoom returns the roster and public snapshot of one room.
func (a *API) GetRoom(c *gin.Context) {
	_, span := tracing.StartSpan(c.Request.Context(), "handlers.GetRoom", attribute.String("room_id", c.Param("id")))
	defer span.End()

	r, err := a.Rooms.Get(c.Param("id"))
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	c.JSON(http.StatusOK, r.View())
}

// Me returns the caller's own snapshot, hand included. The seat token names
// the player.
func (a *API) Me(c *gin.Context) {
	_, span := tracing.StartSpan(c.Request.Context(), "handlers.Me", attribute.String("room_id", c.Param("id")))
	defer span.End()

	claims, ok := middleware.SeatClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "unauthorized"})
		return
	}
	r, err := a.Rooms.Get(claims.RoomID)
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	m, err := r.Member(claims.PlayerID)
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	resp := gin.H{"member": m}
	if snap, err := r.PlayerView(claims.PlayerID); err == nil {
		resp["game"] = snap
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) RoomHands(c *gin.Context) {
	ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.RoomHands", attribute.String("room_id", c.Param("id")))
	defer span.End()

	id := c.Param("id")
	if err := room.ValidRoomID(id); err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	limit, ok := limitParam(c, 100, 500)
	if !ok {
		return
	}
	items, err := models.ListHandResults(ctx, a.DB, id, limit)
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// limitParam reads ?limit=, defaulting to def and capping at max.
func limitParam(c *gin.Context, def, max int64) (int64, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		badRequest(c, "invalid limit")
		return 0, false
	}
	if n > max {
		n = max
	}
	return n, true
}
