package handlers

import (
	"context"
	"net/http"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/room"
	"github.com/maingk/setback-game/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type autoFunc func(ctx context.Context, r *room.Room) (room.AutoResult, []room.Event, error)

// debugRun drives the room named by :roomId. Events reach players through
// the registry sink like any other intent.
func (a *API) debugRun(c *gin.Context, name string, fn autoFunc) {
	ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.Debug"+name, attribute.String("room_id", c.Param("roomId")))
	defer span.End()

	r, err := a.Rooms.Get(c.Param("roomId"))
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	res, _, err := fn(ctx, r)
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	a.Log.WithFields(logrus.Fields{"room_id": r.ID, "debug": name, "phase": res.Phase}).Info("debug action")
	c.JSON(http.StatusOK, gin.H{"result": res, "room": r.View()})
}

func (a *API) DebugAutoPlay(c *gin.Context) {
	a.debugRun(c, "AutoPlay", func(ctx context.Context, r *room.Room) (room.AutoResult, []room.Event, error) {
		return r.AutoPlay(ctx)
	})
}

func (a *API) DebugCompleteBidding(c *gin.Context) {
	a.debugRun(c, "CompleteBidding", func(ctx context.Context, r *room.Room) (room.AutoResult, []room.Event, error) {
		return r.AutoCompleteBidding(ctx)
	})
}

func (a *API) DebugCompleteHand(c *gin.Context) {
	a.debugRun(c, "CompleteHand", func(ctx context.Context, r *room.Room) (room.AutoResult, []room.Event, error) {
		return r.AutoCompleteHand(ctx)
	})
}

// DebugCompleteGame accepts an optional {"max_hands": n} body; zero means
// room.MaxAutoHands.
func (a *API) DebugCompleteGame(c *gin.Context) {
	var req struct {
		MaxHands int `json:"max_hands"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil || req.MaxHands < 0 {
			badRequest(c, "invalid max_hands")
			return
		}
	}
	a.debugRun(c, "CompleteGame", func(ctx context.Context, r *room.Room) (room.AutoResult, []room.Event, error) {
		return r.AutoCompleteGame(ctx, req.MaxHands)
	})
}

// DebugGameState shows the room with every seated player's hand.
func (a *API) DebugGameState(c *gin.Context) {
	_, span := tracing.StartSpan(c.Request.Context(), "handlers.DebugGameState", attribute.String("room_id", c.Param("roomId")))
	defer span.End()

	r, err := a.Rooms.Get(c.Param("roomId"))
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	view := r.View()
	hands := map[int][]common.Card{}
	for _, m := range view.Members {
		if m == nil {
			continue
		}
		if snap, err := r.PlayerView(m.ID); err == nil {
			hands[m.Seat] = snap.Hand
		}
	}
	c.JSON(http.StatusOK, gin.H{"room": view, "hands": hands})
}
