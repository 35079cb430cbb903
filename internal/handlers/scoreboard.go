package handlers

import (
	"net/http"

	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Scoreboard lists finished games, newest first.
func (a *API) Scoreboard(c *gin.Context) {
	ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.Scoreboard")
	defer span.End()

	limit, ok := limitParam(c, 50, 200)
	if !ok {
		return
	}
	items, err := models.ListScoreboard(ctx, a.DB, limit)
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetGame returns one finished game and its recorded hands.
func (a *API) GetGame(c *gin.Context) {
	ctx, span := tracing.StartSpan(c.Request.Context(), "handlers.GetGame", attribute.String("game_id", c.Param("gameId")))
	defer span.End()

	res, err := models.GetGameResult(ctx, a.DB, c.Param("gameId"))
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	hands, err := models.ListGameHands(ctx, a.DB, res.GameID)
	if err != nil {
		writeAPIError(c, a.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": res, "hands": hands})
}
