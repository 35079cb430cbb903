package handlers

import (
	"net/http"

	"github.com/maingk/setback-game/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var kindStatus = map[string]int{
	"not_found":      http.StatusNotFound,
	"room_not_found": http.StatusNotFound,

	"not_seated": http.StatusForbidden,

	"invalid_room": http.StatusBadRequest,
	"invalid_name": http.StatusBadRequest,
	"invalid_bid":  http.StatusBadRequest,
	"invalid_suit": http.StatusBadRequest,
	"invalid_card": http.StatusBadRequest,
	"invalid_seat": http.StatusBadRequest,

	"wrong_phase":      http.StatusConflict,
	"out_of_turn":      http.StatusConflict,
	"wrong_player":     http.StatusConflict,
	"must_follow_suit": http.StatusConflict,
	"room_full":        http.StatusConflict,
	"already_seated":   http.StatusConflict,
	"game_not_started": http.StatusConflict,
}

// writeAPIError maps err to a status by its kind. Unknown errors are logged
// and never echoed.
func writeAPIError(c *gin.Context, log logrus.FieldLogger, err error) {
	kind := models.ErrorKind(err)
	if status, ok := kindStatus[kind]; ok {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	log.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"kind":   kind,
	}).WithError(err).Error("internal error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "kind": "internal"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "kind": "invalid_input"})
}
