package middleware

import (
	"net/http"
	"strings"

	"github.com/maingk/setback-game/internal/auth"
	"github.com/maingk/setback-game/internal/config"

	"github.com/gin-gonic/gin"
)

// SeatClaimsKey is the gin context key holding *auth.SeatClaims.
const SeatClaimsKey = "seatClaims"

// RequireSeat accepts a seat token for the room named by the :id route
// parameter. Tokens for other rooms are refused.
func RequireSeat(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token", "kind": "unauthorized"})
			return
		}

		claims, err := auth.ParseSeatToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "kind": "unauthorized"})
			return
		}
		if id := c.Param("id"); id != "" && id != claims.RoomID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token is for another room", "kind": "forbidden"})
			return
		}

		c.Set(SeatClaimsKey, claims)
		c.Next()
	}
}

// SeatClaims returns the claims RequireSeat stored on c.
func SeatClaims(c *gin.Context) (*auth.SeatClaims, bool) {
	v, ok := c.Get(SeatClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SeatClaims)
	return claims, ok
}

// RequireDebugKey guards the debug routes with a bcrypt-hashed shared key.
func RequireDebugKey(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(auth.DebugKeyHeader))
		if cfg.DebugKeyHash == "" || key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing debug key", "kind": "unauthorized"})
			return
		}
		if err := auth.CompareDebugKey(cfg.DebugKeyHash, key); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid debug key", "kind": "forbidden"})
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	// Authorization: Bearer <token>
	authz := c.GetHeader("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.Query(auth.SeatTokenQuery))
}
