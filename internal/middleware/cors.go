package middleware

import (
	"net/http"
	"strings"

	"github.com/maingk/setback-game/internal/config"

	"github.com/gin-gonic/gin"
)

// CORS enables CORS for a local table client served from another port.
// Outside development only origins listed in WS_ALLOWED_ORIGINS are echoed.
func CORS(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		if cfg.IsDevelopment() {
			allowed = IsLoopbackOrigin(origin)
		} else {
			for _, o := range cfg.WSAllowedOrigins {
				if strings.EqualFold(o, origin) {
					allowed = true
					break
				}
			}
		}
		if allowed {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Debug-Key")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// IsLoopbackOrigin reports whether origin is a localhost page on any port.
func IsLoopbackOrigin(origin string) bool {
	for _, p := range []string{
		"http://localhost:", "http://127.0.0.1:", "http://[::1]:",
		"https://localhost:", "https://127.0.0.1:", "https://[::1]:",
	} {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}
