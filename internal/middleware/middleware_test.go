package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maingk/setback-game/internal/auth"
	"github.com/maingk/setback-game/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	hash, err := auth.HashDebugKey("0123456789abcdef")
	require.NoError(t, err)
	return config.Config{
		JWTSecret:    "test-secret",
		JWTIssuer:    "setback",
		JWTTTL:       time.Hour,
		AppEnv:       "development",
		DebugKeyHash: hash,
	}
}

func seatRouter(cfg config.Config) *gin.Engine {
	r := gin.New()
	r.GET("/rooms/:id/me", RequireSeat(cfg), func(c *gin.Context) {
		claims, ok := SeatClaims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"seat": claims.Seat})
	})
	return r
}

func TestRequireSeat(t *testing.T) {
	cfg := testConfig(t)
	r := seatRouter(cfg)
	tok, err := auth.GenerateSeatToken("p1", "r1", 3, "Di", cfg)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"bearer header", "/rooms/r1/me", "Bearer " + tok, http.StatusOK},
		{"query token", "/rooms/r1/me?token=" + tok, "", http.StatusOK},
		{"missing", "/rooms/r1/me", "", http.StatusUnauthorized},
		{"garbage", "/rooms/r1/me", "Bearer nope", http.StatusUnauthorized},
		{"other room", "/rooms/r2/me", "Bearer " + tok, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRequireDebugKey(t *testing.T) {
	cfg := testConfig(t)
	r := gin.New()
	r.POST("/debug/x", RequireDebugKey(cfg), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/debug/x", nil)
		if key != "" {
			req.Header.Set(auth.DebugKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, do("0123456789abcdef"))
	assert.Equal(t, http.StatusForbidden, do("fedcba9876543210"))
	assert.Equal(t, http.StatusUnauthorized, do(""))
}

func TestCORS(t *testing.T) {
	dev := testConfig(t)
	prod := dev
	prod.AppEnv = "production"
	prod.WSAllowedOrigins = []string{"https://cards.example"}

	check := func(cfg config.Config, method, origin string) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(CORS(cfg))
		r.GET("/api/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(method, "/api/rooms", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := check(dev, http.MethodGet, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = check(dev, http.MethodGet, "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = check(prod, http.MethodOptions, "https://cards.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cards.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = check(prod, http.MethodGet, "http://localhost:5173")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
