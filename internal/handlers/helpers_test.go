package handlers

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maingk/setback-game/internal/auth"
	"github.com/maingk/setback-game/internal/config"
	"github.com/maingk/setback-game/internal/database"
	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/room"
	ws "github.com/maingk/setback-game/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testDebugKey = "0123456789abcdef-debug"

var testDebugHash string

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	h, err := auth.HashDebugKey(testDebugKey)
	if err != nil {
		panic(err)
	}
	testDebugHash = h
	os.Exit(m.Run())
}

type testEnv struct {
	api    *API
	router *gin.Engine
	rooms  *room.Registry
	hook   *test.Hook
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		JWTIssuer:    "setback",
		JWTTTL:       time.Hour,
		AppEnv:       "development",
		DebugRoutes:  true,
		DebugKeyHash: testDebugHash,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, hook := test.NewNullLogger()

	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "setback.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := ws.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	rooms := room.NewRegistry(models.NewStore(db), logger)
	var seed uint64
	rooms.NewRand = func() *rand.Rand {
		seed++
		return common.NewSeededRand(seed)
	}

	api := NewAPI(rooms, db, ws.NewHubRef(hub).Get, testConfig(), logger)
	r := gin.New()
	api.Register(r)
	return &testEnv{api: api, router: r, rooms: rooms, hook: hook}
}

func (e *testEnv) do(t *testing.T, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seatFour fills roomID and readies everyone so the first hand is dealt.
func (e *testEnv) seatFour(t *testing.T, roomID string) []room.Member {
	t.Helper()
	ctx := context.Background()
	var out []room.Member
	var r *room.Room
	for _, name := range []string{"Ann", "Bo", "Cy", "Di"} {
		rr, m, _, err := e.rooms.Join(ctx, roomID, name)
		require.NoError(t, err)
		r = rr
		out = append(out, m)
	}
	for _, m := range out {
		_, err := r.SetReady(ctx, m.ID)
		require.NoError(t, err)
	}
	return out
}

func debugHeader() http.Header {
	return http.Header{auth.DebugKeyHeader: []string{testDebugKey}}
}
