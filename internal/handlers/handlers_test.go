package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maingk/setback-game/internal/auth"
	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/game/setback"
	"github.com/maingk/setback-game/internal/models"
	"github.com/maingk/setback-game/internal/room"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthAndRooms(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"rooms":0}`, w.Body.String())

	_, _, _, err := e.rooms.Join(context.Background(), "table-1", "Ann")
	require.NoError(t, err)

	w = e.do(t, http.MethodGet, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Rooms []room.Summary `json:"rooms"`
	}
	decode(t, w, &list)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, "table-1", list.Rooms[0].ID)
	assert.Equal(t, 1, list.Rooms[0].Seated)

	w = e.do(t, http.MethodGet, "/api/rooms/table-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view room.View
	decode(t, w, &view)
	assert.Equal(t, setback.PhaseWaiting, view.Phase)
	assert.Nil(t, view.Game)

	w = e.do(t, http.MethodGet, "/api/rooms/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"room_not_found"`)
}

func TestPublicRoomHidesHands(t *testing.T) {
	e := newTestEnv(t)
	e.seatFour(t, "t1")

	w := e.do(t, http.MethodGet, "/api/rooms/t1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "player_hand")

	var view room.View
	decode(t, w, &view)
	require.NotNil(t, view.Game)
	assert.Equal(t, setback.PhaseBidding, view.Game.Phase)
	for _, p := range view.Game.Players {
		assert.Equal(t, setback.CardsPerPlayer, p.HandSize)
	}
}

func TestMeRequiresSeatToken(t *testing.T) {
	e := newTestEnv(t)
	ms := e.seatFour(t, "t1")
	cfg := e.api.Cfg

	w := e.do(t, http.MethodGet, "/api/rooms/t1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := auth.GenerateSeatToken(ms[2].ID, "t1", 2, ms[2].Name, cfg)
	require.NoError(t, err)
	w = e.do(t, http.MethodGet, "/api/rooms/t1/me", http.Header{"Authorization": []string{"Bearer " + tok}})
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Member room.Member             `json:"member"`
		Game   *setback.PlayerSnapshot `json:"game"`
	}
	decode(t, w, &me)
	assert.Equal(t, ms[2].ID, me.Member.ID)
	require.NotNil(t, me.Game)
	assert.Equal(t, 2, me.Game.Seat)
	assert.Len(t, me.Game.Hand, setback.CardsPerPlayer)

	w = e.do(t, http.MethodGet, "/api/rooms/t1/me?token="+tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	other, err := auth.GenerateSeatToken(ms[2].ID, "t2", 2, ms[2].Name, cfg)
	require.NoError(t, err)
	w = e.do(t, http.MethodGet, "/api/rooms/t1/me", http.Header{"Authorization": []string{"Bearer " + other}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	stale, err := auth.GenerateSeatToken("gone", "t1", 1, "Ghost", cfg)
	require.NoError(t, err)
	w = e.do(t, http.MethodGet, "/api/rooms/t1/me", http.Header{"Authorization": []string{"Bearer " + stale}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"not_seated"`)
}

func TestDebugRoutesRequireKey(t *testing.T) {
	e := newTestEnv(t)
	e.seatFour(t, "t1")

	w := e.do(t, http.MethodPost, "/debug/autoplay/t1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/debug/autoplay/t1", http.Header{auth.DebugKeyHeader: []string{"wrong-key-wrong-key"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/debug/autoplay/t1", debugHeader())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Result room.AutoResult `json:"result"`
	}
	decode(t, w, &out)
	require.Len(t, out.Result.Actions, 1)
	assert.Equal(t, setback.AutoKindBid, out.Result.Actions[0].Kind)
}

func TestDebugRoutesHiddenWhenDisabled(t *testing.T) {
	e := newTestEnv(t)
	cfg := e.api.Cfg
	cfg.DebugRoutes = false
	logger, _ := test.NewNullLogger()
	api := NewAPI(e.rooms, e.api.DB, e.api.Hubs, cfg, logger)
	r := gin.New()
	api.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/game-state/t1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugDrivesGameAndLedger(t *testing.T) {
	e := newTestEnv(t)
	e.seatFour(t, "t1")

	w := e.do(t, http.MethodPost, "/debug/complete-bidding/t1", debugHeader())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Result room.AutoResult `json:"result"`
	}
	decode(t, w, &out)
	assert.Equal(t, setback.PhaseTrumpSelection, out.Result.Phase)

	w = e.do(t, http.MethodPost, "/debug/complete-bidding/t1", debugHeader())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"wrong_phase"`)

	w = e.do(t, http.MethodPost, "/debug/complete-hand/t1", debugHeader())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &out)
	assert.Contains(t, []setback.Phase{setback.PhaseScoring, setback.PhaseGameOver}, out.Result.Phase)

	w = e.do(t, http.MethodGet, "/api/rooms/t1/hands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hands struct {
		Items []models.HandResult `json:"items"`
	}
	decode(t, w, &hands)
	require.Len(t, hands.Items, 1)
	assert.Equal(t, 1, hands.Items[0].HandNumber)

	req := httptest.NewRequest(http.MethodPost, "/debug/complete-game/t1", strings.NewReader(`{"max_hands":50}`))
	req.Header.Set(auth.DebugKeyHeader, testDebugKey)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &out)
	assert.Equal(t, setback.PhaseGameOver, out.Result.Phase)
	require.NotNil(t, out.Result.Winner)

	w = e.do(t, http.MethodGet, "/api/scoreboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Items []models.GameResult `json:"items"`
	}
	decode(t, w, &board)
	require.Len(t, board.Items, 1)
	g := board.Items[0]
	assert.Equal(t, "t1", g.RoomID)
	assert.Equal(t, out.Result.Winner.String(), g.Winner)
	assert.Equal(t, out.Result.HandNumber, g.HandsPlayed)

	w = e.do(t, http.MethodGet, "/api/games/"+g.GameID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var game struct {
		Game  models.GameResult   `json:"game"`
		Hands []models.HandResult `json:"hands"`
	}
	decode(t, w, &game)
	assert.Len(t, game.Hands, g.HandsPlayed)

	w = e.do(t, http.MethodGet, "/api/games/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugGameStateShowsHands(t *testing.T) {
	e := newTestEnv(t)
	e.seatFour(t, "t1")

	w := e.do(t, http.MethodGet, "/debug/game-state/t1", debugHeader())
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Room  room.View                `json:"room"`
		Hands map[string][]common.Card `json:"hands"`
	}
	decode(t, w, &st)
	assert.Len(t, st.Hands, setback.PlayersPerGame)
	for _, h := range st.Hands {
		assert.Len(t, h, setback.CardsPerPlayer)
	}

	w = e.do(t, http.MethodGet, "/debug/game-state/missing", debugHeader())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugCompleteGameRejectsBadBody(t *testing.T) {
	e := newTestEnv(t)
	e.seatFour(t, "t1")

	req := httptest.NewRequest(http.MethodPost, "/debug/complete-game/t1", strings.NewReader(`{"max_hands":-1}`))
	req.Header.Set(auth.DebugKeyHeader, testDebugKey)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomHandsValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/rooms/bad.id/hands", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/rooms/t1/hands?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/rooms/t1/hands?limit=9999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestWriteAPIError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("r1: %w", models.ErrRoomNotFound), http.StatusNotFound, "room_not_found"},
		{models.ErrNotFound, http.StatusNotFound, "not_found"},
		{models.ErrNotSeated, http.StatusForbidden, "not_seated"},
		{models.ErrInvalidBid, http.StatusBadRequest, "invalid_bid"},
		{models.ErrOutOfTurn, http.StatusConflict, "out_of_turn"},
		{models.ErrRoomFull, http.StatusConflict, "room_full"},
		{models.ErrAutoPlayStalled, http.StatusInternalServerError, "internal"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
			writeAPIError(c, logger, tc.err)
			assert.Equal(t, tc.status, w.Code)
			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, tc.kind, body["kind"])
			assert.NotContains(t, body["error"], "disk on fire")
		})
	}
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
