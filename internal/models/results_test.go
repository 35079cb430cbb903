package models_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/maingk/setback-game/internal/database"
	"github.com/maingk/setback-game/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *models.Store {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "results.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return models.NewStore(db)
}

func TestHandResults(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	r := models.HandResult{
		GameID: "g1", RoomID: "r1", HandNumber: 1, Dealer: 0, BidSeat: 3, BidAmount: 4,
		Trump: "hearts", TeamAPoints: 2, TeamBPoints: 3, TeamAScore: 2, TeamBScore: 3,
	}
	require.NoError(t, s.RecordHand(ctx, r))
	require.NoError(t, s.RecordHand(ctx, r), "re-recording a hand is a no-op")

	r.HandNumber = 2
	r.TeamAScore = 5
	require.NoError(t, s.RecordHand(ctx, r))

	got, err := models.ListHandResults(ctx, s.DB, "r1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].HandNumber)
	assert.Equal(t, "[]", got[0].AwardsJSON)
	assert.Equal(t, 5, got[1].TeamAScore)
	assert.False(t, got[0].CreatedAt.IsZero())

	r.GameID, r.HandNumber = "g0", 1
	require.NoError(t, s.RecordHand(ctx, r))
	game, err := models.ListGameHands(ctx, s.DB, "g1")
	require.NoError(t, err)
	require.Len(t, game, 2)
	assert.Equal(t, []int{1, 2}, []int{game[0].HandNumber, game[1].HandNumber})

	other, err := models.ListHandResults(ctx, s.DB, "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = models.GetHandResult(ctx, s.DB, "g1", 9)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestScoreboard(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.RecordGame(ctx, models.GameResult{
		GameID: "g1", RoomID: "r1", Winner: "team_b", TeamAScore: 15, TeamBScore: 22, HandsPlayed: 7,
	}))
	require.NoError(t, s.RecordGame(ctx, models.GameResult{
		GameID: "g1", RoomID: "r1", Winner: "team_a", TeamAScore: 99, TeamBScore: 0, HandsPlayed: 1,
	}))
	require.NoError(t, s.RecordGame(ctx, models.GameResult{
		GameID: "g2", RoomID: "r2", Winner: "team_a", TeamAScore: 21, TeamBScore: 8, HandsPlayed: 5,
	}))

	list, err := models.ListScoreboard(ctx, s.DB, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "g2", list[0].GameID, "newest first")

	g1, err := models.GetGameResult(ctx, s.DB, "g1")
	require.NoError(t, err)
	assert.Equal(t, "team_b", g1.Winner, "first write wins")
	assert.Equal(t, 22, g1.TeamBScore)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", models.ErrorKind(nil))
	assert.Equal(t, "must_follow_suit", models.ErrorKind(models.ErrMustFollowSuit))
	assert.Equal(t, "room_full", models.ErrorKind(fmt.Errorf("join r1: %w", models.ErrRoomFull)))
	assert.Equal(t, "internal", models.ErrorKind(assert.AnError))
}
