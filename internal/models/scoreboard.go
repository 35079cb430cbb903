package models

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GameResult is one finished game on the scoreboard.
type GameResult struct {
	ID          int64     `json:"id"`
	GameID      string    `json:"game_id"`
	RoomID      string    `json:"room_id"`
	Winner      string    `json:"winner"` // team_a|team_b
	TeamAScore  int       `json:"team_a_score"`
	TeamBScore  int       `json:"team_b_score"`
	HandsPlayed int       `json:"hands_played"`
	PlayersJSON string    `json:"players_json"`
	FinishedAt  time.Time `json:"finished_at"`
}

const gameResultCols = `id, game_id, room_id, winner, team_a_score, team_b_score, hands_played, players_json, finished_at`

// InsertGameResult records a finished game. Recording the same game twice
// returns the row that is already there.
func InsertGameResult(ctx context.Context, db *sql.DB, r GameResult) (*GameResult, error) {
	if r.PlayersJSON == "" {
		r.PlayersJSON = "[]"
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO game_results(game_id, room_id, winner, team_a_score, team_b_score, hands_played, players_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.RoomID, r.Winner, r.TeamAScore, r.TeamBScore, r.HandsPlayed, r.PlayersJSON,
	)
	if err != nil && !IsUniqueConstraint(err) {
		return nil, err
	}
	return GetGameResult(ctx, db, r.GameID)
}

func GetGameResult(ctx context.Context, db *sql.DB, gameID string) (*GameResult, error) {
	var r GameResult
	err := db.QueryRowContext(ctx,
		`SELECT `+gameResultCols+` FROM game_results WHERE game_id = ?`, gameID,
	).Scan(&r.ID, &r.GameID, &r.RoomID, &r.Winner, &r.TeamAScore, &r.TeamBScore, &r.HandsPlayed, &r.PlayersJSON, &r.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func ListScoreboard(ctx context.Context, db *sql.DB, limit int64) ([]GameResult, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+gameResultCols+` FROM game_results ORDER BY finished_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameResult{}
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.ID, &r.GameID, &r.RoomID, &r.Winner, &r.TeamAScore, &r.TeamBScore, &r.HandsPlayed, &r.PlayersJSON, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
