package models

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type HandResult struct {
	ID          int64     `json:"id"`
	GameID      string    `json:"game_id"`
	RoomID      string    `json:"room_id"`
	HandNumber  int       `json:"hand_number"`
	Dealer      int       `json:"dealer"`
	BidSeat     int       `json:"bid_seat"`
	BidAmount   int       `json:"bid_amount"`
	Trump       string    `json:"trump"`
	TeamAPoints int       `json:"team_a_points"`
	TeamBPoints int       `json:"team_b_points"`
	TeamAScore  int       `json:"team_a_score"`
	TeamBScore  int       `json:"team_b_score"`
	AwardsJSON  string    `json:"awards_json"`
	CreatedAt   time.Time `json:"created_at"`
}

const handResultCols = `id, game_id, room_id, hand_number, dealer, bid_seat, bid_amount, trump, team_a_points, team_b_points, team_a_score, team_b_score, awards_json, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHandResult(s rowScanner) (HandResult, error) {
	var r HandResult
	err := s.Scan(&r.ID, &r.GameID, &r.RoomID, &r.HandNumber, &r.Dealer, &r.BidSeat, &r.BidAmount, &r.Trump,
		&r.TeamAPoints, &r.TeamBPoints, &r.TeamAScore, &r.TeamBScore, &r.AwardsJSON, &r.CreatedAt)
	return r, err
}

// InsertHandResult records one scored hand. (game_id, hand_number) is unique;
// a repeat insert returns the stored row.
func InsertHandResult(ctx context.Context, db *sql.DB, r HandResult) (*HandResult, error) {
	if r.AwardsJSON == "" {
		r.AwardsJSON = "[]"
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO hand_results(game_id, room_id, hand_number, dealer, bid_seat, bid_amount, trump, team_a_points, team_b_points, team_a_score, team_b_score, awards_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.RoomID, r.HandNumber, r.Dealer, r.BidSeat, r.BidAmount, r.Trump,
		r.TeamAPoints, r.TeamBPoints, r.TeamAScore, r.TeamBScore, r.AwardsJSON,
	)
	if err != nil && !IsUniqueConstraint(err) {
		return nil, err
	}
	return GetHandResult(ctx, db, r.GameID, r.HandNumber)
}

func GetHandResult(ctx context.Context, db *sql.DB, gameID string, handNumber int) (*HandResult, error) {
	r, err := scanHandResult(db.QueryRowContext(ctx,
		`SELECT `+handResultCols+` FROM hand_results WHERE game_id = ? AND hand_number = ?`,
		gameID, handNumber,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListHandResults returns a room's hands, oldest first.
func ListHandResults(ctx context.Context, db *sql.DB, roomID string, limit int64) ([]HandResult, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return queryHandResults(ctx, db,
		`SELECT `+handResultCols+` FROM hand_results WHERE room_id = ? ORDER BY id ASC LIMIT ?`,
		roomID, limit,
	)
}

// ListGameHands returns every hand of one game in play order.
func ListGameHands(ctx context.Context, db *sql.DB, gameID string) ([]HandResult, error) {
	return queryHandResults(ctx, db,
		`SELECT `+handResultCols+` FROM hand_results WHERE game_id = ? ORDER BY hand_number ASC`,
		gameID,
	)
}

func queryHandResults(ctx context.Context, db *sql.DB, query string, args ...any) ([]HandResult, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HandResult{}
	for rows.Next() {
		r, err := scanHandResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
