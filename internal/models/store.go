package models

import (
	"context"
	"database/sql"
)

// Store writes finished hands and games to sqlite. It satisfies the room
// package's Recorder.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) RecordHand(ctx context.Context, r HandResult) error {
	_, err := InsertHandResult(ctx, s.DB, r)
	return err
}

func (s *Store) RecordGame(ctx context.Context, r GameResult) error {
	_, err := InsertGameResult(ctx, s.DB, r)
	return err
}
