package models

import "errors"

var (
	ErrWrongPhase        = errors.New("action not valid in current phase")
	ErrOutOfTurn         = errors.New("not your turn")
	ErrWrongPlayer       = errors.New("only the winning bidder can select trump")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrInvalidSuit       = errors.New("invalid suit")
	ErrInvalidCard       = errors.New("invalid card")
	ErrMustFollowSuit    = errors.New("must follow suit")
	ErrInsufficientCards = errors.New("not enough cards in deck")
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrAutoPlayStalled   = errors.New("auto-play made no progress")

	ErrRoomFull       = errors.New("room full")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotSeated      = errors.New("player not seated in room")
	ErrAlreadySeated  = errors.New("connection already seated")
	ErrGameNotStarted = errors.New("game not started")
	ErrInvalidName    = errors.New("invalid player name")
	ErrInvalidRoomID  = errors.New("invalid room id")
)

// errorKinds is ordered; the first match wins.
var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrWrongPhase, "wrong_phase"},
	{ErrOutOfTurn, "out_of_turn"},
	{ErrWrongPlayer, "wrong_player"},
	{ErrInvalidBid, "invalid_bid"},
	{ErrInvalidSuit, "invalid_suit"},
	{ErrInvalidCard, "invalid_card"},
	{ErrMustFollowSuit, "must_follow_suit"},
	{ErrInsufficientCards, "insufficient_cards"},
	{ErrInvalidSeat, "invalid_seat"},
	{ErrAutoPlayStalled, "auto_play_stalled"},
	{ErrRoomFull, "room_full"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrNotSeated, "not_seated"},
	{ErrAlreadySeated, "already_seated"},
	{ErrGameNotStarted, "game_not_started"},
	{ErrInvalidName, "invalid_name"},
	{ErrInvalidRoomID, "invalid_room"},
	{ErrNotFound, "not_found"},
}

// ErrorKind returns the stable wire name of a known error, or "internal".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
