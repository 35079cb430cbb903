package room

import (
	"github.com/maingk/setback-game/internal/game/setback"
)

type EventType string

const (
	EventRosterChanged EventType = "roster_changed"
	EventHandStarted   EventType = "hand_started"
	EventStateChanged  EventType = "state_changed"
	EventTrickResolved EventType = "trick_resolved"
	EventHandScored    EventType = "hand_scored"
	EventGameOver      EventType = "game_over"
	EventRejected      EventType = "rejected"
)

// Event is something the transport must deliver. To names a single player;
// an empty To reaches everyone at the table and every spectator, unless
// Watchers is set, in which case only spectators receive it.
type Event struct {
	Type     EventType
	To       string
	Watchers bool
	Payload  any
}

// Broadcast reports whether the event goes to the whole table.
func (e Event) Broadcast() bool {
	return e.To == "" && !e.Watchers
}

type RosterPayload struct {
	RoomID   string                          `json:"room_id"`
	Reason   string                          `json:"reason"` // joined|left|ready|game_started
	PlayerID string                          `json:"player_id,omitempty"`
	Members  [setback.PlayersPerGame]*Member `json:"members"`
	Phase    setback.Phase                   `json:"phase"`
}

type TrickPayload struct {
	WinnerSeat  int            `json:"winner_seat"`
	WinningTeam setback.Team   `json:"winning_team"`
	TrickNumber int            `json:"trick_number"`
	Plays       []setback.Play `json:"plays"`
}

type HandScoredPayload struct {
	HandNumber int               `json:"hand_number"`
	Score      setback.HandScore `json:"score"`
	Scores     [2]int            `json:"scores"`
}

type GameOverPayload struct {
	GameID string       `json:"game_id"`
	Winner setback.Team `json:"winner"`
	Scores [2]int       `json:"scores"`
	Hands  int          `json:"hands_played"`
}

type RejectedPayload struct {
	Seat    int    `json:"seat"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
