package setback

import (
	"fmt"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/models"
)

type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	Team     Team   `json:"team"`
	HandSize int    `json:"hand_size"`
}

// Snapshot is the public view of a game. It never carries hand contents.
type Snapshot struct {
	GameID     string       `json:"game_id"`
	RoomID     string       `json:"room_id"`
	Phase      Phase        `json:"phase"`
	HandNumber int          `json:"hand_number"`
	Players    []PlayerView `json:"players"`

	Dealer        int `json:"current_dealer"`
	CurrentBidder int `json:"current_bidder"`
	CurrentPlayer int `json:"current_player"`

	Trump   common.Suit `json:"trump"`
	HighBid HighBid     `json:"current_bid"`
	Bids    []Bid       `json:"bids"`

	Trick       []Play           `json:"trick"`
	TrickNumber int              `json:"trick_number"`
	Tricks      []CompletedTrick `json:"completed_tricks"`
	TricksWon   [2]int           `json:"tricks_won"`
	PlayedCount int              `json:"played_cards"`

	HandPoints [2]int     `json:"hand_scores"`
	Scores     [2]int     `json:"scores"`
	LastHand   *HandScore `json:"last_hand,omitempty"`
	Winner     *Team      `json:"winner,omitempty"`
}

// PlayerSnapshot is the public snapshot plus the viewer's own hand.
type PlayerSnapshot struct {
	Snapshot
	Seat int           `json:"player_index"`
	Hand []common.Card `json:"player_hand"`
}

// PublicSnapshot deep-copies everything it returns so callers can encode it
// after the owning lock is released.
func (g *Game) PublicSnapshot() Snapshot {
	s := Snapshot{
		GameID:        g.ID,
		RoomID:        g.RoomID,
		Phase:         g.Phase,
		HandNumber:    g.HandNumber,
		Dealer:        g.Dealer,
		CurrentBidder: g.CurrentBidder,
		CurrentPlayer: g.CurrentPlayer,
		Trump:         g.Trump,
		HighBid:       g.HighBid,
		Bids:          append([]Bid{}, g.Bids...),
		Trick:         append([]Play{}, g.Trick...),
		TrickNumber:   g.TrickNumber,
		Tricks:        make([]CompletedTrick, len(g.Tricks)),
		TricksWon:     g.TricksWon,
		PlayedCount:   len(g.Played),
		HandPoints:    g.HandPoints,
		Scores:        g.Scores,
	}
	for i, t := range g.Tricks {
		t.Plays = append([]Play(nil), t.Plays...)
		s.Tricks[i] = t
	}
	s.Players = make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
			Team:     p.Team,
			HandSize: len(p.Hand),
		})
	}
	if g.LastHand != nil {
		hs := *g.LastHand
		hs.Awards = append([]Award(nil), g.LastHand.Awards...)
		s.LastHand = &hs
	}
	if w, ok := g.Winner(); ok {
		s.Winner = &w
	}
	return s
}

// PlayerSnapshot is what seat is allowed to see: the public view and its own hand.
func (g *Game) PlayerSnapshot(seat int) (PlayerSnapshot, error) {
	if seat < 0 || seat >= PlayersPerGame {
		return PlayerSnapshot{}, fmt.Errorf("seat %d: %w", seat, models.ErrInvalidSeat)
	}
	return PlayerSnapshot{
		Snapshot: g.PublicSnapshot(),
		Seat:     seat,
		Hand:     append([]common.Card{}, g.Players[seat].Hand...),
	}, nil
}
