package setback

import (
	"testing"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/stretchr/testify/require"
)

var testSeats = [PlayersPerGame]Seat{
	{ID: "p0", Name: "Ann"},
	{ID: "p1", Name: "Bo"},
	{ID: "p2", Name: "Cy"},
	{ID: "p3", Name: "Di"},
}

func newTestGame(seed uint64) *Game {
	return NewGame("g1", "r1", testSeats, common.NewSeededRand(seed))
}

func cards(t *testing.T, specs ...string) []common.Card {
	t.Helper()
	out := make([]common.Card, 0, len(specs))
	for _, s := range specs {
		c, err := common.ParseCard(s)
		require.NoError(t, err, s)
		out = append(out, c)
	}
	return out
}

func card(t *testing.T, spec string) common.Card {
	t.Helper()
	return cards(t, spec)[0]
}

// rigPlaying puts g mid-hand with the given hands, trump and leader.
func rigPlaying(g *Game, trump common.Suit, leader, trickNumber int, hands [PlayersPerGame][]common.Card) {
	g.Phase = PhasePlaying
	g.HandNumber = 1
	g.Trump = trump
	g.HighBid = HighBid{Amount: MinBid, Seat: leader}
	g.CurrentPlayer = leader
	g.TrickNumber = trickNumber
	for i, h := range hands {
		g.Players[i].Hand = h
	}
}

// plays builds a trick from cards played by consecutive seats starting at leader.
func plays(t *testing.T, leader int, specs ...string) []Play {
	t.Helper()
	out := make([]Play, 0, len(specs))
	for i, c := range cards(t, specs...) {
		out = append(out, Play{Card: c, Seat: (leader + i) % PlayersPerGame})
	}
	return out
}

func completed(trump common.Suit, n int, ps []Play) CompletedTrick {
	w := ps[trickWinner(ps, trump)].Seat
	return CompletedTrick{Plays: ps, WinnerSeat: w, WinningTeam: TeamOf(w), TrickNumber: n}
}

func ledger(tricks []CompletedTrick) []PlayedCard {
	var out []PlayedCard
	for _, tr := range tricks {
		for _, p := range tr.Plays {
			out = append(out, PlayedCard{Card: p.Card, Seat: p.Seat, Team: TeamOf(p.Seat), TrickNumber: tr.TrickNumber})
		}
	}
	return out
}
