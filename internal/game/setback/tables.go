package setback

import "github.com/maingk/setback-game/internal/game/common"

const (
	PlayersPerGame = 4
	CardsPerPlayer = 6
	TricksPerHand  = CardsPerPlayer
	WinningScore   = 21
	MinBid         = 2
	MaxBid         = 6

	// Pass is the bid amount recorded for a pass.
	Pass = 0

	// NoSeat marks an unset seat reference (high bid before any bid).
	NoSeat = -1
)

type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseDealing        Phase = "dealing"
	PhaseBidding        Phase = "bidding"
	PhaseTrumpSelection Phase = "trump_selection"
	PhasePlaying        Phase = "playing"
	PhaseScoring        Phase = "scoring"
	PhaseGameOver       Phase = "game_over"
)

// Team is derived from the seat and never changes: seats 0,2 are TeamA.
type Team int

const (
	TeamA Team = 0
	TeamB Team = 1
)

func TeamOf(seat int) Team {
	return Team(seat % 2)
}

func (t Team) String() string {
	if t == TeamA {
		return "team_a"
	}
	return "team_b"
}

// High to low. The joker sits between the jack and the ten.
var TrumpRankOrder = []common.Rank{
	common.Ace, common.King, common.Queen, common.Jack, common.Joker,
	common.Ten, common.Nine, common.Eight, common.Seven, common.Six,
	common.Five, common.Four, common.Three, common.Two,
}

// High to low.
var RegularRankOrder = []common.Rank{
	common.Ace, common.King, common.Queen, common.Jack,
	common.Ten, common.Nine, common.Eight, common.Seven, common.Six,
	common.Five, common.Four, common.Three, common.Two,
}

// CardValues feed the Game point. Ranks not listed are worth 0.
var CardValues = map[common.Rank]int{
	common.Ace:   4,
	common.King:  3,
	common.Queen: 2,
	common.Jack:  1,
	common.Ten:   10,
	common.Joker: 1,
}

var (
	trumpRanks   = strengthTable(TrumpRankOrder)
	regularRanks = strengthTable(RegularRankOrder)
)

// strengthTable turns a high-to-low order into rank -> strength, where the
// lowest entry is 1 and the highest is len(order).
func strengthTable(order []common.Rank) map[common.Rank]int {
	m := make(map[common.Rank]int, len(order))
	for i, r := range order {
		m[r] = len(order) - i
	}
	return m
}

func trumpRank(c common.Card) int {
	return trumpRanks[c.Rank]
}

func regularRank(c common.Card) int {
	return regularRanks[c.Rank]
}

func cardValue(c common.Card) int {
	return CardValues[c.Rank]
}

// OffJackSuit is the other suit of trump's color.
func OffJackSuit(trump common.Suit) common.Suit {
	switch trump {
	case common.Spades:
		return common.Clubs
	case common.Clubs:
		return common.Spades
	case common.Hearts:
		return common.Diamonds
	case common.Diamonds:
		return common.Hearts
	}
	return common.NoSuit
}
