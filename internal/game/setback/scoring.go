package setback

import "github.com/maingk/setback-game/internal/game/common"

type Point string

const (
	PointHigh    Point = "high"
	PointLow     Point = "low"
	PointJack    Point = "jack"
	PointOffJack Point = "off_jack"
	PointJoker   Point = "joker"
	PointGame    Point = "game"
)

// Award is one of the six hand points.
type Award struct {
	Point Point        `json:"point"`
	Team  Team         `json:"team"`
	Seat  int          `json:"seat"` // NoSeat for the Game point
	Card  *common.Card `json:"card,omitempty"`
}

type HandScore struct {
	Trump      common.Suit `json:"trump"`
	Awards     []Award     `json:"awards"`
	Points     [2]int      `json:"points"`
	GameValues [2]int      `json:"game_values"`
}

// Has reports whether p was awarded this hand.
func (hs HandScore) Has(p Point) bool {
	_, ok := hs.Award(p)
	return ok
}

func (hs HandScore) Award(p Point) (Award, bool) {
	for _, a := range hs.Awards {
		if a.Point == p {
			return a, true
		}
	}
	return Award{}, false
}

// ScoreHand computes High, Low, Jack, Off-Jack, Joker and Game from the
// hand's played-card ledger and completed tricks. When no trump was played
// only the Game point is available.
func ScoreHand(trump common.Suit, played []PlayedCard, tricks []CompletedTrick) HandScore {
	hs := HandScore{Trump: trump}

	var high, low *PlayedCard
	for i := range played {
		pc := &played[i]
		if !IsTrump(pc.Card, trump) {
			continue
		}
		if high == nil || trumpRank(pc.Card) > trumpRank(high.Card) {
			high = pc
		}
		if low == nil || trumpRank(pc.Card) < trumpRank(low.Card) {
			low = pc
		}
	}

	if high != nil {
		hs.add(playedAward(PointHigh, *high))
		hs.add(playedAward(PointLow, *low))

		trumpJack := common.Card{Suit: trump, Rank: common.Jack}
		offJack := common.Card{Suit: OffJackSuit(trump), Rank: common.Jack}
		for _, pc := range played {
			if pc.Card == trumpJack {
				hs.add(playedAward(PointJack, pc))
			}
		}
		// The off-jack belongs to whoever took the trick, not whoever held it.
		for _, t := range tricks {
			for _, p := range t.Plays {
				if p.Card == offJack {
					c := p.Card
					hs.add(Award{Point: PointOffJack, Team: t.WinningTeam, Seat: t.WinnerSeat, Card: &c})
				}
			}
		}
		for _, pc := range played {
			if pc.Card.IsJoker() {
				hs.add(playedAward(PointJoker, pc))
			}
		}
	}

	for _, t := range tricks {
		for _, p := range t.Plays {
			hs.GameValues[t.WinningTeam] += cardValue(p.Card)
		}
	}
	gameTeam := TeamA
	if hs.GameValues[TeamB] > hs.GameValues[TeamA] {
		gameTeam = TeamB
	}
	hs.add(Award{Point: PointGame, Team: gameTeam, Seat: NoSeat})

	return hs
}

func playedAward(p Point, pc PlayedCard) Award {
	c := pc.Card
	return Award{Point: p, Team: pc.Team, Seat: pc.Seat, Card: &c}
}

func (hs *HandScore) add(a Award) {
	hs.Awards = append(hs.Awards, a)
	hs.Points[a.Team]++
}
