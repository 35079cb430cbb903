package setback

import "github.com/maingk/setback-game/internal/game/common"

// EffectiveSuit is the suit a card counts as for following: the joker is
// always trump, every other card keeps its printed suit.
func EffectiveSuit(c common.Card, trump common.Suit) common.Suit {
	if c.IsJoker() {
		return trump
	}
	return c.Suit
}

func IsTrump(c common.Card, trump common.Suit) bool {
	if trump == common.NoSuit {
		return false
	}
	return EffectiveSuit(c, trump) == trump
}

// comparisonValue ranks a card within one trick. Cards that neither follow
// the lead nor are trump score 0 and cannot win.
func comparisonValue(c common.Card, lead, trump common.Suit) int {
	suit := EffectiveSuit(c, trump)
	switch {
	case suit == trump && lead != trump:
		return 1000 + trumpRank(c)
	case suit == lead && lead == trump:
		return 1000 + trumpRank(c)
	case suit == lead:
		return regularRank(c)
	default:
		return 0
	}
}

// trickWinner returns the index into plays of the winning play.
func trickWinner(plays []Play, trump common.Suit) int {
	if len(plays) == 0 {
		return -1
	}
	lead := EffectiveSuit(plays[0].Card, trump)
	best, bestValue := 0, comparisonValue(plays[0].Card, lead, trump)
	for i := 1; i < len(plays); i++ {
		if v := comparisonValue(plays[i].Card, lead, trump); v > bestValue {
			best, bestValue = i, v
		}
	}
	return best
}

// canPlay applies must-follow-suit: a card is legal on an empty trick, when
// it follows the lead, or when the hand holds nothing of the lead suit.
func canPlay(hand []common.Card, idx int, trick []Play, trump common.Suit) bool {
	if len(trick) == 0 {
		return true
	}
	lead := EffectiveSuit(trick[0].Card, trump)
	if EffectiveSuit(hand[idx], trump) == lead {
		return true
	}
	for _, c := range hand {
		if EffectiveSuit(c, trump) == lead {
			return false
		}
	}
	return true
}
