package setback

import (
	"fmt"
	"math/rand/v2"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/models"
)

// maxAutoSteps bounds every auto-play loop. A full hand is 4 bids, 1 trump
// pick and 24 plays, so this is generous.
const maxAutoSteps = 256

type AutoKind string

const (
	AutoKindBid   AutoKind = "bid"
	AutoKindTrump AutoKind = "trump"
	AutoKindPlay  AutoKind = "play"
)

// AutoAction describes the single move AutoPlay made.
type AutoAction struct {
	Seat  int             `json:"seat"`
	Kind  AutoKind        `json:"kind"`
	Bid   int             `json:"bid,omitempty"`
	Suit  common.Suit     `json:"suit,omitempty"`
	Card  *common.Card    `json:"card,omitempty"`
	Trick *CompletedTrick `json:"trick,omitempty"`
}

// AutoPlay makes one random legal move for whoever is to act. It returns
// false when the current phase has no move to make.
func (g *Game) AutoPlay(rng *rand.Rand) (AutoAction, bool, error) {
	if rng == nil {
		rng = g.rng
	}
	switch g.Phase {
	case PhaseBidding:
		seat := g.CurrentBidder
		amount := chooseBid(rng, g.HighBid.Amount)
		if err := g.PlaceBid(seat, amount); err != nil {
			return AutoAction{}, false, err
		}
		return AutoAction{Seat: seat, Kind: AutoKindBid, Bid: amount}, true, nil

	case PhaseTrumpSelection:
		seat := g.HighBid.Seat
		suit := chooseTrump(rng, g.Players[seat].Hand)
		if err := g.SelectTrump(seat, suit); err != nil {
			return AutoAction{}, false, err
		}
		return AutoAction{Seat: seat, Kind: AutoKindTrump, Suit: suit}, true, nil

	case PhasePlaying:
		seat := g.CurrentPlayer
		legal := g.LegalPlays(seat)
		if len(legal) == 0 {
			return AutoAction{}, false, fmt.Errorf("seat %d has no legal play: %w", seat, models.ErrAutoPlayStalled)
		}
		idx := legal[rng.IntN(len(legal))]
		card := g.Players[seat].Hand[idx]
		trick, err := g.PlayCard(seat, idx)
		if err != nil {
			return AutoAction{}, false, err
		}
		return AutoAction{Seat: seat, Kind: AutoKindPlay, Card: &card, Trick: trick}, true, nil
	}
	return AutoAction{}, false, nil
}

// AutoCompleteBidding plays out the rest of the auction. The game is left in
// trump selection.
func (g *Game) AutoCompleteBidding(rng *rand.Rand) ([]AutoAction, error) {
	if g.Phase != PhaseBidding {
		return nil, fmt.Errorf("complete bidding in %s: %w", g.Phase, models.ErrWrongPhase)
	}
	return g.autoUntil(rng, func() bool { return g.Phase != PhaseBidding })
}

// AutoCompleteHand drives the current hand through bidding, trump and play
// until it is scored.
func (g *Game) AutoCompleteHand(rng *rand.Rand) ([]AutoAction, error) {
	switch g.Phase {
	case PhaseBidding, PhaseTrumpSelection, PhasePlaying:
	default:
		return nil, fmt.Errorf("complete hand in %s: %w", g.Phase, models.ErrWrongPhase)
	}
	return g.autoUntil(rng, func() bool {
		return g.Phase == PhaseScoring || g.Phase == PhaseGameOver
	})
}

// AutoCompleteGame plays whole hands until a team reaches WinningScore or
// maxHands hands have been played by this call. It returns the number of
// hands it finished.
func (g *Game) AutoCompleteGame(rng *rand.Rand, maxHands int) (int, error) {
	if g.Phase == PhaseGameOver {
		return 0, fmt.Errorf("complete game in %s: %w", g.Phase, models.ErrWrongPhase)
	}
	hands := 0
	for hands < maxHands && g.Phase != PhaseGameOver {
		if g.Phase == PhaseWaiting || g.Phase == PhaseScoring {
			if err := g.StartNewHand(); err != nil {
				return hands, err
			}
		}
		if _, err := g.AutoCompleteHand(rng); err != nil {
			return hands, err
		}
		hands++
	}
	return hands, nil
}

func (g *Game) autoUntil(rng *rand.Rand, done func() bool) ([]AutoAction, error) {
	var actions []AutoAction
	for step := 0; !done(); step++ {
		if step >= maxAutoSteps {
			return actions, fmt.Errorf("after %d steps in %s: %w", step, g.Phase, models.ErrAutoPlayStalled)
		}
		a, ok, err := g.AutoPlay(rng)
		if err != nil {
			return actions, err
		}
		if !ok {
			return actions, fmt.Errorf("no move in %s: %w", g.Phase, models.ErrAutoPlayStalled)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// chooseBid picks uniformly among a pass and every bid that would be legal.
func chooseBid(rng *rand.Rand, high int) int {
	low := max(MinBid, high+1)
	n := MaxBid - low + 1
	if n <= 0 {
		return Pass
	}
	if pick := rng.IntN(n + 1); pick < n {
		return low + pick
	}
	return Pass
}

// chooseTrump names the suit of a random non-joker card in hand, or any
// suit when the hand is only the joker.
func chooseTrump(rng *rand.Rand, hand []common.Card) common.Suit {
	var suits []common.Suit
	for _, c := range hand {
		if !c.IsJoker() {
			suits = append(suits, c.Suit)
		}
	}
	if len(suits) == 0 {
		return common.Suits[rng.IntN(len(common.Suits))]
	}
	return suits[rng.IntN(len(suits))]
}
