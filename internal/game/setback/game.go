package setback

import (
	"fmt"
	"math/rand/v2"

	"github.com/maingk/setback-game/internal/game/common"
	"github.com/maingk/setback-game/internal/models"
)

// Seat identifies the player sitting at one position for the whole game.
type Seat struct {
	ID   string
	Name string
}

type Player struct {
	ID   string
	Name string
	Seat int
	Team Team
	Hand []common.Card
}

type Bid struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"` // Pass for a pass
}

func (b Bid) IsPass() bool {
	return b.Amount == Pass
}

// HighBid is the best non-pass bid so far; Seat is NoSeat before any bid.
type HighBid struct {
	Amount int `json:"amount"`
	Seat   int `json:"seat"`
}

type Play struct {
	Card common.Card `json:"card"`
	Seat int         `json:"seat"`
}

// PlayedCard is one entry of the per-hand ledger used for scoring.
type PlayedCard struct {
	Card        common.Card `json:"card"`
	Seat        int         `json:"seat"`
	Team        Team        `json:"team"`
	TrickNumber int         `json:"trick_number"`
}

type CompletedTrick struct {
	Plays       []Play `json:"plays"`
	WinnerSeat  int    `json:"winner_seat"`
	WinningTeam Team   `json:"winning_team"`
	TrickNumber int    `json:"trick_number"`
}

// Game is the authoritative state of one Setback game. It is not safe for
// concurrent use; the owning room serializes every call.
type Game struct {
	ID     string
	RoomID string
	Phase  Phase

	Players    [PlayersPerGame]*Player
	HandNumber int

	Dealer        int
	CurrentBidder int
	CurrentPlayer int

	Trump   common.Suit
	HighBid HighBid
	Bids    []Bid

	Trick       []Play
	TrickNumber int
	Tricks      []CompletedTrick
	TricksWon   [2]int
	Played      []PlayedCard

	HandPoints [2]int
	Scores     [2]int
	LastHand   *HandScore

	deck *common.Deck
	rng  *rand.Rand
}

// NewGame seats four players in the waiting phase with seat 0 as the first
// dealer. A nil rng gets a crypto-seeded generator of its own.
func NewGame(id, roomID string, seats [PlayersPerGame]Seat, rng *rand.Rand) *Game {
	if rng == nil {
		rng = common.NewRand()
	}
	g := &Game{
		ID:      id,
		RoomID:  roomID,
		Phase:   PhaseWaiting,
		Dealer:  0,
		HighBid: HighBid{Amount: 0, Seat: NoSeat},
		rng:     rng,
	}
	for i, s := range seats {
		g.Players[i] = &Player{ID: s.ID, Name: s.Name, Seat: i, Team: TeamOf(i)}
	}
	return g
}

// StartNewHand deals a fresh hand and opens bidding left of the dealer.
// The dealer stays at seat 0 for the first hand and rotates on every later one.
func (g *Game) StartNewHand() error {
	if g.Phase != PhaseWaiting && g.Phase != PhaseScoring {
		return fmt.Errorf("start hand in %s: %w", g.Phase, models.ErrWrongPhase)
	}

	dealer := g.Dealer
	if g.HandNumber > 0 {
		dealer = (dealer + 1) % PlayersPerGame
	}

	deck := common.NewDeck()
	deck.Shuffle(g.rng)

	// One card at a time around the table, seat 0 first.
	var hands [PlayersPerGame][]common.Card
	for round := 0; round < CardsPerPlayer; round++ {
		for seat := 0; seat < PlayersPerGame; seat++ {
			cards, err := deck.Deal(1)
			if err != nil {
				return fmt.Errorf("deal hand %d: %w", g.HandNumber+1, err)
			}
			hands[seat] = append(hands[seat], cards[0])
		}
	}

	g.Phase = PhaseDealing
	g.HandNumber++
	g.Dealer = dealer
	g.deck = deck
	g.Trump = common.NoSuit
	g.HighBid = HighBid{Amount: 0, Seat: NoSeat}
	g.Bids = nil
	g.Trick = nil
	g.TrickNumber = 0
	g.Tricks = nil
	g.TricksWon = [2]int{}
	g.Played = nil
	g.HandPoints = [2]int{}
	for seat, p := range g.Players {
		p.Hand = hands[seat]
	}

	g.CurrentBidder = (dealer + 1) % PlayersPerGame
	g.CurrentPlayer = g.CurrentBidder
	g.Phase = PhaseBidding
	return nil
}

// PlaceBid records a bid (or Pass) for the seat whose turn it is.
func (g *Game) PlaceBid(seat, amount int) error {
	if g.Phase != PhaseBidding {
		return fmt.Errorf("bid in %s: %w", g.Phase, models.ErrWrongPhase)
	}
	if seat != g.CurrentBidder {
		return fmt.Errorf("seat %d bid, expected seat %d: %w", seat, g.CurrentBidder, models.ErrOutOfTurn)
	}
	if amount != Pass {
		if amount < MinBid || amount > MaxBid {
			return fmt.Errorf("bid must be between %d and %d: %w", MinBid, MaxBid, models.ErrInvalidBid)
		}
		if amount <= g.HighBid.Amount {
			return fmt.Errorf("bid must be higher than %d: %w", g.HighBid.Amount, models.ErrInvalidBid)
		}
	}

	g.Bids = append(g.Bids, Bid{Seat: seat, Amount: amount})
	if amount != Pass {
		g.HighBid = HighBid{Amount: amount, Seat: seat}
	}
	g.CurrentBidder = (g.CurrentBidder + 1) % PlayersPerGame

	if len(g.Bids) == PlayersPerGame {
		if g.HighBid.Seat == NoSeat {
			// Everyone passed: the dealer is stuck with the minimum.
			g.HighBid = HighBid{Amount: MinBid, Seat: g.Dealer}
		}
		g.Phase = PhaseTrumpSelection
	}
	return nil
}

// SelectTrump lets the auction winner name trump and lead the first trick.
func (g *Game) SelectTrump(seat int, suit common.Suit) error {
	if g.Phase != PhaseTrumpSelection {
		return fmt.Errorf("select trump in %s: %w", g.Phase, models.ErrWrongPhase)
	}
	if seat != g.HighBid.Seat {
		return fmt.Errorf("seat %d is not the bidder (seat %d): %w", seat, g.HighBid.Seat, models.ErrWrongPlayer)
	}
	if !suit.Valid() {
		return fmt.Errorf("suit %q: %w", suit, models.ErrInvalidSuit)
	}

	g.Trump = suit
	g.CurrentPlayer = g.HighBid.Seat
	g.Trick = nil
	g.Tricks = nil
	g.TrickNumber = 1
	g.TricksWon = [2]int{}
	g.Phase = PhasePlaying
	return nil
}

// PlayCard plays hand[index] for seat. When the play completes a trick the
// resolved trick is returned; otherwise the result is nil.
func (g *Game) PlayCard(seat, index int) (*CompletedTrick, error) {
	if g.Phase != PhasePlaying {
		return nil, fmt.Errorf("play in %s: %w", g.Phase, models.ErrWrongPhase)
	}
	if seat != g.CurrentPlayer {
		return nil, fmt.Errorf("seat %d played, expected seat %d: %w", seat, g.CurrentPlayer, models.ErrOutOfTurn)
	}
	p := g.Players[seat]
	if index < 0 || index >= len(p.Hand) {
		return nil, fmt.Errorf("card index %d of %d: %w", index, len(p.Hand), models.ErrInvalidCard)
	}
	if !canPlay(p.Hand, index, g.Trick, g.Trump) {
		lead := EffectiveSuit(g.Trick[0].Card, g.Trump)
		return nil, fmt.Errorf("%s led, cannot play %s: %w", lead, p.Hand[index], models.ErrMustFollowSuit)
	}

	card := p.Hand[index]
	p.Hand = append(p.Hand[:index:index], p.Hand[index+1:]...)
	g.Trick = append(g.Trick, Play{Card: card, Seat: seat})
	g.Played = append(g.Played, PlayedCard{Card: card, Seat: seat, Team: TeamOf(seat), TrickNumber: g.TrickNumber})

	if len(g.Trick) < PlayersPerGame {
		g.CurrentPlayer = (g.CurrentPlayer + 1) % PlayersPerGame
		return nil, nil
	}
	done := g.resolveTrick()
	return &done, nil
}

// LegalPlays lists the hand indices seat may play right now. It is empty
// outside the playing phase or when it is not seat's turn.
func (g *Game) LegalPlays(seat int) []int {
	if g.Phase != PhasePlaying || seat != g.CurrentPlayer {
		return nil
	}
	hand := g.Players[seat].Hand
	var out []int
	for i := range hand {
		if canPlay(hand, i, g.Trick, g.Trump) {
			out = append(out, i)
		}
	}
	return out
}

func (g *Game) resolveTrick() CompletedTrick {
	w := trickWinner(g.Trick, g.Trump)
	winner := g.Trick[w].Seat
	done := CompletedTrick{
		Plays:       g.Trick,
		WinnerSeat:  winner,
		WinningTeam: TeamOf(winner),
		TrickNumber: g.TrickNumber,
	}
	g.Tricks = append(g.Tricks, done)
	g.TricksWon[done.WinningTeam]++
	g.Trick = nil

	if g.TrickNumber >= TricksPerHand {
		g.completeHand()
		return done
	}
	g.TrickNumber++
	g.CurrentPlayer = winner
	return done
}

func (g *Game) completeHand() {
	g.Phase = PhaseScoring
	hs := ScoreHand(g.Trump, g.Played, g.Tricks)
	g.LastHand = &hs
	g.HandPoints = hs.Points
	g.Scores[TeamA] += hs.Points[TeamA]
	g.Scores[TeamB] += hs.Points[TeamB]
	if g.Scores[TeamA] >= WinningScore || g.Scores[TeamB] >= WinningScore {
		g.Phase = PhaseGameOver
	}
}

// Winner reports the winning team once the game is over. Equal scores go
// to TeamA, matching the Game-point tie rule.
func (g *Game) Winner() (Team, bool) {
	if g.Phase != PhaseGameOver {
		return TeamA, false
	}
	if g.Scores[TeamB] > g.Scores[TeamA] {
		return TeamB, true
	}
	return TeamA, true
}

// DeckSize is the number of undealt cards left this hand.
func (g *Game) DeckSize() int {
	if g.deck == nil {
		return 0
	}
	return g.deck.Size()
}
