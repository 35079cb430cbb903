package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Suit string

const (
	NoSuit   Suit = ""
	Spades   Suit = "spades"
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
)

// Suits lists the four real suits in deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) Valid() bool {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}
	return false
}

func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	}
	return ""
}

// MarshalJSON encodes NoSuit as null so the joker reads {"suit":null}.
func (s Suit) MarshalJSON() ([]byte, error) {
	if s == NoSuit {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *Suit) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = NoSuit
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseSuit(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit accepts the full name or the one-letter form (S/H/D/C).
func ParseSuit(v string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "spades", "s":
		return Spades, nil
	case "hearts", "h":
		return Hearts, nil
	case "diamonds", "d":
		return Diamonds, nil
	case "clubs", "c":
		return Clubs, nil
	}
	return NoSuit, fmt.Errorf("invalid suit %q", v)
}

type Rank string

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
	Joker Rank = "JOKER"
)

// Ranks lists the thirteen suited ranks, low to high.
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// JokerCard is the single suitless card in the deck.
var JokerCard = Card{Suit: NoSuit, Rank: Joker}

func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// ID is a stable identifier, e.g. "10_spades" or "JOKER_".
func (c Card) ID() string {
	return string(c.Rank) + "_" + string(c.Suit)
}

func (c Card) String() string {
	if c.IsJoker() {
		return "JOKER"
	}
	return string(c.Rank) + c.Suit.Symbol()
}

// ParseCard reads the compact form used by the debug tooling: "10S", "ah", "JOKER".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == string(Joker) {
		return JokerCard, nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit, err := ParseSuit(s[len(s)-1:])
	if err != nil {
		return Card{}, err
	}
	r := Rank(s[:len(s)-1])
	for _, known := range Ranks {
		if r == known {
			return Card{Suit: suit, Rank: r}, nil
		}
	}
	return Card{}, fmt.Errorf("invalid rank %q", r)
}
