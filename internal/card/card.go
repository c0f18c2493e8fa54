package card

import (
	"fmt"
	"strconv"
)

// Suit is one of the four french suits.
type Suit string

const (
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
	Clubs    Suit = "clubs"
)

// Kind is the gameplay classification of a card. It is derived from the suit
// and never stored on its own.
type Kind string

const (
	Monster Kind = "monster"
	Weapon  Kind = "weapon"
	Potion  Kind = "potion"
)

const (
	MinValue = 2
	MaxValue = 14

	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

// KindOf maps a suit to its kind. Spades and clubs are both monster suits.
func KindOf(s Suit) Kind {
	switch s {
	case Diamonds:
		return Weapon
	case Hearts:
		return Potion
	default:
		return Monster
	}
}

// ParseSuit accepts the full suit name or its first letter.
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "diamonds", "d", "D":
		return Diamonds, nil
	case "hearts", "h", "H":
		return Hearts, nil
	case "spades", "s", "S":
		return Spades, nil
	case "clubs", "c", "C":
		return Clubs, nil
	}
	return "", fmt.Errorf("unknown suit %q", s)
}

// Record is the plain (suit, value) pair held by decks and saves.
type Record struct {
	Suit  Suit `json:"suit" yaml:"suit"`
	Value int  `json:"value" yaml:"value"`
}

func (r Record) Kind() Kind { return KindOf(r.Suit) }

// Valid reports whether the record has a known suit and a value in 2..14.
func (r Record) Valid() bool {
	if r.Value < MinValue || r.Value > MaxValue {
		return false
	}
	switch r.Suit {
	case Diamonds, Hearts, Spades, Clubs:
		return true
	}
	return false
}

func (r Record) String() string {
	return rankLabel(r.Value) + suitSymbol(r.Suit)
}

func rankLabel(v int) string {
	switch v {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	return strconv.Itoa(v)
}

func suitSymbol(s Suit) string {
	switch s {
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	}
	return "?"
}
