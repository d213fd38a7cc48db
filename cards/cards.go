package cards

import (
	"errors"
	"math/rand"
)

// ErrEmptyDeck is returned when a draw asks for more cards than remain.
var ErrEmptyDeck = errors.New("deck is empty")

// Suit represents a card suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank, ordered Two..Ace for comparisons.
type Rank int

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return rankNames[r]
}

// Card is an immutable playing card value.
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// Deck is an ordered pile of cards. Draw removes from the top,
// PushBottom appends to the bottom.
type Deck[C any] struct {
	cards []C
}

// NewDeck wraps the given cards as a deck. The slice is owned by the deck
// afterwards.
func NewDeck[C any](cards []C) *Deck[C] {
	return &Deck[C]{cards: cards}
}

func (d *Deck[C]) Len() int {
	return len(d.cards)
}

// Shuffle randomizes the deck order using the shared math/rand source.
func (d *Deck[C]) Shuffle() {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// ShuffleWith randomizes the deck order with an explicit source, so callers
// that need reproducible deals can thread a seed through.
func (d *Deck[C]) ShuffleWith(r *rand.Rand) {
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top n cards. The deck is not modified when
// fewer than n cards remain.
func (d *Deck[C]) Draw(n int) ([]C, error) {
	if n > len(d.cards) {
		return nil, ErrEmptyDeck
	}
	drawn := d.cards[len(d.cards)-n:]
	d.cards = d.cards[:len(d.cards)-n]
	out := make([]C, n)
	for i, c := range drawn {
		out[n-1-i] = c
	}
	return out, nil
}

// DrawOne removes and returns the top card.
func (d *Deck[C]) DrawOne() (C, error) {
	var zero C
	cs, err := d.Draw(1)
	if err != nil {
		return zero, err
	}
	return cs[0], nil
}

// PushBottom places cards under the deck.
func (d *Deck[C]) PushBottom(cards ...C) {
	d.cards = append(cards, d.cards...)
}

// NewStandardDeck builds the 52-card deck in deterministic base order.
func NewStandardDeck() *Deck[Card] {
	cs := make([]Card, 0, 52)
	for s := Spades; s <= Clubs; s++ {
		for r := Two; r <= Ace; r++ {
			cs = append(cs, Card{Suit: s, Rank: r})
		}
	}
	return NewDeck(cs)
}
