package uno

import (
	"sort"

	"github.com/wfunc/cardbot/cards"
)

// Playable reports whether a card may be played on the current top card.
// active is the color in force, which differs from the top card's own color
// after a wild.
func Playable(c, top cards.UnoCard, active cards.Color) bool {
	if c.Color == cards.Wild {
		return true
	}
	return c.Color == active || c.Value == top.Value
}

// PlayableCards returns the indexes of the playable cards in a hand.
func PlayableCards(hand []cards.UnoCard, top cards.UnoCard, active cards.Color) []int {
	var out []int
	for i, c := range hand {
		if Playable(c, top, active) {
			out = append(out, i)
		}
	}
	return out
}

// SortHand orders a hand by priority for display.
func SortHand(hand []cards.UnoCard) {
	sort.Slice(hand, func(i, j int) bool {
		return hand[i].Priority() < hand[j].Priority()
	})
}
