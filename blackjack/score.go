package blackjack

import "github.com/wfunc/cardbot/cards"

// ScoreHand computes the blackjack value of a hand: number cards at face
// value, J/Q/K at 10, every ace at 11, then aces are downgraded to 1 one at a
// time while the total exceeds 21.
func ScoreHand(hand []cards.Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		switch {
		case c.Rank == cards.Ace:
			aces++
		case c.Rank >= cards.Ten:
			total += 10
		default:
			total += int(c.Rank) + 2
		}
	}
	total += 11 * aces
	for ; aces > 0 && total > 21; aces-- {
		total -= 10
	}
	return total
}
