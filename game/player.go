package game

import "github.com/wfunc/cardbot/cards"

// Per-variant player records. They live in the variant table state keyed by
// PlayerID; the turn order never contains an identity without a record.

// BlackjackPlayer 21点玩家状态
type BlackjackPlayer struct {
	Hand   []cards.Card
	Chips  int
	Bet    int
	HasBet bool
	Stood  bool
	Busted bool
}

// Done reports whether the seat's turn phase is over.
func (p *BlackjackPlayer) Done() bool {
	return p.Stood || p.Busted
}

// PokerPlayer holds a five-card hand.
type PokerPlayer struct {
	Hand []cards.Card
}

// UnoPlayer holds an Uno hand, kept sorted by card priority for display.
type UnoPlayer struct {
	Hand []cards.UnoCard
}

// CounterPlayer tracks presses in the counter game.
type CounterPlayer struct {
	Presses int
}
