package cards

import "strconv"

// Color represents an Uno card color. Wild is a color of its own, matching
// any active color when legality is checked.
type Color int

const (
	Red Color = iota
	Yellow
	Green
	Blue
	Wild
)

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case Wild:
		return "Wild"
	default:
		return "?"
	}
}

// Uno card values. Number cards use "0".."9".
const (
	UnoSkip     = "Skip"
	UnoReverse  = "Reverse"
	UnoDrawTwo  = "Draw Two"
	UnoWild     = "Wild"
	UnoDrawFour = "Draw Four"
)

// UnoCard is an immutable Uno card value. Equality is (Color, Value).
type UnoCard struct {
	Color Color
	Value string
}

func (c UnoCard) String() string {
	return c.Color.String() + " " + c.Value
}

// IsAction reports whether the card is a Skip, Reverse or Draw Two.
func (c UnoCard) IsAction() bool {
	return c.Value == UnoSkip || c.Value == UnoReverse || c.Value == UnoDrawTwo
}

// Priority is the derived sort score used to order a hand for display:
// grouped by color, numbers before action cards.
func (c UnoCard) Priority() int {
	p := 0
	switch c.Color {
	case Red:
		p += 0
	case Blue:
		p += 15
	case Green:
		p += 30
	case Yellow:
		p += 45
	case Wild:
		p += 60
	}
	switch c.Value {
	case UnoReverse:
		p += 11
	case UnoSkip:
		p += 12
	case UnoDrawTwo:
		p += 13
	case UnoDrawFour:
		p += 2
	case UnoWild:
		p += 0
	default:
		if n, err := strconv.Atoi(c.Value); err == nil {
			p += n
		}
	}
	return p
}

// NewUnoDeck builds the 108-card Uno deck: per color a single 0, two each of
// 1-9, and two each of Skip/Reverse/Draw Two; plus four Wilds and four
// Wild Draw Fours.
func NewUnoDeck() *Deck[UnoCard] {
	cs := make([]UnoCard, 0, 108)
	for color := Red; color <= Blue; color++ {
		cs = append(cs, UnoCard{Color: color, Value: "0"})
		for n := 1; n <= 9; n++ {
			v := strconv.Itoa(n)
			cs = append(cs, UnoCard{Color: color, Value: v}, UnoCard{Color: color, Value: v})
		}
		for i := 0; i < 2; i++ {
			cs = append(cs,
				UnoCard{Color: color, Value: UnoSkip},
				UnoCard{Color: color, Value: UnoReverse},
				UnoCard{Color: color, Value: UnoDrawTwo})
		}
	}
	for i := 0; i < 4; i++ {
		cs = append(cs,
			UnoCard{Color: Wild, Value: UnoWild},
			UnoCard{Color: Wild, Value: UnoDrawFour})
	}
	return NewDeck(cs)
}
