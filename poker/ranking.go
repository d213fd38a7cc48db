package poker

import (
	"errors"
	"sort"

	"github.com/wfunc/cardbot/cards"
)

// ErrInvalidHandSize is returned when a hand does not hold exactly five cards.
var ErrInvalidHandSize = errors.New("hand must contain exactly 5 cards")

// Category is the hand category, ordered weakest to strongest.
type Category int

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "high card"
	case OnePair:
		return "one pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	case RoyalFlush:
		return "royal flush"
	default:
		return "unknown"
	}
}

// Ranking is a comparable hand key: the category first, then tiebreak ranks
// in significance order. Compare lexicographically.
type Ranking []int

// Category returns the hand category of a ranking.
func (r Ranking) Category() Category {
	if len(r) == 0 {
		return 0
	}
	return Category(r[0])
}

// Compare returns -1, 0 or 1 ordering two rankings lexicographically. A
// shorter ranking that is a prefix of the other ties; category tuples for the
// same category always have equal length.
func (r Ranking) Compare(other Ranking) int {
	n := len(r)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if r[i] != other[i] {
			if r[i] > other[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// RankHand produces the ranking key for an exactly-five-card hand. Categories
// are checked strongest to weakest and the first match wins. The ace-low
// straight (A-2-3-4-5) counts, with the five as the high card.
func RankHand(hand []cards.Card) (Ranking, error) {
	if len(hand) != 5 {
		return nil, ErrInvalidHandSize
	}

	desc := make([]int, 5)
	for i, c := range hand {
		desc[i] = int(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(desc)))

	flush := true
	for _, c := range hand {
		if c.Suit != hand[0].Suit {
			flush = false
			break
		}
	}
	straightHigh, straight := straightHigh(desc)

	if flush && straight && straightHigh == int(cards.Ace) {
		return Ranking{int(RoyalFlush)}, nil
	}
	if flush && straight {
		return Ranking{int(StraightFlush), straightHigh}, nil
	}

	// Group ranks by multiplicity, groups of equal size ordered by rank.
	counts := make(map[int]int)
	for _, r := range desc {
		counts[r]++
	}
	type group struct{ rank, n int }
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{r, n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].n != groups[j].n {
			return groups[i].n > groups[j].n
		}
		return groups[i].rank > groups[j].rank
	})

	if groups[0].n == 4 {
		return Ranking{int(FourOfAKind), groups[0].rank, groups[1].rank}, nil
	}
	if groups[0].n == 3 && groups[1].n == 2 {
		return Ranking{int(FullHouse), groups[0].rank, groups[1].rank}, nil
	}
	if flush {
		return append(Ranking{int(Flush)}, desc...), nil
	}
	if straight {
		return Ranking{int(Straight), straightHigh}, nil
	}
	if groups[0].n == 3 {
		return Ranking{int(ThreeOfAKind), groups[0].rank, groups[1].rank, groups[2].rank}, nil
	}
	if groups[0].n == 2 && groups[1].n == 2 {
		return Ranking{int(TwoPair), groups[0].rank, groups[1].rank, groups[2].rank}, nil
	}
	if groups[0].n == 2 {
		return Ranking{int(OnePair), groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}, nil
	}
	return append(Ranking{int(HighCard)}, desc...), nil
}

// straightHigh reports whether five descending ranks form a straight and
// returns the high rank. Every adjacent pair is checked; the ace-low wheel is
// the one special case.
func straightHigh(desc []int) (int, bool) {
	wheel := []int{int(cards.Ace), int(cards.Five), int(cards.Four), int(cards.Three), int(cards.Two)}
	isWheel := true
	for i, r := range wheel {
		if desc[i] != r {
			isWheel = false
			break
		}
	}
	if isWheel {
		return int(cards.Five), true
	}
	for i := 0; i < 4; i++ {
		if desc[i] != desc[i+1]+1 {
			return 0, false
		}
	}
	return desc[0], true
}

// Outcome of comparing two hands.
type Outcome int

const (
	Tie Outcome = iota
	FirstWins
	SecondWins
)

// CompareHands ranks both hands and compares the keys lexicographically.
func CompareHands(a, b []cards.Card) (Outcome, error) {
	ra, err := RankHand(a)
	if err != nil {
		return Tie, err
	}
	rb, err := RankHand(b)
	if err != nil {
		return Tie, err
	}
	switch ra.Compare(rb) {
	case 1:
		return FirstWins, nil
	case -1:
		return SecondWins, nil
	default:
		return Tie, nil
	}
}
