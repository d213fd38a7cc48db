package uno

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wfunc/cardbot/cards"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/session"
)

var (
	errNotPlayable   = errors.New("that card cannot be played")
	errBadCardIndex  = errors.New("no such card in your hand")
	errColorRequired = errors.New("playing a wild requires choosing a color")
)

// Table is the Uno table state stored in Game.Data.
type Table struct {
	Deck        *cards.Deck[cards.UnoCard]
	Discard     []cards.UnoCard
	Top         cards.UnoCard
	ActiveColor cards.Color
	Players     map[game.PlayerID]*game.UnoPlayer
	Winner      game.PlayerID
}

// Variant implements the Uno rule engine.
type Variant struct{}

func New() *Variant {
	return &Variant{}
}

func (v *Variant) Type() game.Type {
	return game.TypeUno
}

func (v *Variant) table(g *game.Game) *Table {
	t, ok := g.Data.(*Table)
	if !ok {
		t = &Table{Players: make(map[game.PlayerID]*game.UnoPlayer)}
		g.Data = t
	}
	return t
}

func (v *Variant) Join(g *game.Game, id game.PlayerID) error {
	t := v.table(g)
	if _, ok := t.Players[id]; !ok {
		t.Players[id] = &game.UnoPlayer{}
	}
	return nil
}

func (v *Variant) Leave(ctx session.Context, g *game.Game, id game.PlayerID) {
	delete(v.table(g).Players, id)
}

// Deal shuffles, gives every seat seven cards and flips a valid top card.
// Action and wild cards go back under the deck until a number card comes up.
func (v *Variant) Deal(ctx session.Context, g *game.Game) error {
	t := v.table(g)
	t.Deck = cards.NewUnoDeck()
	t.Deck.Shuffle()

	for _, id := range g.Turn.Seats() {
		hand, err := t.Deck.Draw(7)
		if err != nil {
			return err
		}
		SortHand(hand)
		t.Players[id].Hand = hand
	}

	for {
		top, err := t.Deck.DrawOne()
		if err != nil {
			return err
		}
		if top.Color == cards.Wild || top.IsAction() {
			t.Deck.PushBottom(top)
			continue
		}
		t.Top = top
		t.ActiveColor = top.Color
		t.Discard = []cards.UnoCard{top}
		return nil
	}
}

func (v *Variant) TurnFree(kind string) bool {
	return kind == "show-hand"
}

func (v *Variant) HandleAction(ctx session.Context, g *game.Game, actor game.PlayerID, act session.Action) (*session.Confirmable, error) {
	t := v.table(g)
	p, ok := t.Players[actor]
	if !ok {
		return nil, game.ErrNotSeated
	}

	switch act.Kind {
	case "play":
		idx, ok := act.Int("index")
		if !ok || idx < 0 || idx >= len(p.Hand) {
			return nil, errBadCardIndex
		}
		var chosen cards.Color
		if p.Hand[idx].Color == cards.Wild {
			name, ok := act.String("color")
			if !ok {
				return nil, errColorRequired
			}
			chosen, ok = parseColor(name)
			if !ok {
				return nil, errColorRequired
			}
		}
		return nil, v.play(ctx, g, t, actor, p, idx, chosen)

	case "draw":
		// Exhaustion is never surfaced to the player; with every card in
		// hands the draw is simply skipped.
		if card, ok := v.draw(t); ok {
			p.Hand = append(p.Hand, card)
			SortHand(p.Hand)
			ctx.NotifyPrivate(actor, fmt.Sprintf("You drew %v.", card))
		}
		ctx.AdvanceTurn()
		return nil, nil

	case "show-hand":
		ctx.NotifyPrivate(actor, v.handText(t, p))
		return nil, nil

	default:
		return nil, game.ErrUnknownAction
	}
}

// play validates and applies one card, including its turn effects. The win
// check runs after the play, before the turn advances.
func (v *Variant) play(ctx session.Context, g *game.Game, t *Table, actor game.PlayerID, p *game.UnoPlayer, idx int, chosen cards.Color) error {
	card := p.Hand[idx]
	if !Playable(card, t.Top, t.ActiveColor) {
		return errNotPlayable
	}

	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	t.Discard = append(t.Discard, card)
	t.Top = card
	if card.Color == cards.Wild {
		t.ActiveColor = chosen
	} else {
		t.ActiveColor = card.Color
	}

	if len(p.Hand) == 0 {
		t.Winner = actor
		g.Phase = game.PhaseRoundResolution
		ctx.SetResult(map[string]any{"winner": string(actor)})
		ctx.EndGame(fmt.Sprintf("%s wins", actor))
		return nil
	}

	switch card.Value {
	case cards.UnoSkip:
		g.Turn.SkipNext()
	case cards.UnoReverse:
		g.Turn.Reverse()
	case cards.UnoDrawTwo:
		v.penalize(ctx, g, t, 2)
	case cards.UnoDrawFour:
		v.penalize(ctx, g, t, 4)
	}

	ctx.AdvanceTurn()
	return nil
}

// penalize forces the next seat to draw n cards and skips them.
func (v *Variant) penalize(ctx session.Context, g *game.Game, t *Table, n int) {
	next, ok := g.Turn.Peek()
	if !ok {
		return
	}
	p, seated := t.Players[next]
	if !seated {
		return
	}
	for i := 0; i < n; i++ {
		card, ok := v.draw(t)
		if !ok {
			break
		}
		p.Hand = append(p.Hand, card)
	}
	SortHand(p.Hand)
	ctx.NotifyPrivate(next, fmt.Sprintf("You draw %d and are skipped.", n))
	g.Turn.SkipNext()
}

// draw takes the top of the draw deck, reshuffling the discard pile (minus
// the current top card) back in when the deck runs dry. Running completely
// out of cards is not an error; the draw is simply skipped.
func (v *Variant) draw(t *Table) (cards.UnoCard, bool) {
	if t.Deck.Len() == 0 {
		if len(t.Discard) <= 1 {
			return cards.UnoCard{}, false
		}
		recycled := make([]cards.UnoCard, len(t.Discard)-1)
		copy(recycled, t.Discard[:len(t.Discard)-1])
		t.Discard = t.Discard[len(t.Discard)-1:]
		t.Deck = cards.NewDeck(recycled)
		t.Deck.Shuffle()
	}
	card, err := t.Deck.DrawOne()
	if err != nil {
		return cards.UnoCard{}, false
	}
	return card, true
}

// AutoPlay plays the first legal card, choosing the commonest color in hand
// for wilds, and draws when nothing is playable.
func (v *Variant) AutoPlay(ctx session.Context, g *game.Game, actor game.PlayerID) (bool, error) {
	t := v.table(g)
	p, ok := t.Players[actor]
	if !ok {
		return false, nil
	}

	playable := PlayableCards(p.Hand, t.Top, t.ActiveColor)
	if len(playable) == 0 {
		if card, ok := v.draw(t); ok {
			p.Hand = append(p.Hand, card)
			SortHand(p.Hand)
		}
		ctx.AdvanceTurn()
		return true, nil
	}

	idx := playable[0]
	chosen := t.ActiveColor
	if p.Hand[idx].Color == cards.Wild {
		chosen = dominantColor(p.Hand)
	}
	return true, v.play(ctx, g, t, actor, p, idx, chosen)
}

func dominantColor(hand []cards.UnoCard) cards.Color {
	counts := make(map[cards.Color]int)
	best := cards.Red
	for _, c := range hand {
		if c.Color == cards.Wild {
			continue
		}
		counts[c.Color]++
		if counts[c.Color] > counts[best] {
			best = c.Color
		}
	}
	return best
}

func parseColor(name string) (cards.Color, bool) {
	switch strings.ToLower(name) {
	case "red":
		return cards.Red, true
	case "yellow":
		return cards.Yellow, true
	case "green":
		return cards.Green, true
	case "blue":
		return cards.Blue, true
	default:
		return 0, false
	}
}

func (v *Variant) handText(t *Table, p *game.UnoPlayer) string {
	var b strings.Builder
	b.WriteString("Your cards:\n")
	for i, c := range p.Hand {
		marker := " "
		if Playable(c, t.Top, t.ActiveColor) {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d: %v\n", marker, i, c)
	}
	return b.String()
}

func (v *Variant) Render(g *game.Game) string {
	t := v.table(g)
	var b strings.Builder

	switch g.Phase {
	case game.PhaseLobby:
		fmt.Fprintf(&b, "Welcome to this game of Uno. Feel free to join. (%d seated)", g.Turn.Len())

	case game.PhaseEnded, game.PhaseRoundResolution:
		if t.Winner != "" {
			fmt.Fprintf(&b, "%s wins!", t.Winner)
		} else {
			b.WriteString("Game over.")
		}

	default:
		fmt.Fprintf(&b, "Top card: %v", t.Top)
		if t.Top.Color == cards.Wild {
			fmt.Fprintf(&b, " (color: %v)", t.ActiveColor)
		}
		b.WriteString("\n")
		for _, id := range g.Turn.Seats() {
			p, ok := t.Players[id]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s: %d cards\n", id, len(p.Hand))
		}
		if cur, ok := g.Turn.Current(); ok {
			fmt.Fprintf(&b, "It is %s's turn.", cur)
		}
	}
	return b.String()
}

func (v *Variant) Controls(g *game.Game) notify.Controls {
	c := notify.Controls{Phase: g.Phase.String()}
	switch g.Phase {
	case game.PhaseLobby:
		c.Buttons = []notify.Control{notify.ControlJoin, notify.ControlQuit, notify.ControlStart}
	case game.PhaseInProgress:
		c.Buttons = []notify.Control{notify.ControlShowHand, notify.ControlPlayCard, notify.ControlDrawCard, notify.ControlQuit}
	}
	return c
}
