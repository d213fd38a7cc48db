package poker

import (
	"fmt"
	"strings"

	"github.com/wfunc/cardbot/cards"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/session"
)

// Table is the poker table state stored in Game.Data.
type Table struct {
	Deck     *cards.Deck[cards.Card]
	Players  map[game.PlayerID]*game.PokerPlayer
	Revealed bool
	Winners  []game.PlayerID
}

// Variant implements five-card showdown poker: every seat gets five cards,
// players inspect their hands privately, and any player may call the
// showdown.
type Variant struct{}

func New() *Variant {
	return &Variant{}
}

func (v *Variant) Type() game.Type {
	return game.TypePoker
}

func (v *Variant) table(g *game.Game) *Table {
	t, ok := g.Data.(*Table)
	if !ok {
		t = &Table{Players: make(map[game.PlayerID]*game.PokerPlayer)}
		g.Data = t
	}
	return t
}

func (v *Variant) Join(g *game.Game, id game.PlayerID) error {
	t := v.table(g)
	if _, ok := t.Players[id]; !ok {
		t.Players[id] = &game.PokerPlayer{}
	}
	return nil
}

func (v *Variant) Leave(ctx session.Context, g *game.Game, id game.PlayerID) {
	delete(v.table(g).Players, id)
}

func (v *Variant) Deal(ctx session.Context, g *game.Game) error {
	t := v.table(g)
	t.Deck = cards.NewStandardDeck()
	t.Deck.Shuffle()
	for _, id := range g.Turn.Seats() {
		hand, err := t.Deck.Draw(5)
		if err != nil {
			return err
		}
		t.Players[id].Hand = hand
	}
	return nil
}

func (v *Variant) TurnFree(kind string) bool {
	// No turn-bound actions in a showdown round.
	return true
}

func (v *Variant) HandleAction(ctx session.Context, g *game.Game, actor game.PlayerID, act session.Action) (*session.Confirmable, error) {
	t := v.table(g)
	p, ok := t.Players[actor]
	if !ok {
		return nil, game.ErrNotSeated
	}

	switch act.Kind {
	case "show-hand":
		ranking, err := RankHand(p.Hand)
		if err != nil {
			return nil, err
		}
		ctx.NotifyPrivate(actor, fmt.Sprintf("Your hand: %s (%s)", handString(p.Hand), ranking.Category()))
		return nil, nil

	case "showdown":
		v.showdown(ctx, g, t)
		return nil, nil

	default:
		return nil, game.ErrUnknownAction
	}
}

// showdown ranks every hand, announces the winners and ends the round.
func (v *Variant) showdown(ctx session.Context, g *game.Game, t *Table) {
	var best Ranking
	results := map[string]any{}
	for _, id := range g.Turn.Seats() {
		p, ok := t.Players[id]
		if !ok {
			continue
		}
		ranking, err := RankHand(p.Hand)
		if err != nil {
			continue
		}
		results[string(id)] = map[string]any{
			"hand":     handString(p.Hand),
			"category": ranking.Category().String(),
		}
		switch {
		case best == nil || ranking.Compare(best) > 0:
			best = ranking
			t.Winners = []game.PlayerID{id}
		case ranking.Compare(best) == 0:
			t.Winners = append(t.Winners, id)
		}
	}

	t.Revealed = true
	g.Phase = game.PhaseRoundResolution
	winners := make([]string, len(t.Winners))
	for i, id := range t.Winners {
		winners[i] = string(id)
	}
	ctx.SetResult(map[string]any{
		"winners": winners,
		"players": results,
	})
	ctx.EndGame("showdown")
}

func (v *Variant) AutoPlay(ctx session.Context, g *game.Game, actor game.PlayerID) (bool, error) {
	// Nothing is turn-driven here; CPU seats just wait for the showdown.
	return false, nil
}

func (v *Variant) Render(g *game.Game) string {
	t := v.table(g)
	var b strings.Builder

	switch {
	case g.Phase == game.PhaseLobby:
		fmt.Fprintf(&b, "Welcome to this game of poker. Feel free to join. (%d seated)", g.Turn.Len())

	case t.Revealed:
		for _, id := range g.Turn.Seats() {
			p, ok := t.Players[id]
			if !ok {
				continue
			}
			ranking, err := RankHand(p.Hand)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "%s: %s (%s)\n", id, handString(p.Hand), ranking.Category())
		}
		names := make([]string, len(t.Winners))
		for i, id := range t.Winners {
			names[i] = string(id)
		}
		fmt.Fprintf(&b, "Winner: %s", strings.Join(names, ", "))

	default:
		fmt.Fprintf(&b, "Hands are dealt. Check your cards and call the showdown when ready.")
	}
	return b.String()
}

func (v *Variant) Controls(g *game.Game) notify.Controls {
	c := notify.Controls{Phase: g.Phase.String()}
	switch g.Phase {
	case game.PhaseLobby:
		c.Buttons = []notify.Control{notify.ControlJoin, notify.ControlQuit, notify.ControlStart}
	case game.PhaseInProgress:
		c.Buttons = []notify.Control{notify.ControlShowHand, notify.ControlShowdown, notify.ControlQuit}
	}
	return c
}

func handString(hand []cards.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
