// Package counter implements the simplest hosted variant: players take turns
// incrementing a shared counter, and whoever reaches the goal wins. It doubles
// as the smoke-test variant for the session engine.
package counter

import (
	"fmt"

	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/session"
)

// Table is the counter table state stored in Game.Data.
type Table struct {
	Count   int
	Goal    int
	Players map[game.PlayerID]*game.CounterPlayer
	Winner  game.PlayerID
}

type Variant struct {
	cfg config.GameConfig
}

func New(cfg config.GameConfig) *Variant {
	return &Variant{cfg: cfg}
}

func (v *Variant) Type() game.Type {
	return game.TypeCounter
}

func (v *Variant) table(g *game.Game) *Table {
	t, ok := g.Data.(*Table)
	if !ok {
		t = &Table{Players: make(map[game.PlayerID]*game.CounterPlayer)}
		g.Data = t
	}
	return t
}

func (v *Variant) Join(g *game.Game, id game.PlayerID) error {
	t := v.table(g)
	if _, ok := t.Players[id]; !ok {
		t.Players[id] = &game.CounterPlayer{}
	}
	return nil
}

func (v *Variant) Leave(ctx session.Context, g *game.Game, id game.PlayerID) {
	delete(v.table(g).Players, id)
}

func (v *Variant) Deal(ctx session.Context, g *game.Game) error {
	t := v.table(g)
	t.Count = 0
	t.Goal = v.cfg.CounterGoal
	return nil
}

func (v *Variant) TurnFree(kind string) bool {
	return false
}

func (v *Variant) HandleAction(ctx session.Context, g *game.Game, actor game.PlayerID, act session.Action) (*session.Confirmable, error) {
	if act.Kind != "increment" {
		return nil, game.ErrUnknownAction
	}
	return nil, v.increment(ctx, g, actor)
}

func (v *Variant) increment(ctx session.Context, g *game.Game, actor game.PlayerID) error {
	t := v.table(g)
	p, ok := t.Players[actor]
	if !ok {
		return game.ErrNotSeated
	}
	t.Count++
	p.Presses++

	if t.Count >= t.Goal {
		t.Winner = actor
		g.Phase = game.PhaseRoundResolution
		ctx.SetResult(map[string]any{"winner": string(actor), "count": t.Count})
		ctx.EndGame(fmt.Sprintf("%s reached %d", actor, t.Goal))
		return nil
	}
	ctx.AdvanceTurn()
	return nil
}

func (v *Variant) AutoPlay(ctx session.Context, g *game.Game, actor game.PlayerID) (bool, error) {
	return true, v.increment(ctx, g, actor)
}

func (v *Variant) Render(g *game.Game) string {
	t := v.table(g)
	switch g.Phase {
	case game.PhaseLobby:
		return fmt.Sprintf("Up for a counting game? (%d seated)", g.Turn.Len())
	case game.PhaseEnded, game.PhaseRoundResolution:
		if t.Winner != "" {
			return fmt.Sprintf("%s wins at %d!", t.Winner, t.Count)
		}
		return "Game over."
	default:
		cur, _ := g.Turn.Current()
		return fmt.Sprintf("Count: %d of %d. It is %s's turn.", t.Count, t.Goal, cur)
	}
}

func (v *Variant) Controls(g *game.Game) notify.Controls {
	c := notify.Controls{Phase: g.Phase.String()}
	switch g.Phase {
	case game.PhaseLobby:
		c.Buttons = []notify.Control{notify.ControlJoin, notify.ControlQuit, notify.ControlStart}
	case game.PhaseInProgress:
		c.Buttons = []notify.Control{notify.ControlIncrement, notify.ControlQuit}
	}
	return c
}
