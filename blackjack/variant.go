package blackjack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wfunc/cardbot/cards"
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/session"
)

// Stage is the sub-phase within an in-progress blackjack round.
type Stage int

const (
	StageBetting Stage = iota
	StageTurns
	StageResolved
)

var errBettingClosed = errors.New("betting is closed")

// Table is the blackjack table state stored in Game.Data.
type Table struct {
	Deck       *cards.Deck[cards.Card]
	Players    map[game.PlayerID]*game.BlackjackPlayer
	DealerHand []cards.Card
	Stage      Stage
	Outcomes   map[game.PlayerID]string
}

// Variant implements the blackjack rule engine.
type Variant struct {
	cfg config.GameConfig
}

func New(cfg config.GameConfig) *Variant {
	return &Variant{cfg: cfg}
}

func (v *Variant) Type() game.Type {
	return game.TypeBlackjack
}

func (v *Variant) table(g *game.Game) *Table {
	t, ok := g.Data.(*Table)
	if !ok {
		t = &Table{Players: make(map[game.PlayerID]*game.BlackjackPlayer)}
		g.Data = t
	}
	return t
}

func (v *Variant) Join(g *game.Game, id game.PlayerID) error {
	t := v.table(g)
	if _, ok := t.Players[id]; !ok {
		t.Players[id] = &game.BlackjackPlayer{Chips: v.cfg.StartingChips}
	}
	return nil
}

func (v *Variant) Leave(ctx session.Context, g *game.Game, id game.PlayerID) {
	t := v.table(g)
	delete(t.Players, id)
	// The leaver may have been the last seat holding up the betting stage.
	v.maybeStartTurns(g, t)
	v.settleAfterLeave(ctx, g, t)
}

// settleAfterLeave re-runs the round completion check when a seat leaves
// mid-round: the leaver may have been the only seat still to act, and the
// cursor may have landed on a seat whose turn is already over.
func (v *Variant) settleAfterLeave(ctx session.Context, g *game.Game, t *Table) {
	if t.Stage != StageTurns || len(t.Players) == 0 {
		return
	}
	allDone := true
	for _, p := range t.Players {
		if !p.Done() {
			allDone = false
			break
		}
	}
	if allDone {
		v.resolve(ctx, g, t)
		return
	}
	cur, ok := g.Turn.Current()
	if !ok {
		return
	}
	if p, seated := t.Players[cur]; seated && !p.Done() {
		return
	}
	for {
		next, ok := ctx.AdvanceTurn()
		if !ok {
			return
		}
		if p, seated := t.Players[next]; seated && !p.Done() {
			return
		}
	}
}

// Deal gives the dealer one card and every seat two, then opens betting.
// CPU seats place the minimum bet immediately.
func (v *Variant) Deal(ctx session.Context, g *game.Game) error {
	t := v.table(g)
	t.Deck = cards.NewStandardDeck()
	t.Deck.Shuffle()
	t.Stage = StageBetting

	dc, err := t.Deck.DrawOne()
	if err != nil {
		return err
	}
	t.DealerHand = []cards.Card{dc}

	for _, id := range g.Turn.Seats() {
		hand, err := t.Deck.Draw(2)
		if err != nil {
			return err
		}
		t.Players[id].Hand = hand
		if id.IsCPU() {
			p := t.Players[id]
			p.Chips -= v.cfg.MinBet
			p.Bet = v.cfg.MinBet
			p.HasBet = true
		}
	}
	v.maybeStartTurns(g, t)
	return nil
}

func (v *Variant) TurnFree(kind string) bool {
	return kind == "bet" || kind == "show-hand"
}

func (v *Variant) HandleAction(ctx session.Context, g *game.Game, actor game.PlayerID, act session.Action) (*session.Confirmable, error) {
	t := v.table(g)
	p, ok := t.Players[actor]
	if !ok {
		return nil, game.ErrNotSeated
	}

	switch act.Kind {
	case "bet":
		return v.handleBet(t, g, actor, p, act)

	case "hit":
		if t.Stage != StageTurns || p.Done() {
			return nil, game.ErrNotCurrentTurn
		}
		card, err := v.draw(t)
		if err != nil {
			return nil, err
		}
		p.Hand = append(p.Hand, card)
		score := ScoreHand(p.Hand)
		ctx.NotifyPrivate(actor, fmt.Sprintf("You drew %v (%d).", card, score))
		if score > 21 {
			p.Busted = true
			ctx.NotifyPrivate(actor, "Bust!")
			v.finishSeat(ctx, g, t)
		} else if score == 21 {
			p.Stood = true
			v.finishSeat(ctx, g, t)
		}
		return nil, nil

	case "stand":
		if t.Stage != StageTurns || p.Done() {
			return nil, game.ErrNotCurrentTurn
		}
		p.Stood = true
		v.finishSeat(ctx, g, t)
		return nil, nil

	case "show-hand":
		ctx.NotifyPrivate(actor, fmt.Sprintf("Your hand: %s (%d)", handString(p.Hand), ScoreHand(p.Hand)))
		return nil, nil

	default:
		return nil, game.ErrUnknownAction
	}
}

// handleBet validates the bet and hands back a confirmable commit. The commit
// re-validates because the table may change while the player decides.
func (v *Variant) handleBet(t *Table, g *game.Game, actor game.PlayerID, p *game.BlackjackPlayer, act session.Action) (*session.Confirmable, error) {
	if t.Stage != StageBetting {
		return nil, errBettingClosed
	}
	amount, ok := act.Int("amount")
	if err := validateBet(p, amount, ok); err != nil {
		return nil, err
	}

	return &session.Confirmable{
		Prompt: fmt.Sprintf("Bet %d chips?", amount),
		Commit: func(ctx session.Context, g *game.Game) error {
			if t.Stage != StageBetting {
				return errBettingClosed
			}
			if err := validateBet(p, amount, true); err != nil {
				return err
			}
			p.Chips -= amount
			p.Bet = amount
			p.HasBet = true
			ctx.NotifyPrivate(actor, fmt.Sprintf("Bet placed: %d chips (%d left).", amount, p.Chips))
			v.maybeStartTurns(g, t)
			return nil
		},
	}, nil
}

func validateBet(p *game.BlackjackPlayer, amount int, ok bool) error {
	if !ok || amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", game.ErrInvalidBet)
	}
	if p.HasBet {
		return fmt.Errorf("%w: you have already bet this round", game.ErrInvalidBet)
	}
	if amount > p.Chips {
		return fmt.Errorf("%w: you only have %d chips", game.ErrInvalidBet, p.Chips)
	}
	return nil
}

// maybeStartTurns flips the table into the turn stage once every seat has a
// bet down.
func (v *Variant) maybeStartTurns(g *game.Game, t *Table) {
	if t.Stage != StageBetting || len(t.Players) == 0 {
		return
	}
	for _, p := range t.Players {
		if !p.HasBet {
			return
		}
	}
	t.Stage = StageTurns
	g.Turn.Reset()
}

// finishSeat advances past seats whose turn is over, resolving the round when
// nobody is left to act.
func (v *Variant) finishSeat(ctx session.Context, g *game.Game, t *Table) {
	allDone := true
	for _, p := range t.Players {
		if !p.Done() {
			allDone = false
			break
		}
	}
	if allDone {
		v.resolve(ctx, g, t)
		return
	}
	for {
		cur, ok := ctx.AdvanceTurn()
		if !ok {
			return
		}
		if p, seated := t.Players[cur]; seated && !p.Done() {
			return
		}
	}
}

// resolve plays the dealer out and settles every bet: dealer hits to 17,
// busted seats lose, ties push, higher score wins the pot equal to the bet.
func (v *Variant) resolve(ctx session.Context, g *game.Game, t *Table) {
	for ScoreHand(t.DealerHand) < 17 {
		card, err := v.draw(t)
		if err != nil {
			break
		}
		t.DealerHand = append(t.DealerHand, card)
	}
	dealer := ScoreHand(t.DealerHand)

	t.Outcomes = make(map[game.PlayerID]string)
	players := map[string]any{}
	for id, p := range t.Players {
		score := ScoreHand(p.Hand)
		switch {
		case p.Busted:
			t.Outcomes[id] = "lose"
		case dealer > 21 || score > dealer:
			t.Outcomes[id] = "win"
			p.Chips += 2 * p.Bet
		case score == dealer:
			t.Outcomes[id] = "push"
			p.Chips += p.Bet
		default:
			t.Outcomes[id] = "lose"
		}
		players[string(id)] = map[string]any{
			"outcome": t.Outcomes[id],
			"score":   score,
			"chips":   p.Chips,
		}
	}

	t.Stage = StageResolved
	g.Phase = game.PhaseRoundResolution
	ctx.SetResult(map[string]any{
		"dealer_score": dealer,
		"players":      players,
	})
	ctx.EndGame("round complete")
}

// AutoPlay plays a whole CPU turn: hit below 17, then stand.
func (v *Variant) AutoPlay(ctx session.Context, g *game.Game, actor game.PlayerID) (bool, error) {
	t := v.table(g)
	if t.Stage != StageTurns {
		return false, nil
	}
	p, ok := t.Players[actor]
	if !ok || p.Done() {
		return false, nil
	}
	for ScoreHand(p.Hand) < 17 {
		card, err := v.draw(t)
		if err != nil {
			return true, err
		}
		p.Hand = append(p.Hand, card)
	}
	if ScoreHand(p.Hand) > 21 {
		p.Busted = true
	} else {
		p.Stood = true
	}
	v.finishSeat(ctx, g, t)
	return true, nil
}

func (v *Variant) draw(t *Table) (cards.Card, error) {
	return t.Deck.DrawOne()
}

func (v *Variant) Render(g *game.Game) string {
	t := v.table(g)
	var b strings.Builder

	switch {
	case g.Phase == game.PhaseLobby:
		fmt.Fprintf(&b, "Who's ready for a game of blackjack? (%d seated)", g.Turn.Len())

	case g.Phase == game.PhaseEnded || t.Stage == StageResolved:
		fmt.Fprintf(&b, "Dealer hand: %s (%d)\n", handString(t.DealerHand), ScoreHand(t.DealerHand))
		for _, id := range g.Turn.Seats() {
			p, ok := t.Players[id]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s: %s (%d) %s, %d chips\n",
				id, handString(p.Hand), ScoreHand(p.Hand), t.Outcomes[id], p.Chips)
		}

	default:
		// 庄家只亮第一张牌
		fmt.Fprintf(&b, "Dealer hand: %v, ??\n", t.DealerHand[0])
		for _, id := range g.Turn.Seats() {
			p, ok := t.Players[id]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s (%d chips): %s\n", id, p.Chips, handString(p.Hand))
		}
	}
	return b.String()
}

func (v *Variant) Controls(g *game.Game) notify.Controls {
	t := v.table(g)
	c := notify.Controls{Phase: g.Phase.String()}
	switch {
	case g.Phase == game.PhaseLobby:
		c.Buttons = []notify.Control{notify.ControlJoin, notify.ControlQuit, notify.ControlStart}
	case g.Phase == game.PhaseInProgress && t.Stage == StageBetting:
		c.Buttons = []notify.Control{notify.ControlBet, notify.ControlShowHand, notify.ControlQuit}
	case g.Phase == game.PhaseInProgress && t.Stage == StageTurns:
		c.Buttons = []notify.Control{notify.ControlHit, notify.ControlStand, notify.ControlShowHand}
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
