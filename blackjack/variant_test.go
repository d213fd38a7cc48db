package blackjack

import (
	"testing"

	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/session"
)

type fakeCtx struct {
	g      *game.Game
	ended  bool
	reason string
	result map[string]any
}

func (c *fakeCtx) ChannelID() string                           { return "chan-test" }
func (c *fakeCtx) Config() config.GameConfig                   { return config.Default() }
func (c *fakeCtx) NotifyPrivate(id game.PlayerID, text string) {}
func (c *fakeCtx) AdvanceTurn() (game.PlayerID, bool)          { return c.g.Turn.Advance() }
func (c *fakeCtx) EndGame(reason string) {
	c.ended = true
	c.reason = reason
	c.g.Phase = game.PhaseEnded
}
func (c *fakeCtx) SetResult(result map[string]any) { c.result = result }

// setupTurns seats the given players, deals and places everyone's bet so the
// table sits at the start of the turn stage.
func setupTurns(t *testing.T, ids ...game.PlayerID) (*Variant, *game.Game, *Table, *fakeCtx) {
	t.Helper()
	v := New(config.Default())
	g := game.New(game.TypeBlackjack, 0)
	for _, id := range ids {
		if err := v.Join(g, id); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		g.Turn.Append(id)
	}
	g.Phase = game.PhaseInProgress
	ctx := &fakeCtx{g: g}
	if err := v.Deal(ctx, g); err != nil {
		t.Fatalf("Deal failed: %v", err)
	}
	tab := v.table(g)
	for _, p := range tab.Players {
		p.Chips -= 10
		p.Bet = 10
		p.HasBet = true
	}
	v.maybeStartTurns(g, tab)
	if tab.Stage != StageTurns {
		t.Fatalf("Expected turn stage, got %v", tab.Stage)
	}
	return v, g, tab, ctx
}

func TestHitAfterStandRejected(t *testing.T) {
	v, g, tab, ctx := setupTurns(t, "alice", "bob")
	alice := tab.Players["alice"]

	if _, err := v.HandleAction(ctx, g, "alice", session.Action{Kind: "stand"}); err != nil {
		t.Fatalf("stand failed: %v", err)
	}
	handSize := len(alice.Hand)

	if _, err := v.HandleAction(ctx, g, "alice", session.Action{Kind: "hit"}); err != game.ErrNotCurrentTurn {
		t.Errorf("A finished seat must not hit, got %v", err)
	}
	if len(alice.Hand) != handSize {
		t.Errorf("A rejected hit must not draw, hand grew to %d", len(alice.Hand))
	}
	if _, err := v.HandleAction(ctx, g, "alice", session.Action{Kind: "stand"}); err != game.ErrNotCurrentTurn {
		t.Errorf("A finished seat must not stand again, got %v", err)
	}
}

func TestLeaveSettlesRound(t *testing.T) {
	v, g, tab, ctx := setupTurns(t, "alice", "bob")

	if _, err := v.HandleAction(ctx, g, "alice", session.Action{Kind: "stand"}); err != nil {
		t.Fatalf("stand failed: %v", err)
	}

	// Bob holds the turn and walks away; the round must still resolve.
	g.Turn.Remove("bob")
	v.Leave(ctx, g, "bob")

	if !ctx.ended {
		t.Fatal("The round must resolve when the last undecided seat leaves")
	}
	if tab.Stage != StageResolved {
		t.Errorf("Expected a resolved table, got stage %v", tab.Stage)
	}
	if _, ok := tab.Outcomes["alice"]; !ok {
		t.Error("The remaining seat must be settled against the dealer")
	}
	if ScoreHand(tab.DealerHand) < 17 {
		t.Errorf("Dealer must play to 17, got %d", ScoreHand(tab.DealerHand))
	}
}

func TestLeaveAdvancesPastFinishedSeat(t *testing.T) {
	v, g, tab, ctx := setupTurns(t, "alice", "bob", "carol")

	g.Turn.Advance() // cursor on bob
	tab.Players["carol"].Stood = true

	g.Turn.Remove("bob")
	v.Leave(ctx, g, "bob")

	if ctx.ended {
		t.Fatal("Alice still has to act, the round must not resolve")
	}
	if cur, _ := g.Turn.Current(); cur != "alice" {
		t.Errorf("The cursor must pass over carol's finished seat, got %s", cur)
	}
}
