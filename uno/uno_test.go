package uno

import (
	"testing"

	"github.com/wfunc/cardbot/cards"
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
)

func TestPlayable(t *testing.T) {
	top := cards.UnoCard{Color: cards.Red, Value: "5"}

	tests := []struct {
		name   string
		card   cards.UnoCard
		active cards.Color
		want   bool
	}{
		{"color match", cards.UnoCard{Color: cards.Red, Value: "9"}, cards.Red, true},
		{"value match", cards.UnoCard{Color: cards.Blue, Value: "5"}, cards.Red, true},
		{"wild always legal", cards.UnoCard{Color: cards.Wild, Value: cards.UnoWild}, cards.Red, true},
		{"wild draw four always legal", cards.UnoCard{Color: cards.Wild, Value: cards.UnoDrawFour}, cards.Red, true},
		{"no match", cards.UnoCard{Color: cards.Blue, Value: "9"}, cards.Red, false},
		{"active color overrides top color", cards.UnoCard{Color: cards.Green, Value: "2"}, cards.Green, true},
		{"top color no longer active", cards.UnoCard{Color: cards.Red, Value: "2"}, cards.Green, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Playable(tt.card, top, tt.active); got != tt.want {
				t.Errorf("Playable(%v on %v, active %v) = %v, want %v", tt.card, top, tt.active, got, tt.want)
			}
		})
	}
}

func TestPlayableCards(t *testing.T) {
	top := cards.UnoCard{Color: cards.Red, Value: "5"}
	hand := []cards.UnoCard{
		{Color: cards.Blue, Value: "9"},          // no
		{Color: cards.Red, Value: "1"},           // color
		{Color: cards.Green, Value: "5"},         // value
		{Color: cards.Wild, Value: cards.UnoWild}, // wild
	}
	got := PlayableCards(hand, top, cards.Red)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

// fakeCtx is a test double for session.Context.
type fakeCtx struct {
	g        *game.Game
	ended    bool
	reason   string
	result   map[string]any
	privates []string
}

func (c *fakeCtx) ChannelID() string                            { return "chan-test" }
func (c *fakeCtx) Config() config.GameConfig                    { return config.Default() }
func (c *fakeCtx) NotifyPrivate(id game.PlayerID, text string)  { c.privates = append(c.privates, text) }
func (c *fakeCtx) AdvanceTurn() (game.PlayerID, bool)           { return c.g.Turn.Advance() }
func (c *fakeCtx) EndGame(reason string)                        { c.ended = true; c.reason = reason; c.g.Phase = game.PhaseEnded }
func (c *fakeCtx) SetResult(result map[string]any)              { c.result = result }

func TestDraw_ReshufflesDiscard(t *testing.T) {
	v := New()
	tab := &Table{
		Deck:    cards.NewDeck([]cards.UnoCard{}),
		Discard: []cards.UnoCard{{Color: cards.Red, Value: "1"}, {Color: cards.Blue, Value: "2"}, {Color: cards.Green, Value: "3"}},
		Top:     cards.UnoCard{Color: cards.Green, Value: "3"},
	}

	card, ok := v.draw(tab)
	if !ok {
		t.Fatal("Draw from an empty deck must reshuffle the discard, not fail")
	}
	if card == tab.Top {
		t.Errorf("The top card must not be reshuffled into the deck, drew %v", card)
	}
	if len(tab.Discard) != 1 || tab.Discard[0] != tab.Top {
		t.Errorf("Discard should hold only the top card, got %v", tab.Discard)
	}
	if tab.Deck.Len() != 1 {
		t.Errorf("Expected 1 card left in the recycled deck, got %d", tab.Deck.Len())
	}
}

func TestDraw_NothingAnywhere(t *testing.T) {
	v := New()
	tab := &Table{
		Deck:    cards.NewDeck([]cards.UnoCard{}),
		Discard: []cards.UnoCard{{Color: cards.Green, Value: "3"}},
		Top:     cards.UnoCard{Color: cards.Green, Value: "3"},
	}
	if _, ok := v.draw(tab); ok {
		t.Error("Draw with no recyclable cards should report no card, not invent one")
	}
}

func setupTwoPlayerGame(t *testing.T) (*Variant, *game.Game, *Table) {
	t.Helper()
	v := New()
	g := game.New(game.TypeUno, 0)
	for _, id := range []game.PlayerID{"alice", "bob"} {
		if err := v.Join(g, id); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		g.Turn.Append(id)
	}
	g.Phase = game.PhaseInProgress
	tab := v.table(g)
	tab.Deck = cards.NewUnoDeck()
	tab.Top = cards.UnoCard{Color: cards.Red, Value: "5"}
	tab.ActiveColor = cards.Red
	tab.Discard = []cards.UnoCard{tab.Top}
	return v, g, tab
}

func TestPlay_SkipEffect(t *testing.T) {
	v, g, tab := setupTwoPlayerGame(t)
	ctx := &fakeCtx{g: g}

	alice := tab.Players["alice"]
	alice.Hand = []cards.UnoCard{{Color: cards.Red, Value: cards.UnoSkip}, {Color: cards.Blue, Value: "9"}}

	if err := v.play(ctx, g, tab, "alice", alice, 0, 0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	// With two players, skipping bob wraps back to alice.
	if cur, _ := g.Turn.Current(); cur != "alice" {
		t.Errorf("Expected turn back on alice after skip, got %s", cur)
	}
}

func TestPlay_DrawTwoPenalty(t *testing.T) {
	v, g, tab := setupTwoPlayerGame(t)
	ctx := &fakeCtx{g: g}

	alice := tab.Players["alice"]
	bob := tab.Players["bob"]
	alice.Hand = []cards.UnoCard{{Color: cards.Red, Value: cards.UnoDrawTwo}, {Color: cards.Blue, Value: "9"}}
	bob.Hand = []cards.UnoCard{{Color: cards.Green, Value: "1"}}

	if err := v.play(ctx, g, tab, "alice", alice, 0, 0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if len(bob.Hand) != 3 {
		t.Errorf("Bob should hold 3 cards after the penalty, got %d", len(bob.Hand))
	}
	if cur, _ := g.Turn.Current(); cur != "alice" {
		t.Errorf("Bob is skipped after drawing, expected alice's turn, got %s", cur)
	}
}

func TestPlay_WildSetsActiveColor(t *testing.T) {
	v, g, tab := setupTwoPlayerGame(t)
	ctx := &fakeCtx{g: g}

	alice := tab.Players["alice"]
	alice.Hand = []cards.UnoCard{{Color: cards.Wild, Value: cards.UnoWild}, {Color: cards.Blue, Value: "9"}}

	if err := v.play(ctx, g, tab, "alice", alice, 0, cards.Green); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if tab.ActiveColor != cards.Green {
		t.Errorf("Expected active color green, got %v", tab.ActiveColor)
	}
	if !Playable(cards.UnoCard{Color: cards.Green, Value: "7"}, tab.Top, tab.ActiveColor) {
		t.Error("A green card should now be playable")
	}
}

func TestPlay_RejectsIllegalCard(t *testing.T) {
	v, g, tab := setupTwoPlayerGame(t)
	ctx := &fakeCtx{g: g}

	alice := tab.Players["alice"]
	alice.Hand = []cards.UnoCard{{Color: cards.Blue, Value: "9"}}

	if err := v.play(ctx, g, tab, "alice", alice, 0, 0); err != errNotPlayable {
		t.Fatalf("Expected errNotPlayable, got %v", err)
	}
	if len(alice.Hand) != 1 {
		t.Error("A rejected play must not consume the card")
	}
	if cur, _ := g.Turn.Current(); cur != "alice" {
		t.Error("A rejected play must not advance the turn")
	}
}

func TestPlay_EmptyHandWins(t *testing.T) {
	v, g, tab := setupTwoPlayerGame(t)
	ctx := &fakeCtx{g: g}

	alice := tab.Players["alice"]
	alice.Hand = []cards.UnoCard{{Color: cards.Red, Value: "7"}}

	if err := v.play(ctx, g, tab, "alice", alice, 0, 0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if !ctx.ended {
		t.Fatal("Playing the last card must end the game")
	}
	if tab.Winner != "alice" {
		t.Errorf("Expected alice to win, got %s", tab.Winner)
	}
	if ctx.result["winner"] != "alice" {
		t.Errorf("Result should record the winner, got %v", ctx.result)
	}
}

func TestPlay_ReverseEffect(t *testing.T) {
	v := New()
	g := game.New(game.TypeUno, 0)
	for _, id := range []game.PlayerID{"a", "b", "c"} {
		v.Join(g, id)
		g.Turn.Append(id)
	}
	g.Phase = game.PhaseInProgress
	tab := v.table(g)
	tab.Deck = cards.NewUnoDeck()
	tab.Top = cards.UnoCard{Color: cards.Red, Value: "5"}
	tab.ActiveColor = cards.Red
	ctx := &fakeCtx{g: g}

	a := tab.Players["a"]
	a.Hand = []cards.UnoCard{{Color: cards.Red, Value: cards.UnoReverse}, {Color: cards.Blue, Value: "9"}}

	if err := v.play(ctx, g, tab, "a", a, 0, 0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	// Reversed from a: the next seat is c, not b.
	if cur, _ := g.Turn.Current(); cur != "c" {
		t.Errorf("Expected reversed order to reach c, got %s", cur)
	}
}
