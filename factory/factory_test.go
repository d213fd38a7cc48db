package factory

import (
	"os"
	"testing"
	"time"

	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/notify"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	os.Exit(m.Run())
}

type nullSink struct{}

func (nullSink) Notify(channelID, summary string, controls notify.Controls)           {}
func (nullSink) NotifyPrivate(playerID, text string, ttl time.Duration)               {}
func (nullSink) RequestConfirmation(playerID, prompt string, timeout time.Duration) bool { return true }

func newFactory() *Factory {
	return New(nullSink{}, nil, config.Default(), nil)
}

func TestCreateGame(t *testing.T) {
	f := newFactory()

	s, err := f.CreateGame("chan-1", "blackjack", 0)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if s.GameType() != game.TypeBlackjack {
		t.Errorf("Expected a blackjack table, got %v", s.GameType())
	}
	if _, ok := f.Lookup("chan-1"); !ok {
		t.Error("The new table should be registered")
	}
}

func TestCreateGameDuplicateChannel(t *testing.T) {
	f := newFactory()

	if _, err := f.CreateGame("chan-1", "uno", 0); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if _, err := f.CreateGame("chan-1", "poker", 0); err != ErrDuplicateGame {
		t.Errorf("Expected ErrDuplicateGame, got %v", err)
	}
	// The same game elsewhere is fine.
	if _, err := f.CreateGame("chan-2", "uno", 0); err != nil {
		t.Errorf("A second channel must get its own table: %v", err)
	}
	if f.Count() != 2 {
		t.Errorf("Expected 2 tables, got %d", f.Count())
	}
}

func TestCreateGameUnknownType(t *testing.T) {
	f := newFactory()
	if _, err := f.CreateGame("chan-1", "chess", 0); err != ErrUnknownGame {
		t.Errorf("Expected ErrUnknownGame, got %v", err)
	}
}

func TestDispatchRouting(t *testing.T) {
	f := newFactory()

	if err := f.Dispatch("chan-1", Event{Player: "alice", Kind: "join"}); err != ErrNoActiveGame {
		t.Fatalf("Expected ErrNoActiveGame, got %v", err)
	}

	if _, err := f.CreateGame("chan-1", "counter", 0); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if err := f.Dispatch("chan-1", Event{Player: "alice", Kind: "join"}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := f.Dispatch("chan-1", Event{Player: "alice", Kind: "start"}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := f.Dispatch("chan-1", Event{Player: "alice", Kind: "increment"}); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	s, _ := f.Lookup("chan-1")
	if s.Phase() != game.PhaseInProgress {
		t.Errorf("Expected in_progress, got %v", s.Phase())
	}
}

func TestEndedGameLeavesRegistry(t *testing.T) {
	f := newFactory()

	s, err := f.CreateGame("chan-1", "counter", 0)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	f.Dispatch("chan-1", Event{Player: "alice", Kind: "join"})
	f.Dispatch("chan-1", Event{Player: "alice", Kind: "start"})
	s.EndGame("shutdown")

	if _, ok := f.Lookup("chan-1"); ok {
		t.Error("An ended table must leave the registry")
	}
	// The channel is immediately free for a new game.
	if _, err := f.CreateGame("chan-1", "uno", 0); err != nil {
		t.Errorf("Recreating on a freed channel failed: %v", err)
	}
}

func TestActiveTables(t *testing.T) {
	f := newFactory()
	f.CreateGame("chan-b", "uno", 0)
	f.CreateGame("chan-a", "poker", 2)

	infos := f.ActiveTables()
	if len(infos) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(infos))
	}
	if infos[0].ChannelID != "chan-a" || infos[1].ChannelID != "chan-b" {
		t.Errorf("Rows must be sorted by channel, got %+v", infos)
	}
	if infos[0].GameType != "poker" || infos[0].Seats != 2 {
		t.Errorf("Unexpected row: %+v", infos[0])
	}
	if infos[0].Phase != "lobby" {
		t.Errorf("Expected lobby phase, got %s", infos[0].Phase)
	}
}
