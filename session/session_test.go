package session_test

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/cardbot/blackjack"
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/counter"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/session"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	os.Exit(m.Run())
}

type mockSink struct {
	mu        sync.Mutex
	summaries []string
	privates  map[string][]string
	confirms  []string
	answer    bool
}

func newMockSink() *mockSink {
	return &mockSink{privates: make(map[string][]string)}
}

func (m *mockSink) Notify(channelID, summary string, controls notify.Controls) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
}

func (m *mockSink) NotifyPrivate(playerID, text string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.privates[playerID] = append(m.privates[playerID], text)
}

func (m *mockSink) RequestConfirmation(playerID, prompt string, timeout time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirms = append(m.confirms, prompt)
	return m.answer
}

func (m *mockSink) privateCount(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.privates[playerID])
}

func (m *mockSink) lastPrivate(playerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.privates[playerID]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

type mockRegistry struct {
	mu      sync.Mutex
	dropped []string
}

func (m *mockRegistry) Deregister(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped = append(m.dropped, channelID)
}

func (m *mockRegistry) droppedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dropped)
}

type recordedGame struct {
	channelID string
	gameType  string
	result    map[string]any
}

type mockRecorder struct {
	ch chan recordedGame
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{ch: make(chan recordedGame, 4)}
}

func (m *mockRecorder) RecordGame(channelID, gameType string, result map[string]any) {
	m.ch <- recordedGame{channelID: channelID, gameType: gameType, result: result}
}

func (m *mockRecorder) wait(t *testing.T) recordedGame {
	t.Helper()
	select {
	case r := <-m.ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the game record")
		return recordedGame{}
	}
}

func newSession(v session.Variant, cpus int, sink *mockSink, reg *mockRegistry, rec session.Recorder) *session.Session {
	return session.New("chan-1", v, cpus, session.Options{
		Sink:     sink,
		Registry: reg,
		Recorder: rec,
		Config:   config.Default(),
	})
}

func TestJoinAfterStartRejected(t *testing.T) {
	sink := newMockSink()
	s := newSession(blackjack.New(config.Default()), 0, sink, &mockRegistry{}, nil)

	if err := s.AddPlayer("alice"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if err := s.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if s.Phase() != game.PhaseInProgress {
		t.Fatalf("Expected in_progress, got %v", s.Phase())
	}

	if err := s.AddPlayer("bob"); err != game.ErrNotInLobby {
		t.Errorf("Expected ErrNotInLobby, got %v", err)
	}
	if sink.privateCount("bob") == 0 {
		t.Error("The rejected player should get a private notice")
	}
	if len(s.Seats()) != 1 {
		t.Errorf("A rejected join must not seat the player, got %v", s.Seats())
	}
}

func TestStartGameTwiceRejected(t *testing.T) {
	sink := newMockSink()
	s := newSession(counter.New(config.Default()), 0, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	if err := s.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if err := s.StartGame("alice"); err != game.ErrAlreadyStarted {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartGameWithoutHumansRejected(t *testing.T) {
	sink := newMockSink()
	s := newSession(counter.New(config.Default()), 2, sink, &mockRegistry{}, nil)

	if err := s.StartGame("alice"); err != game.ErrNotSeated {
		t.Errorf("Expected ErrNotSeated, got %v", err)
	}
}

func TestRemoveLastPlayerEndsGame(t *testing.T) {
	sink := newMockSink()
	reg := &mockRegistry{}
	rec := newMockRecorder()
	s := newSession(counter.New(config.Default()), 0, sink, reg, rec)

	s.AddPlayer("alice")
	s.StartGame("alice")
	if err := s.RemovePlayer("alice"); err != nil {
		t.Fatalf("RemovePlayer failed: %v", err)
	}

	if s.Phase() != game.PhaseEnded {
		t.Errorf("Draining the last player must end the game, got %v", s.Phase())
	}
	if reg.droppedCount() != 1 {
		t.Error("An ended table must be deregistered")
	}
	r := rec.wait(t)
	if r.channelID != "chan-1" || r.gameType != "counter" {
		t.Errorf("Unexpected game record: %+v", r)
	}
}

func TestActionsAfterEndRejected(t *testing.T) {
	sink := newMockSink()
	s := newSession(counter.New(config.Default()), 0, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	s.StartGame("alice")
	s.EndGame("shutdown")

	if err := s.PerformAction("alice", session.Action{Kind: "increment"}); err != game.ErrGameEnded {
		t.Errorf("Expected ErrGameEnded, got %v", err)
	}
	if err := s.AddPlayer("bob"); err != game.ErrGameEnded {
		t.Errorf("Expected ErrGameEnded, got %v", err)
	}
}

func TestNotCurrentTurnRejected(t *testing.T) {
	sink := newMockSink()
	s := newSession(counter.New(config.Default()), 0, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	s.AddPlayer("bob")
	s.StartGame("alice")

	if err := s.PerformAction("bob", session.Action{Kind: "increment"}); err != game.ErrNotCurrentTurn {
		t.Errorf("Expected ErrNotCurrentTurn, got %v", err)
	}
	if err := s.PerformAction("carol", session.Action{Kind: "increment"}); err != game.ErrNotSeated {
		t.Errorf("Expected ErrNotSeated for a bystander, got %v", err)
	}
}

func TestBlackjackRound(t *testing.T) {
	sink := newMockSink()
	sink.answer = true
	s := newSession(blackjack.New(config.Default()), 0, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	s.AddPlayer("bob")
	if err := s.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	state := s.RenderState()
	if !strings.Contains(state, "??") {
		t.Errorf("The dealer's hole card must be hidden:\n%s", state)
	}
	if !strings.Contains(state, "alice (300 chips)") {
		t.Errorf("Alice should start with 300 chips:\n%s", state)
	}

	if err := s.PerformAction("alice", session.Action{Kind: "bet", Payload: map[string]any{"amount": 50}}); err != nil {
		t.Fatalf("bet failed: %v", err)
	}
	if len(sink.confirms) != 1 {
		t.Fatalf("Betting must ask for confirmation, got %v", sink.confirms)
	}
	if state := s.RenderState(); !strings.Contains(state, "alice (250 chips)") {
		t.Errorf("The bet must be deducted:\n%s", state)
	}

	err := s.PerformAction("alice", session.Action{Kind: "bet", Payload: map[string]any{"amount": 20}})
	if !errors.Is(err, game.ErrInvalidBet) {
		t.Errorf("A second bet in the same round must fail, got %v", err)
	}
	if state := s.RenderState(); !strings.Contains(state, "alice (250 chips)") {
		t.Errorf("A rejected bet must not change chips:\n%s", state)
	}
}

func TestBetDeclinedLeavesChipsAlone(t *testing.T) {
	sink := newMockSink()
	sink.answer = false
	s := newSession(blackjack.New(config.Default()), 0, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	s.StartGame("alice")

	if err := s.PerformAction("alice", session.Action{Kind: "bet", Payload: map[string]any{"amount": 50}}); err != nil {
		t.Fatalf("A declined bet is not an error: %v", err)
	}
	if state := s.RenderState(); !strings.Contains(state, "alice (300 chips)") {
		t.Errorf("A declined bet must not change chips:\n%s", state)
	}
	if sink.lastPrivate("alice") != "Cancelled." {
		t.Errorf("Expected a cancellation notice, got %q", sink.lastPrivate("alice"))
	}
}

func TestQuitDuringTurnsResolvesRound(t *testing.T) {
	sink := newMockSink()
	sink.answer = true
	reg := &mockRegistry{}
	rec := newMockRecorder()
	s := newSession(blackjack.New(config.Default()), 0, sink, reg, rec)

	s.AddPlayer("alice")
	s.AddPlayer("bob")
	if err := s.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	for _, id := range []game.PlayerID{"alice", "bob"} {
		if err := s.PerformAction(id, session.Action{Kind: "bet", Payload: map[string]any{"amount": 10}}); err != nil {
			t.Fatalf("bet for %s failed: %v", id, err)
		}
	}
	if err := s.PerformAction("alice", session.Action{Kind: "stand"}); err != nil {
		t.Fatalf("stand failed: %v", err)
	}

	// Bob quits while holding the turn; alice's round must still resolve.
	if err := s.RemovePlayer("bob"); err != nil {
		t.Fatalf("RemovePlayer failed: %v", err)
	}
	if s.Phase() != game.PhaseEnded {
		t.Errorf("The round must resolve after the quit, got %v", s.Phase())
	}
	if reg.droppedCount() != 1 {
		t.Error("The resolved table must be deregistered")
	}
	r := rec.wait(t)
	if r.gameType != "blackjack" {
		t.Errorf("Unexpected game record: %+v", r)
	}
}

func TestQuitHandsTurnToCPU(t *testing.T) {
	sink := newMockSink()
	s := newSession(counter.New(config.Default()), 1, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	s.AddPlayer("bob")
	if err := s.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	// The automated seat opened, alice increments, bob holds the turn.
	if err := s.PerformAction("alice", session.Action{Kind: "increment"}); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	// Bob quits; the cursor wraps to the automated seat, which must act
	// without waiting for another human.
	if err := s.RemovePlayer("bob"); err != nil {
		t.Fatalf("RemovePlayer failed: %v", err)
	}
	state := s.RenderState()
	if !strings.Contains(state, "Count: 3") {
		t.Errorf("The automated seat should have incremented after the quit:\n%s", state)
	}
	if !strings.Contains(state, "alice's turn") {
		t.Errorf("Expected alice to hold the turn:\n%s", state)
	}
}

func TestCPUSeatsActAutomatically(t *testing.T) {
	sink := newMockSink()
	s := newSession(counter.New(config.Default()), 1, sink, &mockRegistry{}, nil)

	s.AddPlayer("alice")
	if err := s.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	// The automated seat goes first and must hand the turn to alice.
	state := s.RenderState()
	if !strings.Contains(state, "Count: 1") {
		t.Errorf("The automated seat should have incremented once:\n%s", state)
	}
	if !strings.Contains(state, "alice's turn") {
		t.Errorf("Expected alice to hold the turn:\n%s", state)
	}
}
