// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/timer"
)

// Session owns one game bound to a channel. Every mutation of the game goes
// through a session method under the session mutex; sessions on different
// channels share nothing.
type Session struct {
	ID        string
	ChannelID string

	variant  Variant
	game     *game.Game
	sink     notify.Sink
	registry Deregistrar
	recorder Recorder
	cfg      config.GameConfig
	timers   *timer.Manager

	CreatedAt time.Time

	mu         sync.Mutex
	lobbyTimer int64
	result     map[string]any
	endReason  string
}

// Options carries the collaborators a session needs. Timers and Recorder may
// be nil.
type Options struct {
	Sink     notify.Sink
	Registry Deregistrar
	Recorder Recorder
	Config   config.GameConfig
	Timers   *timer.Manager
}

// New creates a session in the lobby phase and arms the lobby expiry timer.
func New(channelID string, v Variant, cpus int, opts Options) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		variant:   v,
		game:      game.New(v.Type(), cpus),
		sink:      opts.Sink,
		registry:  opts.Registry,
		recorder:  opts.Recorder,
		cfg:       opts.Config,
		timers:    opts.Timers,
		CreatedAt: time.Now(),
	}

	// CPU seats get their player records up front.
	for _, id := range s.game.Turn.Seats() {
		if err := v.Join(s.game, id); err != nil {
			logger.Log.Errorf("Seating CPU %s at %s failed: %v", id, channelID, err)
		}
	}

	if s.timers != nil && opts.Config.LobbyTimeout > 0 {
		s.lobbyTimer = s.timers.AddTimer(opts.Config.LobbyTimeout, 0, s.expireLobby)
	}
	return s
}

// GameType returns the variant hosted at this table.
func (s *Session) GameType() game.Type {
	return s.game.Type
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() game.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Phase
}

// Seats returns the current turn order.
func (s *Session) Seats() []game.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Turn.Seats()
}

// AddPlayer admits a player to the lobby. Re-adding a seated player is a
// no-op. Rejected outside the lobby phase.
func (s *Session) AddPlayer(id game.PlayerID) error {
	s.mu.Lock()
	if s.game.Phase == game.PhaseEnded {
		s.mu.Unlock()
		return s.reject(id, game.ErrGameEnded)
	}
	if s.game.Phase != game.PhaseLobby {
		s.mu.Unlock()
		return s.reject(id, game.ErrNotInLobby)
	}
	if !s.game.Turn.Contains(id) {
		if err := s.variant.Join(s.game, id); err != nil {
			s.mu.Unlock()
			return s.reject(id, err)
		}
		s.game.Turn.Append(id)
	}
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// RemovePlayer unseats a player. Allowed in any phase; draining the last
// human ends the game and deregisters the table. The variant sees the leave
// after the turn order is updated, so it can settle a round the leaver was
// holding up.
func (s *Session) RemovePlayer(id game.PlayerID) error {
	s.mu.Lock()
	if !s.game.Turn.Contains(id) {
		s.mu.Unlock()
		return s.reject(id, game.ErrNotSeated)
	}
	s.game.Turn.Remove(id)
	s.variant.Leave(s.ctx(), s.game, id)

	if s.game.Humans() == 0 && s.game.Phase != game.PhaseEnded {
		s.endLocked("all players left")
	}
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
	s.runCPUTurns()
	return nil
}

// StartGame deals and moves the table into play. Only valid from the lobby;
// calling it again produces a user-visible notice and no state change.
func (s *Session) StartGame(starter game.PlayerID) error {
	s.mu.Lock()
	if s.game.Phase == game.PhaseEnded {
		s.mu.Unlock()
		return s.reject(starter, game.ErrGameEnded)
	}
	if s.game.Phase != game.PhaseLobby {
		s.mu.Unlock()
		return s.reject(starter, game.ErrAlreadyStarted)
	}
	if s.game.Humans() == 0 {
		s.mu.Unlock()
		return s.reject(starter, game.ErrNotSeated)
	}

	if err := s.variant.Deal(s.ctx(), s.game); err != nil {
		// A failed deal is a table defect, not a player mistake.
		logger.Log.Errorf("Deal failed on %s: %v", s.ChannelID, err)
		s.endLocked("deal failed")
		snap := s.snapshot()
		s.mu.Unlock()
		s.publish(snap)
		return err
	}
	s.game.Phase = game.PhaseInProgress
	s.game.Turn.Reset()
	if s.timers != nil && s.lobbyTimer != 0 {
		s.timers.RemoveTimer(s.lobbyTimer)
		s.lobbyTimer = 0
	}
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
	s.runCPUTurns()
	return nil
}

// PerformAction applies a player action. Turn-bound actions from anyone but
// the current seat are rejected without state change. Actions that need
// confirmation are committed only after the player confirms; the wait happens
// outside the session lock and the commit re-validates.
func (s *Session) PerformAction(actor game.PlayerID, act Action) error {
	s.mu.Lock()
	if s.game.Phase == game.PhaseEnded {
		s.mu.Unlock()
		return s.reject(actor, game.ErrGameEnded)
	}
	if !s.game.Turn.Contains(actor) {
		s.mu.Unlock()
		return s.reject(actor, game.ErrNotSeated)
	}
	if !s.variant.TurnFree(act.Kind) {
		if cur, ok := s.game.Turn.Current(); !ok || cur != actor {
			s.mu.Unlock()
			return s.reject(actor, game.ErrNotCurrentTurn)
		}
	}

	conf, err := s.variant.HandleAction(s.ctx(), s.game, actor, act)
	if err != nil {
		s.mu.Unlock()
		return s.reject(actor, err)
	}
	snap := s.snapshot()
	s.mu.Unlock()

	if conf != nil {
		if !s.sink.RequestConfirmation(string(actor), conf.Prompt, s.cfg.ConfirmTimeout) {
			s.sink.NotifyPrivate(string(actor), "Cancelled.", s.cfg.PrivateTTL)
			return nil
		}
		s.mu.Lock()
		if s.game.Phase == game.PhaseEnded {
			s.mu.Unlock()
			return s.reject(actor, game.ErrGameEnded)
		}
		if err := conf.Commit(s.ctx(), s.game); err != nil {
			s.mu.Unlock()
			return s.reject(actor, err)
		}
		snap = s.snapshot()
		s.mu.Unlock()
	}

	s.publish(snap)
	s.runCPUTurns()
	return nil
}

// RenderState returns the channel summary for the current state without
// mutating anything.
func (s *Session) RenderState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant.Render(s.game)
}

// EndGame closes the table: phase becomes Ended, the registry drops the
// channel and all further actions fail.
func (s *Session) EndGame(reason string) {
	s.mu.Lock()
	if s.game.Phase == game.PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.endLocked(reason)
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
}

// runCPUTurns lets automated seats act while they hold the turn. Each step
// takes and releases the lock so human actions on other tables are never
// delayed.
func (s *Session) runCPUTurns() {
	for {
		s.mu.Lock()
		if s.game.Phase != game.PhaseInProgress {
			s.mu.Unlock()
			return
		}
		cur, ok := s.game.Turn.Current()
		if !ok || !cur.IsCPU() {
			s.mu.Unlock()
			return
		}
		acted, err := s.variant.AutoPlay(s.ctx(), s.game, cur)
		if err != nil {
			logger.Log.Errorf("CPU %s failed on %s: %v", cur, s.ChannelID, err)
			s.endLocked("cpu failure")
		} else if !acted {
			s.mu.Unlock()
			return
		}
		snap := s.snapshot()
		s.mu.Unlock()
		s.publish(snap)
	}
}

// expireLobby closes a table that never left the lobby.
func (s *Session) expireLobby() {
	s.mu.Lock()
	if s.game.Phase != game.PhaseLobby {
		s.mu.Unlock()
		return
	}
	s.endLocked("lobby expired")
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
}

// endLocked performs the Ended transition. Caller holds the lock.
func (s *Session) endLocked(reason string) {
	s.game.Phase = game.PhaseEnded
	s.endReason = reason
	if s.timers != nil && s.lobbyTimer != 0 {
		s.timers.RemoveTimer(s.lobbyTimer)
		s.lobbyTimer = 0
	}
	logger.Log.Infof("Table %s (%s) ended: %s", s.ChannelID, s.game.Type, reason)
}

// snapshot captures everything the sink needs, so no sink call happens under
// the lock. Caller holds the lock.
type snapshot struct {
	summary  string
	controls notify.Controls
	ended    bool
	reason   string
	result   map[string]any
}

func (s *Session) snapshot() snapshot {
	return snapshot{
		summary:  s.variant.Render(s.game),
		controls: s.variant.Controls(s.game),
		ended:    s.game.Phase == game.PhaseEnded,
		reason:   s.endReason,
		result:   s.result,
	}
}

// publish pushes a snapshot out: re-render first, then teardown when the
// game has ended. Deregistration on end is guaranteed, not best-effort.
func (s *Session) publish(snap snapshot) {
	s.sink.Notify(s.ChannelID, snap.summary, snap.controls)
	if !snap.ended {
		return
	}
	if s.registry != nil {
		s.registry.Deregister(s.ChannelID)
	}
	if s.recorder != nil {
		result := snap.result
		if result == nil {
			result = map[string]any{"reason": snap.reason}
		}
		go s.recorder.RecordGame(s.ChannelID, s.game.Type.String(), result)
	}
}

// reject turns a rule violation into a private notice. State is unchanged.
func (s *Session) reject(id game.PlayerID, err error) error {
	if !id.IsCPU() {
		s.sink.NotifyPrivate(string(id), err.Error(), s.cfg.PrivateTTL)
	}
	return err
}

func (s *Session) ctx() Context {
	return sessionCtx{s}
}

// sessionCtx implements Context for variants. The session lock is held for
// the duration of every call that receives it.
type sessionCtx struct {
	s *Session
}

func (c sessionCtx) ChannelID() string {
	return c.s.ChannelID
}

func (c sessionCtx) Config() config.GameConfig {
	return c.s.cfg
}

func (c sessionCtx) NotifyPrivate(id game.PlayerID, text string) {
	if id.IsCPU() {
		return
	}
	c.s.sink.NotifyPrivate(string(id), text, c.s.cfg.PrivateTTL)
}

func (c sessionCtx) AdvanceTurn() (game.PlayerID, bool) {
	return c.s.game.Turn.Advance()
}

func (c sessionCtx) EndGame(reason string) {
	c.s.endLocked(reason)
}

func (c sessionCtx) SetResult(result map[string]any) {
	c.s.result = result
}

// Info is a read-only listing row for the admin RPC service.
type Info struct {
	ChannelID string
	GameType  string
	Phase     string
	Seats     int
	CreatedAt time.Time
}
