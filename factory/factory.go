// Package factory owns the channel-to-table registry. One game per channel;
// creating, routing to and tearing down sessions all goes through here.
package factory

import (
	"errors"
	"sort"
	"sync"

	"github.com/wfunc/cardbot/blackjack"
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/counter"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/poker"
	"github.com/wfunc/cardbot/session"
	"github.com/wfunc/cardbot/timer"
	"github.com/wfunc/cardbot/uno"
)

var (
	ErrNoActiveGame  = errors.New("no game is running in this channel")
	ErrDuplicateGame = errors.New("a game is already running in this channel")
	ErrUnknownGame   = errors.New("unknown game type")
)

// Event is one inbound player interaction, already resolved to a channel.
// Kind is a lifecycle verb (join, quit, start) or a variant action kind.
type Event struct {
	Player  game.PlayerID
	Kind    string
	Payload map[string]any
}

// Factory creates sessions and routes events to them.
type Factory struct {
	sink     notify.Sink
	recorder session.Recorder
	cfg      config.GameConfig
	timers   *timer.Manager

	mu     sync.Mutex
	tables map[string]*session.Session
}

func New(sink notify.Sink, recorder session.Recorder, cfg config.GameConfig, timers *timer.Manager) *Factory {
	return &Factory{
		sink:     sink,
		recorder: recorder,
		cfg:      cfg,
		timers:   timers,
		tables:   make(map[string]*session.Session),
	}
}

// CreateGame opens a lobby for the named game type in a channel. A channel
// hosts at most one table at a time.
func (f *Factory) CreateGame(channelID, gameType string, cpus int) (*session.Session, error) {
	t, ok := game.ParseType(gameType)
	if !ok {
		return nil, ErrUnknownGame
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tables[channelID]; exists {
		return nil, ErrDuplicateGame
	}

	s := session.New(channelID, f.newVariant(t), cpus, session.Options{
		Sink:     f.sink,
		Registry: f,
		Recorder: f.recorder,
		Config:   f.cfg,
		Timers:   f.timers,
	})
	f.tables[channelID] = s
	logger.Log.Infof("Opened %s table on %s (session %s)", gameType, channelID, s.ID)
	return s, nil
}

func (f *Factory) newVariant(t game.Type) session.Variant {
	switch t {
	case game.TypeBlackjack:
		return blackjack.New(f.cfg)
	case game.TypePoker:
		return poker.New()
	case game.TypeUno:
		return uno.New()
	default:
		return counter.New(f.cfg)
	}
}

// Lookup returns the live session for a channel.
func (f *Factory) Lookup(channelID string) (*session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.tables[channelID]
	return s, ok
}

// Dispatch routes one event to the channel's table. Lifecycle verbs map to
// session lifecycle calls; everything else is a variant action.
func (f *Factory) Dispatch(channelID string, ev Event) error {
	s, ok := f.Lookup(channelID)
	if !ok {
		return ErrNoActiveGame
	}

	switch ev.Kind {
	case "join":
		return s.AddPlayer(ev.Player)
	case "quit":
		return s.RemovePlayer(ev.Player)
	case "start":
		return s.StartGame(ev.Player)
	default:
		return s.PerformAction(ev.Player, session.Action{Kind: ev.Kind, Payload: ev.Payload})
	}
}

// Deregister drops an ended table. Sessions call this through their registry
// hook; dropping an unknown channel is a no-op.
func (f *Factory) Deregister(channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[channelID]; ok {
		delete(f.tables, channelID)
		logger.Log.Infof("Closed table on %s", channelID)
	}
}

// Count returns the number of live tables.
func (f *Factory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables)
}

// ActiveTables lists the live tables, sorted by channel for stable output.
func (f *Factory) ActiveTables() []session.Info {
	f.mu.Lock()
	sessions := make([]*session.Session, 0, len(f.tables))
	for _, s := range f.tables {
		sessions = append(sessions, s)
	}
	f.mu.Unlock()

	infos := make([]session.Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, session.Info{
			ChannelID: s.ChannelID,
			GameType:  s.GameType().String(),
			Phase:     s.Phase().String(),
			Seats:     len(s.Seats()),
			CreatedAt: s.CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ChannelID < infos[j].ChannelID })
	return infos
}
