// session/interfaces.go
package session

import (
	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/notify"
)

// Action is an inbound player action event, already routed to this table.
type Action struct {
	Kind    string
	Payload map[string]any
}

// Int reads an integer payload field; JSON numbers arrive as float64.
func (a Action) Int(key string) (int, bool) {
	switch v := a.Payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// String reads a string payload field.
func (a Action) String(key string) (string, bool) {
	v, ok := a.Payload[key].(string)
	return v, ok
}

// Confirmable is returned by a variant when an action needs the player to
// confirm before it is committed. The session awaits the confirmation outside
// its lock and then runs Commit, which must re-validate: the table may have
// changed while the player was deciding.
type Confirmable struct {
	Prompt string
	Commit func(ctx Context, g *game.Game) error
}

// Context is the capability set a variant gets while handling an action. All
// methods assume the session lock is held by the caller; variants must not
// retain the context beyond the call.
type Context interface {
	ChannelID() string
	Config() config.GameConfig
	NotifyPrivate(id game.PlayerID, text string)
	AdvanceTurn() (game.PlayerID, bool)
	EndGame(reason string)
	SetResult(result map[string]any)
}

// Variant is the per-game-type rule engine plugged into a session. Variants
// own the table state in Game.Data and never touch phase transitions except
// through the context.
type Variant interface {
	Type() game.Type

	// Join creates the player record. Leave destroys it; it runs after the
	// session has already unseated the player from the turn order, and must
	// finish any round the leaver was the last seat holding up.
	Join(g *game.Game, id game.PlayerID) error
	Leave(ctx Context, g *game.Game, id game.PlayerID)

	// Deal sets up the table when the game starts.
	Deal(ctx Context, g *game.Game) error

	// TurnFree reports whether an action kind may be performed out of turn
	// (private hand views, lobby-independent bets).
	TurnFree(kind string) bool

	HandleAction(ctx Context, g *game.Game, actor game.PlayerID, act Action) (*Confirmable, error)

	// AutoPlay decides for a CPU seat holding the turn. When it acts it must
	// advance the turn or end the game; acted=false tells the session the
	// seat has nothing to do right now.
	AutoPlay(ctx Context, g *game.Game, actor game.PlayerID) (acted bool, err error)

	// Render produces the channel summary. Pure.
	Render(g *game.Game) string

	// Controls lists the valid interactive controls for the current state.
	Controls(g *game.Game) notify.Controls
}

// Deregistrar removes an ended table from the registry. Implemented by the
// factory.
type Deregistrar interface {
	Deregister(channelID string)
}

// Recorder persists finished games. Implemented by services.PlayerService.
type Recorder interface {
	RecordGame(channelID, gameType string, result map[string]any)
}
