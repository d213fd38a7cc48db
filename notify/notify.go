// Package notify is the boundary between the game core and whatever renders
// it. The core only decides which controls are currently valid; drawing them
// is the sink's problem.
package notify

import "time"

// Control names an interactive control the UI should offer.
type Control string

const (
	ControlJoin      Control = "join"
	ControlQuit      Control = "quit"
	ControlStart     Control = "start"
	ControlHit       Control = "hit"
	ControlStand     Control = "stand"
	ControlBet       Control = "bet"
	ControlShowHand  Control = "show-hand"
	ControlPlayCard  Control = "play"
	ControlDrawCard  Control = "draw"
	ControlIncrement Control = "increment"
	ControlShowdown  Control = "showdown"
)

// Controls describes the valid interactive controls for the current phase.
type Controls struct {
	Phase   string    `json:"phase"`
	Buttons []Control `json:"buttons"`
}

// Sink receives render and notice requests from the core. Notify and
// NotifyPrivate are fire-and-forget: implementations must not block the
// caller. RequestConfirmation blocks the calling goroutine until the player
// answers or the timeout elapses; timeout resolves as false.
type Sink interface {
	Notify(channelID, summary string, controls Controls)
	NotifyPrivate(playerID, text string, ttl time.Duration)
	RequestConfirmation(playerID, prompt string, timeout time.Duration) bool
}
