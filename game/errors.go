package game

import "errors"

// Rule violations surfaced to players. These are recovered locally: the
// session turns them into a private notice and leaves state unchanged.
var (
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotInLobby     = errors.New("game is not accepting players")
	ErrNotCurrentTurn = errors.New("it is not your turn")
	ErrGameEnded      = errors.New("game has ended")
	ErrInvalidBet     = errors.New("invalid bet")
	ErrNotSeated      = errors.New("player is not in this game")
	ErrUnknownAction  = errors.New("unknown action")
)
