package game

import (
	"strconv"
	"strings"
)

// Phase 表示一局游戏的生命周期状态
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInProgress
	PhaseRoundResolution
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseInProgress:
		return "in_progress"
	case PhaseRoundResolution:
		return "round_resolution"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Type identifies the game variant hosted at a table.
type Type int

const (
	TypeCounter Type = iota
	TypeBlackjack
	TypePoker
	TypeUno
)

func (t Type) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeBlackjack:
		return "blackjack"
	case TypePoker:
		return "poker"
	case TypeUno:
		return "uno"
	default:
		return "unknown"
	}
}

// ParseType maps a wire name to a game type.
func ParseType(name string) (Type, bool) {
	switch strings.ToLower(name) {
	case "counter":
		return TypeCounter, true
	case "blackjack":
		return TypeBlackjack, true
	case "poker":
		return TypePoker, true
	case "uno":
		return TypeUno, true
	default:
		return 0, false
	}
}

// PlayerID is the opaque chat-platform identity of a seat.
type PlayerID string

const cpuPrefix = "cpu:"

// CPUSeat returns the identity of the n-th automated seat.
func CPUSeat(n int) PlayerID {
	return PlayerID(cpuPrefix + strconv.Itoa(n))
}

// IsCPU reports whether an identity belongs to an automated seat.
func (id PlayerID) IsCPU() bool {
	return strings.HasPrefix(string(id), cpuPrefix)
}

// Game is the authoritative state of one table. Data holds the variant table
// state and is owned by the variant's rule engine; everything else is managed
// by the session.
type Game struct {
	Type     Type
	Phase    Phase
	CPUCount int
	Turn     TurnOrder
	Data     any
}

// New creates a game in the lobby phase with cpus automated seats already in
// the turn order.
func New(t Type, cpus int) *Game {
	g := &Game{Type: t, Phase: PhaseLobby, CPUCount: cpus}
	for i := 1; i <= cpus; i++ {
		g.Turn.Append(CPUSeat(i))
	}
	return g
}

// Humans returns the number of non-CPU seats.
func (g *Game) Humans() int {
	n := 0
	for _, id := range g.Turn.Seats() {
		if !id.IsCPU() {
			n++
		}
	}
	return n
}
