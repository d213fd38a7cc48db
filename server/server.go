// Package server is the chat gateway: it accepts websocket clients, routes
// their packets into the game factory and pushes channel state back out. It
// is the only notify.Sink in the binary.
package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/cardbot/config"
	"github.com/wfunc/cardbot/factory"
	"github.com/wfunc/cardbot/game"
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/monitor"
	"github.com/wfunc/cardbot/network"
	"github.com/wfunc/cardbot/notify"
	"github.com/wfunc/cardbot/persistence"
	botrpc "github.com/wfunc/cardbot/rpc"
	"github.com/wfunc/cardbot/services"
	"github.com/wfunc/cardbot/timer"
)

// request is the uniform client payload. Every request names the player and,
// except for confirmation replies, the channel it refers to.
type request struct {
	PlayerID  string         `json:"player_id"`
	ChannelID string         `json:"channel_id"`
	GameType  string         `json:"game_type,omitempty"`
	CPUSeats  int            `json:"cpu_seats,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Token     string         `json:"token,omitempty"`
	Accept    bool           `json:"accept,omitempty"`
}

type channelState struct {
	ChannelID string          `json:"channel_id"`
	Summary   string          `json:"summary"`
	Controls  notify.Controls `json:"controls"`
}

type privateNotice struct {
	Text       string `json:"text"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type confirmRequest struct {
	Token          string `json:"token"`
	Prompt         string `json:"prompt"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type errorNotice struct {
	Message string `json:"message"`
}

type Gateway struct {
	cfg       *config.Config
	upgrader  websocket.Upgrader
	factory   *factory.Factory
	players   *services.PlayerService
	monitor   *monitor.Monitor
	timers    *timer.Manager
	rpcServer *botrpc.Server

	mu       sync.Mutex
	conns    map[string]*network.WSConnection // player ID to live connection
	channels map[string]map[string]bool       // channel ID to subscribed players
	pending  map[string]chan bool             // confirmation token to answer

	shutdownChan chan struct{}
}

func NewGateway(cfg *config.Config, db persistence.Database) (*Gateway, error) {
	g := &Gateway{
		cfg:          cfg,
		players:      services.NewPlayerService(db),
		monitor:      monitor.NewMonitor("cardbot"),
		timers:       timer.New(),
		conns:        make(map[string]*network.WSConnection),
		channels:     make(map[string]map[string]bool),
		pending:      make(map[string]chan bool),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	g.factory = factory.New(g, g.players, cfg.Game, g.timers)

	rpcServer, err := botrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		return nil, err
	}
	g.rpcServer = rpcServer
	rpc.Register(botrpc.NewTableService(g.players, g.factory))

	return g, nil
}

func (g *Gateway) Start() error {
	go g.rpcServer.Start()
	g.monitor.StartServer(g.cfg.Server.MetricsAddress)

	g.timers.AddTimer(10*time.Second, 10*time.Second, func() {
		g.monitor.SetActiveTables(g.factory.Count())
	})

	http.HandleFunc("/ws", g.handleWebSocket)
	logger.Log.Infof("Gateway listening on %s", g.cfg.Server.HTTPAddress)
	return http.ListenAndServe(g.cfg.Server.HTTPAddress, nil)
}

func (g *Gateway) Shutdown() {
	close(g.shutdownChan)
	g.rpcServer.Stop()
	g.timers.Stop()
}

func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	g.handleConnection(network.NewWSConnection(conn))
}

func (g *Gateway) handleConnection(conn *network.WSConnection) {
	logger.Log.Infof("New connection from %s", conn.RemoteAddr())
	g.monitor.IncOnlinePlayers()

	var playerID string
	defer func() {
		logger.Log.Infof("Connection closed from %s (player %q)", conn.RemoteAddr(), playerID)
		g.monitor.DecOnlinePlayers()
		g.unbind(playerID, conn)
		conn.Close()
	}()

	for {
		select {
		case <-g.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			if pid := g.handlePacket(conn, packet); pid != "" {
				playerID = pid
			}
		}
	}
}

// handlePacket routes one packet and returns the player identity it carried,
// so the connection can be bound to it.
func (g *Gateway) handlePacket(conn *network.WSConnection, packet *network.Packet) string {
	if packet.MsgID == network.MsgTypeHeartbeat {
		return ""
	}

	var req request
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		g.sendError(conn, "malformed request")
		return ""
	}
	if req.PlayerID == "" {
		g.sendError(conn, "player_id is required")
		return ""
	}
	g.bind(req.PlayerID, conn)

	if packet.MsgID == network.MsgTypeConfirmReply {
		g.resolveConfirmation(req.Token, req.Accept)
		return req.PlayerID
	}

	// Actions run off the read loop so it stays free for confirmation
	// replies; a bet would otherwise block its own answer.
	msgID := packet.MsgID
	go func() {
		start := time.Now()
		g.monitor.IncActions()
		err := g.route(msgID, req)
		g.monitor.ObserveActionLatency(time.Since(start))

		if err != nil {
			g.monitor.IncRejectedActions()
			g.sendError(conn, err.Error())
		}
	}()
	return req.PlayerID
}

func (g *Gateway) route(msgID uint16, req request) error {
	g.subscribe(req.ChannelID, req.PlayerID)
	player := game.PlayerID(req.PlayerID)

	switch msgID {
	case network.MsgTypeNewGame:
		if _, err := g.factory.CreateGame(req.ChannelID, req.GameType, req.CPUSeats); err != nil {
			return err
		}
		return g.factory.Dispatch(req.ChannelID, factory.Event{Player: player, Kind: "join"})
	case network.MsgTypeJoinGame:
		return g.factory.Dispatch(req.ChannelID, factory.Event{Player: player, Kind: "join"})
	case network.MsgTypeQuitGame:
		return g.factory.Dispatch(req.ChannelID, factory.Event{Player: player, Kind: "quit"})
	case network.MsgTypeStartGame:
		return g.factory.Dispatch(req.ChannelID, factory.Event{Player: player, Kind: "start"})
	case network.MsgTypeGameAction:
		return g.factory.Dispatch(req.ChannelID, factory.Event{
			Player:  player,
			Kind:    req.Kind,
			Payload: req.Payload,
		})
	default:
		logger.Log.Infof("Unknown message type: %d", msgID)
		return nil
	}
}

// Notify pushes the channel summary to every subscribed player.
func (g *Gateway) Notify(channelID, summary string, controls notify.Controls) {
	state := channelState{ChannelID: channelID, Summary: summary, Controls: controls}

	g.mu.Lock()
	conns := make([]*network.WSConnection, 0)
	for pid := range g.channels[channelID] {
		if c, ok := g.conns[pid]; ok {
			conns = append(conns, c)
		}
	}
	g.mu.Unlock()

	for _, c := range conns {
		if err := c.SendJSON(network.MsgTypeChannelState, state); err != nil {
			logger.Log.Warnf("Pushing state for %s failed: %v", channelID, err)
		}
	}
}

// NotifyPrivate sends a player-only notice. Offline players just miss it.
func (g *Gateway) NotifyPrivate(playerID, text string, ttl time.Duration) {
	g.mu.Lock()
	c, ok := g.conns[playerID]
	g.mu.Unlock()
	if !ok {
		return
	}
	notice := privateNotice{Text: text, TTLSeconds: int(ttl.Seconds())}
	if err := c.SendJSON(network.MsgTypePrivateNotice, notice); err != nil {
		logger.Log.Warnf("Private notice to %s failed: %v", playerID, err)
	}
}

// RequestConfirmation asks the player to confirm and blocks until they answer
// or the timeout passes. Disconnected players resolve as declined.
func (g *Gateway) RequestConfirmation(playerID, prompt string, timeout time.Duration) bool {
	g.mu.Lock()
	c, ok := g.conns[playerID]
	if !ok {
		g.mu.Unlock()
		return false
	}
	token := uuid.New().String()
	answer := make(chan bool, 1)
	g.pending[token] = answer
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, token)
		g.mu.Unlock()
	}()

	ask := confirmRequest{Token: token, Prompt: prompt, TimeoutSeconds: int(timeout.Seconds())}
	if err := c.SendJSON(network.MsgTypeConfirmRequest, ask); err != nil {
		return false
	}

	select {
	case accepted := <-answer:
		return accepted
	case <-time.After(timeout):
		return false
	}
}

func (g *Gateway) resolveConfirmation(token string, accept bool) {
	g.mu.Lock()
	answer, ok := g.pending[token]
	if ok {
		delete(g.pending, token)
	}
	g.mu.Unlock()
	if ok {
		answer <- accept
	}
}

func (g *Gateway) bind(playerID string, conn *network.WSConnection) {
	g.mu.Lock()
	g.conns[playerID] = conn
	g.mu.Unlock()
}

func (g *Gateway) unbind(playerID string, conn *network.WSConnection) {
	if playerID == "" {
		return
	}
	g.mu.Lock()
	// Only drop the binding if it still points at this connection; the player
	// may have reconnected already.
	if g.conns[playerID] == conn {
		delete(g.conns, playerID)
		for _, subs := range g.channels {
			delete(subs, playerID)
		}
	}
	g.mu.Unlock()
}

func (g *Gateway) subscribe(channelID, playerID string) {
	if channelID == "" {
		return
	}
	g.mu.Lock()
	subs, ok := g.channels[channelID]
	if !ok {
		subs = make(map[string]bool)
		g.channels[channelID] = subs
	}
	subs[playerID] = true
	g.mu.Unlock()
}

func (g *Gateway) sendError(conn *network.WSConnection, message string) {
	if err := conn.SendJSON(network.MsgTypeError, errorNotice{Message: message}); err != nil {
		logger.Log.Warnf("Error notice failed: %v", err)
	}
}
