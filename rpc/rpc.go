// Package rpc exposes the admin surface over net/rpc: live table listings and
// player records, for ops tooling rather than players.
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/models"
	"github.com/wfunc/cardbot/services"
	"github.com/wfunc/cardbot/session"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// TableLister is the slice of the factory the admin service needs.
type TableLister interface {
	ActiveTables() []session.Info
}

// TableService exposes the RPC methods. net/rpc signatures: exported method,
// pointer reply, error return.
type TableService struct {
	players *services.PlayerService
	tables  TableLister
}

func NewTableService(players *services.PlayerService, tables TableLister) *TableService {
	return &TableService{players: players, tables: tables}
}

type StatsArgs struct {
	PlayerID string
}

type StatsReply struct {
	Stats models.PlayerStats
}

func (t *TableService) GetPlayerStats(args *StatsArgs, reply *StatsReply) error {
	stats, err := t.players.Stats(args.PlayerID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type ListTablesArgs struct{}

type ListTablesReply struct {
	Tables []session.Info
}

func (t *TableService) ListTables(args *ListTablesArgs, reply *ListTablesReply) error {
	reply.Tables = t.tables.ActiveTables()
	return nil
}

type RecentGamesArgs struct {
	Limit int
}

type RecentGamesReply struct {
	Games []models.GameRecord
}

func (t *TableService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	games, err := t.players.RecentGames(args.Limit)
	if err != nil {
		return err
	}
	reply.Games = games
	return nil
}
