// Package services sits between the game core and persistence. PlayerService
// is the session recorder: finished games land here and get written out.
package services

import (
	"github.com/wfunc/cardbot/logger"
	"github.com/wfunc/cardbot/models"
	"github.com/wfunc/cardbot/persistence"
)

type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// RecordGame persists a finished game. Called off the session goroutine;
// failures are logged, never surfaced to players.
func (s *PlayerService) RecordGame(channelID, gameType string, result map[string]any) {
	if err := s.db.SaveGameRecord(channelID, gameType, result); err != nil {
		logger.Log.Errorf("Saving game record for %s failed: %v", channelID, err)
		return
	}

	// Per-player rows keep the latest chip counts queryable.
	players, ok := result["players"].(map[string]any)
	if !ok {
		return
	}
	for pid, raw := range players {
		data, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if err := s.db.SavePlayerData(pid, data); err != nil {
			logger.Log.Errorf("Saving player %s failed: %v", pid, err)
		}
	}
}

// Stats returns the win/lose/push record of a player.
func (s *PlayerService) Stats(playerID string) (models.PlayerStats, error) {
	return s.db.GetPlayerStats(playerID)
}

// RecentGames lists the latest finished games.
func (s *PlayerService) RecentGames(limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.ListRecentGames(limit)
}

// Profile loads a player's stored data.
func (s *PlayerService) Profile(playerID string) (map[string]any, error) {
	return s.db.LoadPlayerData(playerID)
}
