// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/cardbot/models"
)

// Database 数据库接口
type Database interface {
	SavePlayerData(playerID string, data map[string]any) error
	LoadPlayerData(playerID string) (map[string]any, error)
	SaveGameRecord(channelID, gameType string, result map[string]any) error
	ListRecentGames(limit int) ([]models.GameRecord, error)
	GetPlayerStats(playerID string) (models.PlayerStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
