// models/models.go
package models

import (
	"time"
)

// PlayerData 玩家数据模型
type PlayerData struct {
	PlayerID  string         `json:"player_id"`
	Name      string         `json:"name"`
	Chips     int64          `json:"chips"`
	Extra     map[string]any `json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GameRecord 对局记录模型
type GameRecord struct {
	ChannelID string         `json:"channel_id"`
	GameType  string         `json:"game_type"`
	Result    map[string]any `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}

// PlayerStats 玩家统计信息
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Pushes     int `json:"pushes"`
}
