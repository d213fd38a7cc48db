// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormPlayer 玩家模型
type GormPlayer struct {
	gorm.Model
	PlayerID string         `gorm:"uniqueIndex;not null"`
	Name     string         `gorm:"not null"`
	Chips    int64          `gorm:"default:0"`
	Extra    map[string]any `gorm:"type:jsonb"`
}

// GormGameRecord 对局记录模型
type GormGameRecord struct {
	gorm.Model
	ChannelID string         `gorm:"index;not null"`
	GameType  string         `gorm:"not null"`
	Result    map[string]any `gorm:"type:jsonb;not null"`
}
