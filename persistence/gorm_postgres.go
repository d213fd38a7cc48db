// persistence/gorm_postgres.go
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/cardbot/models"
)

// GormPostgres 使用GORM的PostgreSQL实现
type GormPostgres struct {
	db *gorm.DB
}

// NewGormPostgres 创建GORM PostgreSQL数据库连接
func NewGormPostgres(host string, port int, user, password, dbname string) (*GormPostgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormPlayer{}, &models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgres{db: db}, nil
}

// SavePlayerData 保存玩家数据
func (p *GormPostgres) SavePlayerData(playerID string, data map[string]any) error {
	var player models.GormPlayer
	result := p.db.Where("player_id = ?", playerID).First(&player)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		player = models.GormPlayer{
			PlayerID: playerID,
			Extra:    data,
		}
		if name, ok := data["name"].(string); ok {
			player.Name = name
		}
		return p.db.Create(&player).Error
	} else if result.Error != nil {
		return result.Error
	}

	player.Extra = data
	return p.db.Save(&player).Error
}

// LoadPlayerData 加载玩家数据
func (p *GormPostgres) LoadPlayerData(playerID string) (map[string]any, error) {
	var player models.GormPlayer
	if err := p.db.Where("player_id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return player.Extra, nil
}

// SaveGameRecord 保存对局记录
func (p *GormPostgres) SaveGameRecord(channelID, gameType string, result map[string]any) error {
	record := models.GormGameRecord{
		ChannelID: channelID,
		GameType:  gameType,
		Result:    result,
	}
	return p.db.Create(&record).Error
}

// ListRecentGames 查询最近的对局
func (p *GormPostgres) ListRecentGames(limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := p.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.GameRecord{
			ChannelID: r.ChannelID,
			GameType:  r.GameType,
			Result:    r.Result,
			CreatedAt: r.CreatedAt,
		})
	}
	return records, nil
}

// GetPlayerStats 统计玩家战绩
func (p *GormPostgres) GetPlayerStats(playerID string) (models.PlayerStats, error) {
	var stats models.PlayerStats

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) as total_games,
            COALESCE(SUM(CASE WHEN result->'players'->@pid->>'outcome' = 'win' THEN 1 ELSE 0 END), 0) as wins,
            COALESCE(SUM(CASE WHEN result->'players'->@pid->>'outcome' = 'lose' THEN 1 ELSE 0 END), 0) as losses,
            COALESCE(SUM(CASE WHEN result->'players'->@pid->>'outcome' = 'push' THEN 1 ELSE 0 END), 0) as pushes
        FROM gorm_game_records
        WHERE result->'players'->@pid IS NOT NULL OR result->>'winner' = @pid`,
		sql.Named("pid", playerID),
	).Scan(&stats).Error

	return stats, err
}

// Close 关闭数据库连接
func (p *GormPostgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction 事务支持
func (p *GormPostgres) Transaction(fn func(tx *gorm.DB) error) error {
	return p.db.Transaction(fn)
}
