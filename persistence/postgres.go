// persistence/postgres.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/cardbot/models"
)

// Postgres 基于database/sql的实现
type Postgres struct {
	db *sql.DB
}

// NewPostgres 创建 PostgreSQL 数据库连接
func NewPostgres(host string, port int, user, password, dbname string) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS players (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(255) UNIQUE NOT NULL,
            data JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            channel_id VARCHAR(255) NOT NULL,
            game_type VARCHAR(100) NOT NULL,
            result JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_players_player_id ON players(player_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_channel_id ON game_records(channel_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON game_records(created_at);
    `)

	return err
}

// SavePlayerData 保存玩家数据
func (p *Postgres) SavePlayerData(playerID string, data map[string]any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO players (player_id, data)
        VALUES ($1, $2)
        ON CONFLICT (player_id)
        DO UPDATE SET data = $2, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query, playerID, jsonData)
	return err
}

// LoadPlayerData 加载玩家数据
func (p *Postgres) LoadPlayerData(playerID string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw []byte
	query := `SELECT data FROM players WHERE player_id = $1`
	err := p.db.QueryRowContext(ctx, query, playerID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// SaveGameRecord 保存对局记录
func (p *Postgres) SaveGameRecord(channelID, gameType string, result map[string]any) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO game_records (channel_id, game_type, result)
        VALUES ($1, $2, $3)
    `

	_, err = p.db.ExecContext(ctx, query, channelID, gameType, jsonData)
	return err
}

// ListRecentGames 查询最近的对局
func (p *Postgres) ListRecentGames(limit int) ([]models.GameRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx,
		`SELECT channel_id, game_type, result, created_at
         FROM game_records ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var r models.GameRecord
		var raw []byte
		if err := rows.Scan(&r.ChannelID, &r.GameType, &raw, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &r.Result); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetPlayerStats 统计玩家战绩
func (p *Postgres) GetPlayerStats(playerID string) (models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stats models.PlayerStats
	err := p.db.QueryRowContext(ctx,
		`
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN result->'players'->$1->>'outcome' = 'win' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN result->'players'->$1->>'outcome' = 'lose' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN result->'players'->$1->>'outcome' = 'push' THEN 1 ELSE 0 END), 0)
        FROM game_records
        WHERE result->'players'->$1 IS NOT NULL OR result->>'winner' = $1`,
		playerID,
	).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses, &stats.Pushes)

	return stats, err
}

// Close 关闭数据库连接
func (p *Postgres) Close() error {
	return p.db.Close()
}
