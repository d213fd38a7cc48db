package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig 牌桌参数
type GameConfig struct {
	StartingChips  int           `mapstructure:"starting_chips"`
	MinBet         int           `mapstructure:"min_bet"`
	CounterGoal    int           `mapstructure:"counter_goal"`
	LobbyTimeout   time.Duration `mapstructure:"lobby_timeout"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	PrivateTTL     time.Duration `mapstructure:"private_ttl"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("game.starting_chips", 300)
	viper.SetDefault("game.min_bet", 5)
	viper.SetDefault("game.counter_goal", 10)
	viper.SetDefault("game.lobby_timeout", time.Minute)
	viper.SetDefault("game.confirm_timeout", 15*time.Second)
	viper.SetDefault("game.private_ttl", 20*time.Second)

	viper.AutomaticEnv()

	// 配置文件缺失时使用默认值
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}

// Default returns the built-in game settings without reading a config file.
// Used by tests and by the factory when no file is present.
func Default() GameConfig {
	return GameConfig{
		StartingChips:  300,
		MinBet:         5,
		CounterGoal:    10,
		LobbyTimeout:   time.Minute,
		ConfirmTimeout: 15 * time.Second,
		PrivateTTL:     20 * time.Second,
	}
}
