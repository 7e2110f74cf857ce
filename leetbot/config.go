package leetbot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/Misacorp/leetbot/leetbot/database"
	"github.com/Misacorp/leetbot/leetbot/queue"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig             `toml:"log"`
	Bot    BotConfig             `toml:"bot"`
	Game   GameConfig            `toml:"game"`
	Store  StoreConfig           `toml:"store"`
	DB     database.DBConfig     `toml:"db"`
	Dynamo database.DynamoConfig `toml:"dynamo"`
	Queue  queue.Config          `toml:"queue"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// GameConfig fixes the timezone whose wall clock defines the 13:37 and 13:38
// windows. An unknown identifier is a fatal startup error.
type GameConfig struct {
	Timezone string `toml:"timezone"`
}

// StoreConfig selects the record store backend: "dynamodb" or "postgres".
type StoreConfig struct {
	Backend string `toml:"backend"`
}
