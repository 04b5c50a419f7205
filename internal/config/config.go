package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Port           int      `env:"PORT" envDefault:"3000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	StoreDriver  string `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisURL     string `env:"REDIS_URL"`
	QuestionsCSV string `env:"QUESTIONS_CSV"`
	// RoomTTL is the idle lifetime of a room in the redis store.
	RoomTTL time.Duration `env:"ROOM_TTL" envDefault:"24h"`

	RoundSeconds int  `env:"ROUND_SECONDS" envDefault:"15"`
	BroadcastAll bool `env:"BROADCAST_ALL" envDefault:"false"`

	ScoreBase    int   `env:"SCORE_BASE" envDefault:"1"`
	ScoreBonuses []int `env:"SCORE_BONUSES" envDefault:"5,3,2" envSeparator:","`

	WSRateLimit float64 `env:"WS_RATE_LIMIT" envDefault:"10"`
	WSRateBurst int     `env:"WS_RATE_BURST" envDefault:"20"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads an optional .env file and then parses the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RoundSeconds <= 0 {
		return fmt.Errorf("ROUND_SECONDS must be positive, got %d", c.RoundSeconds)
	}
	if c.ScoreBase < 0 {
		return fmt.Errorf("SCORE_BASE must not be negative, got %d", c.ScoreBase)
	}
	return nil
}

func (c Config) RoundDuration() time.Duration {
	return time.Duration(c.RoundSeconds) * time.Second
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
