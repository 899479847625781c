package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	GitHub   GitHubConfig
	Activity ActivityConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL,    default=100h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=devconnector"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type GitHubConfig struct {
	Token    string        `env:"GITHUB_TOKEN"`
	BaseURL  string        `env:"GITHUB_BASE_URL,  default=https://api.github.com"`
	CacheTTL time.Duration `env:"GITHUB_CACHE_TTL, default=10m"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=8"`
}

// Pretty reports whether logs should be human readable.
func (c *Config) Pretty() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
