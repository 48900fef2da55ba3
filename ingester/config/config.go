package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	SourceWebSocket = "ws"
	SourceRedis     = "redis"
)

type Config struct {
	Port       int // HTTP port of the dashboard
	WindowSize int // points kept per latency series and on the time axis
	LogDir     string
	Source     SourceConfig
	Redis      RedisConfig
}

type SourceConfig struct {
	Kind string // ws or redis
	URL  string // websocket URL of the measurement source
}

type RedisConfig struct {
	Host    string
	Port    int
	Channel string
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// NewConfig builds the configuration from the environment, loading a .env
// file from the working directory first when one exists.
func NewConfig() *Config {
	// a missing .env is the normal case
	_ = godotenv.Load()

	return &Config{
		Port:       envInt("INGESTER_PORT", 8080),
		WindowSize: envInt("WINDOW_SIZE", 20),
		LogDir:     os.Getenv("LOG_DIR"),
		Source: SourceConfig{
			Kind: envString("SOURCE", SourceWebSocket),
			URL:  envString("SOURCE_URL", "ws://localhost:8765/"),
		},
		Redis: RedisConfig{
			Host:    envString("REDIS_HOST", "localhost"),
			Port:    envInt("REDIS_PORT", 6379),
			Channel: envString("REDIS_CHANNEL", "bandwidth_stats"),
		},
	}
}

// Validate rejects configurations the ingester cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("invalid window size %d", c.WindowSize)
	}
	switch c.Source.Kind {
	case SourceWebSocket:
		if c.Source.URL == "" {
			return fmt.Errorf("source url is required for source %q", c.Source.Kind)
		}
	case SourceRedis:
		if c.Redis.Channel == "" {
			return fmt.Errorf("redis channel is required for source %q", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source.Kind)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}
