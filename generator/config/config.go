package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     int           // websocket and HTTP port
	Interval time.Duration // time between two snapshots
	CacheTTL time.Duration // how long /stats serves the same encoded snapshot
	LogDir   string
	Fabric   FabricConfig
	Redis    RedisConfig
}

type FabricConfig struct {
	Switches int
	Ports    int     // user ports per switch
	EchoLoss float64 // probability that an echo reply never comes back
	Seed     int64   // 0 seeds from the clock
}

type RedisConfig struct {
	Publish bool
	Host    string
	Port    int
	Channel string
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func NewConfig() *Config {
	// a missing .env is the normal case
	_ = godotenv.Load()

	interval := envDuration("GENERATOR_INTERVAL", time.Second)

	return &Config{
		Port:     envInt("GENERATOR_PORT", 8765),
		Interval: interval,
		CacheTTL: envDuration("GENERATOR_CACHE_TTL", interval),
		LogDir:   os.Getenv("LOG_DIR"),
		Fabric: FabricConfig{
			Switches: envInt("GENERATOR_SWITCHES", 4),
			Ports:    envInt("GENERATOR_PORTS", 3),
			EchoLoss: envFloat("GENERATOR_ECHO_LOSS", 0.1),
			Seed:     int64(envInt("GENERATOR_SEED", 0)),
		},
		Redis: RedisConfig{
			Publish: envBool("REDIS_PUBLISH", false),
			Host:    envString("REDIS_HOST", "localhost"),
			Port:    envInt("REDIS_PORT", 6379),
			Channel: envString("REDIS_CHANNEL", "bandwidth_stats"),
		},
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("invalid interval %s", c.Interval)
	}
	if c.Fabric.Switches <= 0 || c.Fabric.Ports <= 0 {
		return fmt.Errorf("fabric needs at least one switch and one port, got %d switches and %d ports",
			c.Fabric.Switches, c.Fabric.Ports)
	}
	if c.Fabric.EchoLoss < 0 || c.Fabric.EchoLoss > 1 {
		return fmt.Errorf("echo loss %v is not a probability", c.Fabric.EchoLoss)
	}
	if c.Redis.Publish && c.Redis.Channel == "" {
		return fmt.Errorf("redis channel is required when publishing")
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

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := time.ParseDuration(s); err == nil {
			return v
		}
	}
	return def
}
