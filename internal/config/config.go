package config

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port              string `env:"PORT" envDefault:"8080"`
	DBDriver          string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath            string `env:"DB_PATH" envDefault:"data/app.db"`
	DatabaseURL       string `env:"DATABASE_URL"`
	RedisURL          string `env:"REDIS_URL"`
	WorldPath         string `env:"WORLD_PATH"`
	LowStockThreshold int    `env:"LOW_STOCK_THRESHOLD" envDefault:"10"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDriver == "memory" && c.WorldPath == "" {
		return fmt.Errorf("WORLD_PATH is required for driver %q", c.DBDriver)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be >= 0, got %d", c.LowStockThreshold)
	}
	return nil
}

// DSN returns the data source for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Get returns the environment value of key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
