// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/talgya/village-journey/internal/engine"
	"github.com/talgya/village-journey/internal/world"
)

// Config is the full set of environment-driven settings.
type Config struct {
	WorldWidth  int     `env:"VILLAGE_WORLD_WIDTH" envDefault:"3"`
	WorldHeight int     `env:"VILLAGE_WORLD_HEIGHT" envDefault:"3"`
	TileSize    float64 `env:"VILLAGE_TILE_SIZE" envDefault:"1.0"`
	Generator   string  `env:"VILLAGE_GENERATOR" envDefault:"uniform"`
	Seed        int64   `env:"VILLAGE_SEED" envDefault:"0"`
	EventChance float64 `env:"VILLAGE_EVENT_CHANCE" envDefault:"1.0"`

	InitialFood    int `env:"VILLAGE_INITIAL_FOOD" envDefault:"50"`
	InitialWood    int `env:"VILLAGE_INITIAL_WOOD" envDefault:"20"`
	InitialGold    int `env:"VILLAGE_INITIAL_GOLD" envDefault:"10"`
	ExtraResidents int `env:"VILLAGE_EXTRA_RESIDENTS" envDefault:"2"`

	DBDialect string `env:"VILLAGE_DB_DIALECT" envDefault:"sqlite"`
	DBPath    string `env:"VILLAGE_DB_PATH" envDefault:"data/village.db"`
	DBDSN     string `env:"VILLAGE_DB_DSN"`

	APIPort      int           `env:"VILLAGE_API_PORT" envDefault:"8080"`
	AdminKey     string        `env:"VILLAGE_ADMIN_KEY"`
	AutoInterval time.Duration `env:"VILLAGE_AUTO_INTERVAL" envDefault:"1s"`
	LogLevel     string        `env:"VILLAGE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file, then parses and validates the environment.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that the env parser cannot.
func (c Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.WorldWidth, c.WorldHeight)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %v", c.TileSize)
	}
	switch world.GenMode(c.Generator) {
	case world.ModeUniform, world.ModeNoise:
	default:
		return fmt.Errorf("unknown generator %q", c.Generator)
	}
	if c.EventChance < 0 || c.EventChance > 1 {
		return fmt.Errorf("event chance must be within 0-1, got %v", c.EventChance)
	}
	if c.InitialFood < 0 || c.InitialWood < 0 {
		return fmt.Errorf("initial food and wood must not be negative, got food=%d wood=%d", c.InitialFood, c.InitialWood)
	}
	if c.ExtraResidents < 0 {
		return fmt.Errorf("extra residents must not be negative, got %d", c.ExtraResidents)
	}
	return nil
}

// Game converts the settings into an engine configuration.
func (c Config) Game() engine.Config {
	gc := engine.DefaultConfig()
	gc.World = world.GenConfig{
		Width:    c.WorldWidth,
		Height:   c.WorldHeight,
		TileSize: c.TileSize,
		Seed:     c.Seed,
		Mode:     world.GenMode(c.Generator),
	}
	gc.Village.InitialFood = c.InitialFood
	gc.Village.InitialWood = c.InitialWood
	gc.Village.InitialGold = c.InitialGold
	gc.Village.ExtraResidents = c.ExtraResidents
	gc.EventChance = c.EventChance
	return gc
}
