package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// TCP game server
	Server ServerConfig `toml:"server"`

	// Browser front end
	Web WebConfig `toml:"web"`

	// Match runner settings
	Game GameConfig `toml:"game"`

	// Best-level persistence
	Store StoreConfig `toml:"store"`

	// Operational logging
	Log LogConfig `toml:"log"`
}

// ServerConfig contains TCP game server settings.
type ServerConfig struct {
	Port string `toml:"port"` // Listen port for the JSON protocol
}

// WebConfig contains HTTP and WebSocket bridge settings.
type WebConfig struct {
	Port            string `toml:"port"`             // HTTP listen port
	GameAddr        string `toml:"game_addr"`        // TCP game server the bridge dials
	MessageInterval string `toml:"message_interval"` // Min spacing of inbound WebSocket messages (e.g., "50ms")
	MessageBurst    int    `toml:"message_burst"`    // Messages allowed back to back
}

// GameConfig contains match runner settings.
type GameConfig struct {
	ThinkDelay string `toml:"think_delay"` // Pause before each computer move (e.g., "800ms")
	MaxTurns   int    `toml:"max_turns"`   // Turn limit per match (0 = unlimited)
	Seed       int64  `toml:"seed"`        // RNG seed (0 = random)
}

// StoreConfig selects where the best level is kept.
type StoreConfig struct {
	Backend string `toml:"backend"` // memory, yaml or sqlite
	Path    string `toml:"path"`    // File for the yaml and sqlite backends
}

// LogConfig contains slog settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text or json
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7777",
		},
		Web: WebConfig{
			Port:            "8080",
			GameAddr:        "localhost:7777",
			MessageInterval: "50ms",
			MessageBurst:    10,
		},
		Game: GameConfig{
			ThinkDelay: "800ms",
			MaxTurns:   0,
			Seed:       0,
		},
		Store: StoreConfig{
			Backend: BackendYAML,
			Path:    "",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the per-user data directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".versusbattle")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from path, or from DefaultPath when path is
// empty. Returns the default config if the file doesn't exist. Keys missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Game.ThinkDelay); err != nil {
		return fmt.Errorf("invalid think delay %q: %w", c.Game.ThinkDelay, err)
	}
	if c.Game.MaxTurns < 0 {
		return fmt.Errorf("max turns cannot be negative: %d", c.Game.MaxTurns)
	}

	if _, err := time.ParseDuration(c.Web.MessageInterval); err != nil {
		return fmt.Errorf("invalid message interval %q: %w", c.Web.MessageInterval, err)
	}
	if c.Web.MessageBurst < 1 {
		return fmt.Errorf("message burst must be at least 1: %d", c.Web.MessageBurst)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendYAML, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// GetThinkDelay returns the computer's think delay as a duration.
func (c *Config) GetThinkDelay() (time.Duration, error) {
	return time.ParseDuration(c.Game.ThinkDelay)
}

// GetMessageInterval returns the WebSocket message interval as a duration.
func (c *Config) GetMessageInterval() (time.Duration, error) {
	return time.ParseDuration(c.Web.MessageInterval)
}

// StorePath returns the store file, defaulting to a file in Dir named after the backend.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(dir, "versusbattle.db"), nil
	}
	return filepath.Join(dir, "progress.yaml"), nil
}

// NewLogger builds a slog logger writing to w according to the [log] section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
