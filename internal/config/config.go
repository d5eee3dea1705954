package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Loop      LoopConfig      `yaml:"loop"`
	PlansFile string          `yaml:"plans_file"`
	Speech    SpeechConfig    `yaml:"speech"`
	XP        XPConfig        `yaml:"xp"`
	History   HistoryConfig   `yaml:"history"`
	Database  DatabaseConfig  `yaml:"database"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LoopConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Debounce     time.Duration `yaml:"debounce"`
	QueueSize    int           `yaml:"queue_size"`
}

type SpeechConfig struct {
	TTSURL        string   `yaml:"tts_url"`
	Voice         string   `yaml:"voice"`
	PlayerCommand []string `yaml:"player_command"`
	CueDir        string   `yaml:"cue_dir"`
}

type XPConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type HistoryConfig struct {
	Backend  string `yaml:"backend"` // sqlite, postgres or none
	StateDir string `yaml:"state_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, fills defaults, then applies
// environment variable overrides. Env vars use the prefix REPCOACH_ and
// underscore-separated paths:
//
//	REPCOACH_SERVER_HOST, REPCOACH_SERVER_PORT, REPCOACH_AUTH_API_KEY,
//	REPCOACH_LOOP_TICK_INTERVAL, REPCOACH_LOOP_DEBOUNCE, REPCOACH_PLANS_FILE,
//	REPCOACH_SPEECH_TTS_URL, REPCOACH_SPEECH_VOICE, REPCOACH_SPEECH_PLAYER,
//	REPCOACH_XP_URL, REPCOACH_XP_API_KEY,
//	REPCOACH_HISTORY_BACKEND, REPCOACH_HISTORY_STATE_DIR,
//	REPCOACH_DB_HOST, REPCOACH_DB_PORT, REPCOACH_DB_NAME,
//	REPCOACH_DB_USER, REPCOACH_DB_PASSWORD, REPCOACH_DB_SSLMODE,
//	REPCOACH_TAILSCALE_ENABLED, REPCOACH_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Loop.TickInterval == 0 {
		cfg.Loop.TickInterval = 100 * time.Millisecond
	}
	if cfg.Loop.Debounce == 0 {
		cfg.Loop.Debounce = 750 * time.Millisecond
	}
	if cfg.Loop.QueueSize == 0 {
		cfg.Loop.QueueSize = 32
	}
	if cfg.PlansFile == "" {
		cfg.PlansFile = "plans.yaml"
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = "sqlite"
	}
	if cfg.History.StateDir == "" {
		cfg.History.StateDir = "data"
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "repcoach"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPCOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPCOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPCOACH_LOOP_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Loop.TickInterval = d
		}
	}
	if v := os.Getenv("REPCOACH_LOOP_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Loop.Debounce = d
		}
	}
	if v := os.Getenv("REPCOACH_PLANS_FILE"); v != "" {
		cfg.PlansFile = v
	}
	if v := os.Getenv("REPCOACH_SPEECH_TTS_URL"); v != "" {
		cfg.Speech.TTSURL = v
	}
	if v := os.Getenv("REPCOACH_SPEECH_VOICE"); v != "" {
		cfg.Speech.Voice = v
	}
	if v := os.Getenv("REPCOACH_SPEECH_PLAYER"); v != "" {
		cfg.Speech.PlayerCommand = strings.Fields(v)
	}
	if v := os.Getenv("REPCOACH_XP_URL"); v != "" {
		cfg.XP.URL = v
	}
	if v := os.Getenv("REPCOACH_XP_API_KEY"); v != "" {
		cfg.XP.APIKey = v
	}
	if v := os.Getenv("REPCOACH_HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = v
	}
	if v := os.Getenv("REPCOACH_HISTORY_STATE_DIR"); v != "" {
		cfg.History.StateDir = v
	}
	if v := os.Getenv("REPCOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPCOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPCOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPCOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPCOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPCOACH_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("REPCOACH_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Loop.TickInterval < 10*time.Millisecond || c.Loop.TickInterval > time.Second {
		return fmt.Errorf("loop.tick_interval must be between 10ms and 1s, got %s", c.Loop.TickInterval)
	}
	if c.Loop.Debounce < 0 {
		return fmt.Errorf("loop.debounce must not be negative")
	}
	if c.Loop.QueueSize < 1 {
		return fmt.Errorf("loop.queue_size must be at least 1")
	}
	switch c.History.Backend {
	case "sqlite", "none":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("history.backend must be sqlite, postgres or none, got %q", c.History.Backend)
	}
	if c.Tailscale.Enabled && c.Tailscale.StateDir == "" {
		return fmt.Errorf("tailscale.state_dir is required when tailscale is enabled")
	}
	return nil
}
