package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Game          GameConfig          `yaml:"game"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in process.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address            string   `yaml:"address"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// GameConfig holds the tunable game settings. Starting budget and hint cost
// are fixed by the game rules and not configurable.
type GameConfig struct {
	DefaultMaxTeams   int           `yaml:"default_max_teams"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	ResetAttempts     int           `yaml:"reset_attempts"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"` // json|text
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"` // empty disables trace export
}

const (
	defaultHTTPAddress       = ":8080"
	defaultRateLimitRPS      = 20
	defaultRateLimitBurst    = 40
	defaultMaxTeams          = 20
	defaultReconcileInterval = 5 * time.Minute
	defaultResetAttempts     = 3
)

// LoadConfig loads the configuration from a YAML file. A missing file falls
// back to environment variables only. Environment variables always win.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("GAME_DEFAULT_MAX_TEAMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GAME_DEFAULT_MAX_TEAMS value: %w", err)
		}
		cfg.Game.DefaultMaxTeams = n
	}
	if v := os.Getenv("GAME_RECONCILE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GAME_RECONCILE_INTERVAL value: %w", err)
		}
		cfg.Game.ReconcileInterval = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS value: %w", err)
		}
		cfg.HTTP.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST value: %w", err)
		}
		cfg.HTTP.RateLimitBurst = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.HTTP.RateLimitRPS == 0 {
		c.HTTP.RateLimitRPS = defaultRateLimitRPS
	}
	if c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = defaultRateLimitBurst
	}
	if c.Game.DefaultMaxTeams == 0 {
		c.Game.DefaultMaxTeams = defaultMaxTeams
	}
	if c.Game.ReconcileInterval == 0 {
		c.Game.ReconcileInterval = defaultReconcileInterval
	}
	if c.Game.ResetAttempts == 0 {
		c.Game.ResetAttempts = defaultResetAttempts
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "json"
	}
}

// Validate reports the first setting the service cannot start with.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn (DATABASE_URL) is required")
	}
	if c.Game.DefaultMaxTeams < 1 || c.Game.DefaultMaxTeams > 20 {
		return fmt.Errorf("game.default_max_teams must be between 1 and 20, got %d", c.Game.DefaultMaxTeams)
	}
	if c.Game.ResetAttempts < 1 {
		return fmt.Errorf("game.reset_attempts must be positive, got %d", c.Game.ResetAttempts)
	}
	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 {
		return errors.New("http rate limits must not be negative")
	}
	switch c.Observability.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("observability.log_format must be json or text, got %q", c.Observability.LogFormat)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
