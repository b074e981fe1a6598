package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Queue         QueueConfig         `yaml:"queue"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string  `yaml:"metrics_address"`
	Environment    string  `yaml:"environment"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `yaml:"otlp_insecure"`
	SampleRate     float64 `yaml:"sample_rate"`
}

// ScoringConfig holds board geometry and the systems used when a tournament
// does not name its own.
type ScoringConfig struct {
	TotalCentres     int    `yaml:"total_centres"`
	SoloThreshold    int    `yaml:"solo_threshold"`
	GameSystem       string `yaml:"game_system"`
	RoundSystem      string `yaml:"round_system"`
	TournamentSystem string `yaml:"tournament_system"`
}

// QueueConfig holds River worker settings.
type QueueConfig struct {
	MaxWorkers int           `yaml:"max_workers"`
	MaxRetries int           `yaml:"max_retries"`
	JobTimeout time.Duration `yaml:"job_timeout"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.SampleRate = f
	}
	if v := os.Getenv("SCORING_TOTAL_CENTRES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCORING_TOTAL_CENTRES value: %w", err)
		}
		cfg.Scoring.TotalCentres = n
	}
	if v := os.Getenv("SCORING_SOLO_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCORING_SOLO_THRESHOLD value: %w", err)
		}
		cfg.Scoring.SoloThreshold = n
	}
	if v := os.Getenv("SCORING_GAME_SYSTEM"); v != "" {
		cfg.Scoring.GameSystem = v
	}
	if v := os.Getenv("SCORING_ROUND_SYSTEM"); v != "" {
		cfg.Scoring.RoundSystem = v
	}
	if v := os.Getenv("SCORING_TOURNAMENT_SYSTEM"); v != "" {
		cfg.Scoring.TournamentSystem = v
	}
	if v := os.Getenv("QUEUE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_MAX_WORKERS value: %w", err)
		}
		cfg.Queue.MaxWorkers = n
	}
	return nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Scoring.TotalCentres == 0 {
		cfg.Scoring.TotalCentres = 34
	}
	if cfg.Scoring.SoloThreshold == 0 {
		cfg.Scoring.SoloThreshold = cfg.Scoring.TotalCentres/2 + 1
	}
	if cfg.Scoring.GameSystem == "" {
		cfg.Scoring.GameSystem = "Sum of Squares"
	}
	if cfg.Scoring.RoundSystem == "" {
		cfg.Scoring.RoundSystem = "Best game counts"
	}
	if cfg.Scoring.TournamentSystem == "" {
		cfg.Scoring.TournamentSystem = "Sum best 2 rounds"
	}
	if cfg.Observability.SampleRate == 0 {
		cfg.Observability.SampleRate = 0.1
	}
	if cfg.Queue.MaxWorkers == 0 {
		cfg.Queue.MaxWorkers = 10
	}
	if cfg.Queue.MaxRetries == 0 {
		cfg.Queue.MaxRetries = 5
	}
	if cfg.Queue.JobTimeout == 0 {
		cfg.Queue.JobTimeout = time.Minute
	}
	cfg.Observability.Environment = strings.TrimSpace(cfg.Observability.Environment)
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:    "dip-scoring",
		Environment:    appCfg.Observability.Environment,
		Version:        "0.1.0",
		MetricsAddress: appCfg.Observability.MetricsAddress,
		OTLPEndpoint:   appCfg.Observability.OTLPEndpoint,
		OTLPInsecure:   appCfg.Observability.OTLPInsecure,
		SampleRate:     appCfg.Observability.SampleRate,
	}
}
