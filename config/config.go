package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/Black-And-White-Club/league-ratings/app/observability"
)

// Storage drivers.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

const serviceName = "league-ratings"

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Rating        ratingdomain.Params `yaml:"rating"`
	Queue         QueueConfig         `yaml:"queue"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// AdminRatePerMinute limits admin requests per client IP.
	AdminRatePerMinute int `yaml:"admin_rate_per_minute"`
	AdminBurst         int `yaml:"admin_burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// QueueConfig holds River configuration.
type QueueConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxWorkers int  `yaml:"max_workers"`
}

// StorageConfig selects the repository backend. SeedFile loads leagues,
// entities and games into the memory driver at startup.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	SeedFile string `yaml:"seed_file"`
}

// AuthConfig holds the admin token secret.
type AuthConfig struct {
	AdminJWTSecret string `yaml:"admin_jwt_secret"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{QueueGroup: "league-ratings"},
		HTTP: HTTPConfig{
			Address:            ":8080",
			AdminRatePerMinute: 6,
			AdminBurst:         3,
		},
		Observability: ObservabilityConfig{
			Environment: "production",
			LogLevel:    "info",
		},
		Rating:  ratingdomain.DefaultParams(),
		Queue:   QueueConfig{MaxWorkers: 2},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies environment
// overrides. A missing file falls back to defaults and the environment.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_QUEUE_GROUP"); v != "" {
		cfg.NATS.QueueGroup = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("RATING_K_FACTOR"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATING_K_FACTOR value: %v", err)
		}
		cfg.Rating.KFactor = k
	}
	if v := os.Getenv("RATING_SCALE"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATING_SCALE value: %v", err)
		}
		cfg.Rating.Scale = scale
	}
	if v := os.Getenv("RATING_DEFAULT_RATING"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATING_DEFAULT_RATING value: %v", err)
		}
		cfg.Rating.DefaultRating = rating
	}
	if v := os.Getenv("QUEUE_ENABLED"); v != "" {
		cfg.Queue.Enabled = v == "true"
	}
	if v := os.Getenv("QUEUE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_MAX_WORKERS value: %v", err)
		}
		cfg.Queue.MaxWorkers = n
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_SEED_FILE"); v != "" {
		cfg.Storage.SeedFile = v
	}
	if v := os.Getenv("ADMIN_JWT_SECRET"); v != "" {
		cfg.Auth.AdminJWTSecret = v
	}
	return nil
}

// Validate checks the rating parameters and the backend combination.
func (c *Config) Validate() error {
	if err := c.Rating.Validate(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres storage requires DATABASE_URL or postgres.dsn")
		}
		if c.Storage.SeedFile != "" {
			return errors.New("storage.seed_file is only supported by the memory driver")
		}
	case StorageDriverMemory:
		if c.Queue.Enabled {
			return errors.New("the regeneration queue requires postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Queue.Enabled && c.Queue.MaxWorkers <= 0 {
		return fmt.Errorf("queue.max_workers must be positive, got %d", c.Queue.MaxWorkers)
	}
	return nil
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName: serviceName,
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
