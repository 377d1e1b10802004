package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the catalog credential.
const APIKeyEnv = "API_KEY"

// Database drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Catalog defaults.
const (
	DefaultCatalogBaseURL = "https://api.themoviedb.org/3"
	DefaultImageBaseURL   = "https://image.tmdb.org/t/p/w500"
	DefaultLanguage       = "en-US"
	DefaultCatalogTimeout = 10 * time.Second
)

type ServiceConfig struct {
	API              apiConfig              `yaml:"api"`
	Log              LogConfig              `yaml:"log"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	DatabaseConfig   DatabaseConfig         `yaml:"database"`
	Catalog          CatalogConfig          `yaml:"catalog"`
	MessengerConfig  MessengerConfig        `yaml:"messenger"`
	Tracing          TracingConfig          `yaml:"tracing"`
	Prometheus       PrometheusConfig       `yaml:"prometheus"`
	Limiter          LimiterConfig          `yaml:"limiter"`
}

type apiConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver string       `yaml:"driver" validate:"oneof=memory sqlite mysql"`
	Sqlite SqliteConfig `yaml:"sqlite"`
	Mysql  MysqlConfig  `yaml:"mysql"`
}

type SqliteConfig struct {
	Path string `yaml:"path"`
}

type MysqlConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" default:"3306"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Name string `yaml:"db_name"`
}

type CatalogConfig struct {
	BaseURL      string        `yaml:"baseUrl" validate:"required,url"`
	ImageBaseURL string        `yaml:"imageBaseUrl" validate:"required,url"`
	APIKey       string        `yaml:"apiKey"`
	Language     string        `yaml:"language"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
}

type MessengerConfig struct {
	Kafka kafkaConfig `yaml:"kafka"`
}

type kafkaConfig struct {
	Address string `yaml:"address"`
	Topic   string `yaml:"topic"`
}

type TracingConfig struct {
	URL string `yaml:"url"`
}

type PrometheusConfig struct {
	MetricsPort int `yaml:"metricsPort" validate:"gte=0,lte=65535"`
}

type LimiterConfig struct {
	Limit int `yaml:"limit" validate:"gte=0"`
	Burst int `yaml:"burst" validate:"gte=0"`
}

// Default returns the configuration used when no file is supplied.
func Default() ServiceConfig {
	return ServiceConfig{
		API: apiConfig{Port: 8083},
		Log: LogConfig{Level: "info"},
		DatabaseConfig: DatabaseConfig{
			Driver: DriverSQLite,
			Sqlite: SqliteConfig{Path: DefaultSQLitePath()},
			Mysql:  MysqlConfig{Port: 3306},
		},
		Catalog: CatalogConfig{
			BaseURL:      DefaultCatalogBaseURL,
			ImageBaseURL: DefaultImageBaseURL,
			Language:     DefaultLanguage,
			Timeout:      DefaultCatalogTimeout,
		},
		MessengerConfig: MessengerConfig{Kafka: kafkaConfig{Topic: "ratings"}},
		Prometheus:      PrometheusConfig{MetricsPort: 8091},
		Limiter:         LimiterConfig{Limit: 100, Burst: 50},
	}
}

// DefaultSQLitePath returns the database location under the XDG data directory.
func DefaultSQLitePath() string {
	if explicit := os.Getenv("TOPMOVIES_DB"); explicit != "" {
		return explicit
	}
	xdg.Reload()
	dataHome := xdg.DataHome
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "topmovies", "movies.db")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "topmovies", "movies.db")
}

// Load reads the YAML configuration at path over the defaults, applies
// environment overrides and validates the result. An empty path yields
// the defaults.
func Load(path string) (*ServiceConfig, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Catalog.APIKey = key
	}
	if cfg.Catalog.Language == "" {
		cfg.Catalog.Language = DefaultLanguage
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = DefaultCatalogTimeout
	}
	if cfg.DatabaseConfig.Sqlite.Path == "" {
		cfg.DatabaseConfig.Sqlite.Path = DefaultSQLitePath()
	}
	if cfg.DatabaseConfig.Mysql.Port == 0 {
		cfg.DatabaseConfig.Mysql.Port = 3306
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for missing or inconsistent values.
func (c *ServiceConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DatabaseConfig.Driver == DriverMySQL && (c.DatabaseConfig.Mysql.Host == "" || c.DatabaseConfig.Mysql.Name == "") {
		return errors.New("invalid config: mysql driver requires database.mysql.host and database.mysql.db_name")
	}
	return nil
}
