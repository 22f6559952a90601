// Package config manages environment variables and the optional config file.
//
// Responsibilities:
//   - Load a local `.env` file into the process environment (godotenv autoload).
//   - Layer configuration sources with koanf: defaults -> YAML file -> env.
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

/*
	Sources, lowest precedence first:
	  1. Default()                      built-in values
	  2. $SWEETSHOP_CONFIG              optional YAML file
	  3. SWEETSHOP_* env vars           "__" marks nesting:
	                                    SWEETSHOP_SERVER__READ_TIMEOUT -> server.read_timeout
	  4. DB_URI                         database connection string, kept for
	                                    compatibility with existing deployments
*/

const (
	// EnvPrefix is the prefix of every env var read into Config.
	EnvPrefix = "SWEETSHOP_"

	// ConfigFileEnv names the env var holding an optional YAML config path.
	ConfigFileEnv = "SWEETSHOP_CONFIG"

	// DatabaseURIEnv overrides Database.URI when set.
	DatabaseURIEnv = "DB_URI"

	// ServiceName identifies this service in logs and APM.
	ServiceName = "sweetshop"
)

// Sentinel error kinds for this package.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig contains the connection string and pool tuning.
//
// URI selects the engine: postgres:// and postgresql:// use PostgreSQL,
// anything else is treated as a SQLite file (an optional sqlite:// prefix is
// stripped). Lifetimes are in seconds.
type DatabaseConfig struct {
	URI             string `koanf:"uri" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`
}

// Default returns the built-in configuration: a local SQLite file and the
// port the service has always listened on.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:         "5555",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Database: DatabaseConfig{
			URI:             "sqlite://app.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 1800,
			ConnMaxIdleTime: 300,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey maps SWEETSHOP_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// LoadConfig loads configuration from all sources, validates it, applies
// defaults and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: reading env: %v", ErrLoadConfig, err)
	}

	// Unmarshal over the defaults so unset keys keep their default value.
	mainConfig := Default()
	if err := k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if uri := os.Getenv(DatabaseURIEnv); uri != "" {
		mainConfig.Database.URI = uri
	}

	if err := mainConfig.Finalize(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Finalize validates the config, injects default observability settings and
// pins the service name and environment used for logs and traces.
func (c *Config) Finalize() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// IsLocal reports whether the service runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
