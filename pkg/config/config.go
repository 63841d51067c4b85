package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage driver names accepted by StorageConfig.Driver.
const (
	DriverJSONFile = "jsonfile"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the use case portal backend.
// Values come from config.yaml with environment variable overrides;
// secrets (session keys, database password) are env-only.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3001"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // set at load time, not from config

	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
}

// AuthConfig holds session and token settings.
type AuthConfig struct {
	// TokenSecret signs login JWTs (HS256). Required.
	TokenSecret string `yaml:"-" env:"AUTH_TOKEN_SECRET"`

	// SessionKey authenticates browser session cookies. Required.
	SessionKey string `yaml:"-" env:"AUTH_SESSION_KEY"`

	// TokenTTLMinutes is the login token lifetime.
	TokenTTLMinutes int `yaml:"token_ttl_minutes" env:"AUTH_TOKEN_TTL_MINUTES" env-default:"720"`

	// UsersFile seeds the user collection for the jsonfile driver.
	UsersFile string `yaml:"users_file" env:"AUTH_USERS_FILE" env-default:"data/users.json"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Driver is "jsonfile" (default) or "postgres".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"jsonfile"`

	// UsecasesFile is the JSON array file for the jsonfile driver.
	UsecasesFile string `yaml:"usecases_file" env:"STORAGE_USECASES_FILE" env-default:"data/usecases.json"`

	// ToolsFile persists custom tools for the jsonfile driver.
	ToolsFile string `yaml:"tools_file" env:"STORAGE_TOOLS_FILE" env-default:"data/custom_tools.json"`

	// MigrationsPath points at the SQL migrations for the postgres driver.
	MigrationsPath string `yaml:"migrations_path" env:"STORAGE_MIGRATIONS_PATH" env-default:"migrations"`

	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL settings for the postgres driver.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"portal"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"usecase_portal"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml is absent the defaults plus environment apply.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("AUTH_TOKEN_SECRET is required")
	}
	if c.Auth.SessionKey == "" {
		return fmt.Errorf("AUTH_SESSION_KEY is required")
	}
	switch c.Storage.Driver {
	case DriverJSONFile, DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
