package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultMaxImportSize is the upload ceiling for statement files.
const DefaultMaxImportSize int64 = 10 << 20

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Import   ImportConfig
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type ImportConfig struct {
	MaxSizeBytes int64
	// DemoOnEmptyParse substitutes the demonstration dataset when a file
	// yields no transactions.
	DemoOnEmptyParse bool
}

// NewViper returns a viper instance with defaults, env binding and the
// optional recon.yaml search path. "database.url" maps to DATABASE_URL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("import.max_size_bytes", DefaultMaxImportSize)
	v.SetDefault("import.demo_on_empty_parse", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("recon")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

// Load reads the config file (if any) into v and resolves the settings.
// A missing file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		log.Println("No recon.yaml found, using defaults and environment")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			URL:    v.GetString("database.url"),
		},
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Import: ImportConfig{
			MaxSizeBytes:     v.GetInt64("import.max_size_bytes"),
			DemoOnEmptyParse: v.GetBool("import.demo_on_empty_parse"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database url is required (DATABASE_URL)")
	}
	if c.Import.MaxSizeBytes <= 0 {
		return errors.New("import.max_size_bytes must be positive")
	}
	return nil
}
