package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrutik5321/homelib/internal/catalog"
	"github.com/hrutik5321/homelib/internal/db"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultDatabase = "homelibrary"
	DefaultUser     = "postgres"
	DefaultSchema   = "main"
	DefaultMaxConns = 4
	DefaultHTTPAddr = ":8080"
	DefaultOutput   = "table"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HOMELIB_"
)

// Config is the full homelib configuration.
type Config struct {
	Database     DatabaseConfig `koanf:"database"`
	Catalog      CatalogConfig  `koanf:"catalog"`
	Identity     IdentityConfig `koanf:"identity"`
	QueryTimeout time.Duration  `koanf:"query_timeout"`
	Log          LogConfig      `koanf:"log"`
	HTTP         HTTPConfig     `koanf:"http"`
	Output       string         `koanf:"output"`

	// NullText stands for SQL NULL in CLI values and table/csv output.
	NullText string `koanf:"null_text"`
}

type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSL      bool   `koanf:"ssl"`
	Schema   string `koanf:"schema"`
	MaxConns int    `koanf:"max_conns"`
}

type CatalogConfig struct {
	Mode   string   `koanf:"mode"`
	Tables []string `koanf:"tables"`
}

type IdentityConfig struct {
	FirstColumnFallback bool `koanf:"first_column_fallback"`
}

type LogConfig struct {
	Verbose bool   `koanf:"verbose"`
	Format  string `koanf:"format"`
	File    string `koanf:"file"`
}

type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// ConnConfig converts the database section for the driver.
func (c *Config) ConnConfig() db.ConnConfig {
	return db.ConnConfig{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Database: c.Database.Name,
		SSL:      c.Database.SSL,
		Schema:   c.Database.Schema,
		MaxConns: int32(c.Database.MaxConns),
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	d := c.Database
	switch {
	case strings.TrimSpace(d.Host) == "":
		return fmt.Errorf("database host is required")
	case d.Port < 1 || d.Port > 65535:
		return fmt.Errorf("database port %d out of range", d.Port)
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("database name is required")
	case strings.TrimSpace(d.User) == "":
		return fmt.Errorf("database user is required")
	case strings.TrimSpace(d.Schema) == "":
		return fmt.Errorf("database schema is required")
	case d.MaxConns < 0:
		return fmt.Errorf("database max_conns must not be negative")
	}

	switch catalog.Mode(c.Catalog.Mode) {
	case catalog.ModeFixed:
		if len(c.Catalog.Tables) == 0 {
			return fmt.Errorf("catalog mode fixed needs at least one table")
		}
	case catalog.ModeDiscover:
	default:
		return fmt.Errorf("unknown catalog mode %q (want fixed or discover)", c.Catalog.Mode)
	}

	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must not be negative")
	}

	switch c.Output {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q (want table, json or csv)", c.Output)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}

	return nil
}
