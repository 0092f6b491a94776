package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hrutik5321/homelib/internal/catalog"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps CLI flags whose names differ from their config key.
var flagKeys = map[string]string{
	"host":         "database.host",
	"port":         "database.port",
	"dbname":       "database.name",
	"user":         "database.user",
	"password":     "database.password",
	"ssl":          "database.ssl",
	"schema":       "database.schema",
	"max-conns":    "database.max_conns",
	"catalog":      "catalog.mode",
	"tables":       "catalog.tables",
	"verbose":      "log.verbose",
	"log-format":   "log.format",
	"log-file":     "log.file",
	"addr":         "http.addr",
	"timeout":      "query_timeout",
	"null":         "null_text",
	"key-fallback": "identity.first_column_fallback",
}

// Options tells Load where to look.
type Options struct {
	// ConfigFile is an explicit YAML path. Empty searches the working directory.
	ConfigFile string
	// EnvFile is a dotenv file. Empty tries ".env" and ignores its absence.
	EnvFile string
	// Flags overrides everything else, but only flags that were set.
	Flags *pflag.FlagSet
}

// findConfigFile finds the config file to use.
// Priority: explicit path > homelib.yaml > homelib.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"homelib.yaml", "homelib.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]any {
	return map[string]any{
		"database.host":                  DefaultHost,
		"database.port":                  DefaultPort,
		"database.name":                  DefaultDatabase,
		"database.user":                  DefaultUser,
		"database.password":              "",
		"database.ssl":                   false,
		"database.schema":                DefaultSchema,
		"database.max_conns":             DefaultMaxConns,
		"catalog.mode":                   string(catalog.ModeFixed),
		"catalog.tables":                 catalog.LibraryTables,
		"identity.first_column_fallback": false,
		"query_timeout":                  "0s",
		"log.verbose":                    false,
		"log.format":                     "text",
		"log.file":                       "",
		"http.addr":                      DefaultHTTPAddr,
		"output":                         DefaultOutput,
		"null_text":                      db.NullText,
	}
}

// envKey turns HOMELIB_DATABASE__MAX_CONNS into database.max_conns.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load reads configuration.
// Precedence (highest to lowest): flags > env vars > .env file > config file > defaults
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(opts.ConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. dotenv, which only fills variables not already in the environment
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// A comma list from env or flags arrives as one string.
	cfg.Catalog.Tables = splitTables(cfg.Catalog.Tables)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return nil
}

func splitTables(in []string) []string {
	var out []string
	for _, item := range in {
		for _, t := range strings.Split(item, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
