package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hrutik5321/homelib/internal/catalog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("host", "", "")
	fs.Int("port", 0, "")
	fs.String("dbname", "", "")
	fs.Bool("ssl", false, "")
	fs.String("catalog", "", "")
	fs.Duration("timeout", 0, "")
	fs.String("output", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Database.Host)
	assert.Equal(t, DefaultPort, cfg.Database.Port)
	assert.Equal(t, DefaultDatabase, cfg.Database.Name)
	assert.Equal(t, DefaultSchema, cfg.Database.Schema)
	assert.False(t, cfg.Database.SSL)
	assert.Equal(t, string(catalog.ModeFixed), cfg.Catalog.Mode)
	assert.Equal(t, catalog.LibraryTables, cfg.Catalog.Tables)
	assert.Zero(t, cfg.QueryTimeout)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "NULL", cfg.NullText)

	conn := cfg.ConnConfig()
	assert.Equal(t, "homelibrary", conn.Database)
	assert.Equal(t, int32(DefaultMaxConns), conn.MaxConns)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "homelib.yaml", `
database:
  host: file-host
  port: 6000
  name: file-db
  password: from-file
catalog:
  mode: discover
query_timeout: 5s
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(Options{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, "file-host", cfg.Database.Host)
		assert.Equal(t, 6000, cfg.Database.Port)
		assert.Equal(t, "from-file", cfg.Database.Password)
		assert.Equal(t, "discover", cfg.Catalog.Mode)
		assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
		assert.Equal(t, DefaultUser, cfg.Database.User)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("HOMELIB_DATABASE__HOST", "env-host")
		t.Setenv("HOMELIB_DATABASE__MAX_CONNS", "9")
		cfg, err := Load(Options{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, "env-host", cfg.Database.Host)
		assert.Equal(t, 9, cfg.Database.MaxConns)
		assert.Equal(t, 6000, cfg.Database.Port)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("HOMELIB_DATABASE__HOST", "env-host")
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--host", "flag-host", "--ssl", "--timeout", "2s"}))

		cfg, err := Load(Options{ConfigFile: path, Flags: fs})
		require.NoError(t, err)
		assert.Equal(t, "flag-host", cfg.Database.Host)
		assert.True(t, cfg.Database.SSL)
		assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
		// Unset flags do not clobber lower layers.
		assert.Equal(t, 6000, cfg.Database.Port)
	})
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "HOMELIB_DATABASE__USER=librarian\nHOMELIB_CATALOG__TABLES=books,genres\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("HOMELIB_DATABASE__USER")
		_ = os.Unsetenv("HOMELIB_CATALOG__TABLES")
	})

	cfg, err := Load(Options{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, "librarian", cfg.Database.User)
	assert.Equal(t, []string{"books", "genres"}, cfg.Catalog.Tables)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit env file", func(t *testing.T) {
		_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "env file")
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file")
	})

	t.Run("invalid value", func(t *testing.T) {
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--catalog", "guess"}))
		_, err := Load(Options{Flags: fs})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown catalog mode")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Host: "h", Port: 5432, Name: "n", User: "u", Schema: "main"},
			Catalog:  CatalogConfig{Mode: "fixed", Tables: []string{"books"}},
			Output:   "table",
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty host", mutate: func(c *Config) { c.Database.Host = " " }, errSubstr: "host is required"},
		{name: "port zero", mutate: func(c *Config) { c.Database.Port = 0 }, errSubstr: "out of range"},
		{name: "port too big", mutate: func(c *Config) { c.Database.Port = 70000 }, errSubstr: "out of range"},
		{name: "no database", mutate: func(c *Config) { c.Database.Name = "" }, errSubstr: "name is required"},
		{name: "no user", mutate: func(c *Config) { c.Database.User = "" }, errSubstr: "user is required"},
		{name: "no schema", mutate: func(c *Config) { c.Database.Schema = "" }, errSubstr: "schema is required"},
		{name: "fixed without tables", mutate: func(c *Config) { c.Catalog.Tables = nil }, errSubstr: "at least one table"},
		{name: "discover without tables", mutate: func(c *Config) { c.Catalog = CatalogConfig{Mode: "discover"} }},
		{name: "negative timeout", mutate: func(c *Config) { c.QueryTimeout = -time.Second }, errSubstr: "query_timeout"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, errSubstr: "output format"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "logfmt" }, errSubstr: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.max_conns", envKey("HOMELIB_DATABASE__MAX_CONNS"))
	assert.Equal(t, "output", envKey("HOMELIB_OUTPUT"))
	assert.Equal(t, "query_timeout", envKey("HOMELIB_QUERY_TIMEOUT"))
}
