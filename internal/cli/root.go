// Package cli provides the command-line interface for homelib.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hrutik5321/homelib/internal/catalog"
	"github.com/hrutik5321/homelib/internal/config"
	"github.com/hrutik5321/homelib/internal/db"
	"github.com/hrutik5321/homelib/internal/db/postgres"
	"github.com/hrutik5321/homelib/internal/metrics"
	"github.com/hrutik5321/homelib/internal/reports"
	"github.com/hrutik5321/homelib/internal/service"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// newStore builds the backing store. Swapped in tests.
var newStore = func() db.DB { return postgres.New() }

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "homelib",
		Short: "Home library database browser",
		Long: `homelib browses and edits the home library Postgres database.

Without a subcommand it starts the terminal UI. The other commands run one
operation each and print the result.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			configFile, _ := cmd.Flags().GetString("config")
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg, err := config.Load(config.Options{
				ConfigFile: configFile,
				EnvFile:    envFile,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./homelib.yaml)")
	flags.String("env-file", "", "dotenv file (default: ./.env if present)")
	flags.String("host", config.DefaultHost, "database host")
	flags.Int("port", config.DefaultPort, "database port")
	flags.String("dbname", config.DefaultDatabase, "database name")
	flags.String("user", config.DefaultUser, "database user")
	flags.String("password", "", "database password")
	flags.Bool("ssl", false, "require TLS")
	flags.String("schema", config.DefaultSchema, "schema holding the library tables")
	flags.Int("max-conns", config.DefaultMaxConns, "connection pool size")
	flags.String("catalog", string(catalog.ModeFixed), "table catalog mode (fixed|discover)")
	flags.StringSlice("tables", nil, "tables served in fixed catalog mode")
	flags.Duration("timeout", 0, "per-operation timeout (0 disables)")
	flags.Bool("key-fallback", false, "key tables without a primary key on their first column")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.String("log-format", "text", "log format (text|json)")
	flags.String("log-file", "", "log file, used by the terminal UI")
	flags.StringP("output", "o", config.DefaultOutput, "output format (table|json|csv)")
	flags.String("null", db.NullText, "text that stands for SQL NULL in values and table/csv output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("catalog", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(catalog.ModeFixed), string(catalog.ModeDiscover)}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newColumnsCommand())
	rootCmd.AddCommand(newRowsCommand())
	rootCmd.AddCommand(newInsertCommand())
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newReportsCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newTUICommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	metrics.BuildInfo.WithLabelValues(Version).Set(1)

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg, err := config.Load(config.Options{})
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

// newLibrary wires the store, catalog and report menu. It does not connect.
func newLibrary(cfg *config.Config, logger *slog.Logger) (*service.Library, error) {
	store := newStore()
	cat, err := catalog.New(catalog.Mode(cfg.Catalog.Mode), cfg.Catalog.Tables, store)
	if err != nil {
		return nil, err
	}
	return service.New(store, cat, reports.NewRegistry(reports.Library), service.Options{
		FirstColumnFallback: cfg.Identity.FirstColumnFallback,
		Timeout:             cfg.QueryTimeout,
		Logger:              logger,
	}), nil
}

// connect builds a connected library for one command. Callers Close it.
func connect(cmd *cobra.Command) (*service.Library, *config.Config, error) {
	cfg := getConfig(cmd.Context())
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

	lib, err := newLibrary(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := lib.Connect(cmd.Context(), cfg.ConnConfig()); err != nil {
		return nil, nil, err
	}
	return lib, cfg, nil
}

func output(cmd *cobra.Command, cfg *config.Config) renderer {
	return renderer{w: cmd.OutOrStdout(), format: cfg.Output, null: cfg.NullText}
}
