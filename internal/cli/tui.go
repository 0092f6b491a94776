package cli

import (
	"fmt"

	"github.com/hrutik5321/homelib/internal/app"
	"github.com/spf13/cobra"
)

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd)
		},
	}
	cmd.Flags().Bool("connect", false, "connect with the configured settings instead of showing the form")
	cmd.Flags().Int("page-size", 10, "rows per page")
	return cmd
}

func runTUI(cmd *cobra.Command) error {
	cfg := getConfig(cmd.Context())

	logger, closeLog, err := tuiLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	lib, err := newLibrary(cfg, logger)
	if err != nil {
		return err
	}

	autoConnect, _ := cmd.Flags().GetBool("connect")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	program := app.NewProgram(lib, app.Options{
		Conn:        cfg.ConnConfig(),
		AutoConnect: autoConnect,
		PageSize:    pageSize,
	})
	_, runErr := program.Run()

	// Make sure DB is closed.
	if err := lib.Close(); err != nil {
		logger.Warn("error closing DB", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("program failed: %w", runErr)
	}
	return nil
}
