package cli

import (
	"github.com/spf13/cobra"
)

func newReportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the canned reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			lib, err := newLibrary(cfg, newLogger(cmd.ErrOrStderr(), cfg.Log))
			if err != nil {
				return err
			}
			return output(cmd, cfg).reports(lib.Reports())
		},
	}
}

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report <index|key> [param]",
		Short: "Run a canned report",
		Example: `  homelib report publishers
  homelib report books-by-genre 5
  homelib report 1 5`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, cfg, err := connect(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			index, _, err := lib.LookupReport(args[0])
			if err != nil {
				return err
			}

			var param *string
			if len(args) == 2 {
				param = &args[1]
			}
			set, err := lib.RunReport(cmd.Context(), index, param)
			if err != nil {
				return err
			}
			return output(cmd, cfg).rowSet(set)
		},
	}
}
