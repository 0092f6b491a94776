package cli

import (
	"os/signal"
	"syscall"

	"github.com/hrutik5321/homelib/internal/api"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(ctx)

			lib, cfg, err := connect(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
			return api.NewServer(lib, logger).Run(ctx, cfg.HTTP.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}
