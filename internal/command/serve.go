package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/janua/internal/app"
	"github.com/stolasapp/janua/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if cfg.WebAddress == "" {
				return errors.New("web_address must be set to serve")
			}

			grp, ctx := errgroup.WithContext(cmd.Context())

			appServer := app.New(cfg, logger, store)
			addr, err := server.Run(ctx, grp, appServer, cfg.WebAddress)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx,
				"starting app server...",
				slog.String("address", addr),
			)
			return grp.Wait()
		},
	}
}
