package command

import (
	"bytes"
	"errors"

	"github.com/spf13/cobra"
)

func initDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Clear the existing data and create new tables",
		Long: "Drops and recreates the database schema. " +
			"This operation destroys all existing rows and cannot be undone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			resp, err := prompt("This will destroy all existing data. Continue? [y|N] ", false)
			if !bytes.Equal(resp, []byte{'y'}) || err != nil {
				logger.InfoContext(cmd.Context(), "aborted database initialization")
				return err
			}

			if err = store.Reset(cmd.Context()); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "database initialized")
			return nil
		},
	}
}
