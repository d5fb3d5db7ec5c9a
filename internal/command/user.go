package command

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/stolasapp/janua/internal/sec"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userDeleteCommand(),
		userListCommand(),
		userSeedCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Creates a user entry for the provided username and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			if passwd, err := prompt("password: ", true); err != nil {
				return err
			} else if hash, err := sec.HashPassword(passwd); err != nil {
				return err
			} else if _, err = store.CreateUser(cmd.Context(), name, hash); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user", slog.String("name", name))
			return nil
		},
	}
}

func userDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete user",
		Long: "Permanently deletes the user. " +
			"This operation is permanent and irreversible.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			logger = logger.With(slog.String("name", name))
			user, err := store.GetUserByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			resp, err := prompt("Are you sure you want to delete this user? [y|N] ", false)
			if !bytes.Equal(resp, []byte{'y'}) || err != nil {
				logger.InfoContext(cmd.Context(), "aborted user deletion")
				return err
			}
			if err = store.DeleteUser(cmd.Context(), user.ID); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "user deleted")
			return nil
		},
	}
}

func userListCommand() *cobra.Command {
	const pageSize = 100
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, _, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			afterName := ""
			for {
				users, err := store.ListUsers(cmd.Context(), afterName, pageSize)
				if err != nil {
					return err
				}
				for _, user := range users {
					cmd.Printf("%d\t%s\n", user.ID, user.Username)
				}
				if len(users) < pageSize {
					return nil
				}
				afterName = users[len(users)-1].Username
			}
		},
	}
}

func userSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed COUNT",
		Short: "Create fake users (dev mode only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if !cfg.DevMode {
				return errors.New("user seed requires dev_mode: true")
			}
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 1 {
				return fmt.Errorf("COUNT must be a positive integer, got %q", args[0])
			}

			for range count {
				name := gofakeit.Username()
				hash, err := sec.HashPassword(gofakeit.Password(true, true, true, false, false, 16))
				if err != nil {
					return err
				}
				user, err := store.CreateUser(cmd.Context(), name, hash)
				if err != nil {
					return err
				}
				logger.InfoContext(cmd.Context(), "created fake user",
					slog.Int64("id", user.ID),
					slog.String("name", name),
				)
			}
			return nil
		},
	}
}
