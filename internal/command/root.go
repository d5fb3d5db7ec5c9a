// Package command contains the CLI command constructors.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stolasapp/janua/internal/config"
	"github.com/stolasapp/janua/internal/observability"
	"github.com/stolasapp/janua/internal/sec"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	configFilePath := filepath.Join(xdg.ConfigHome, "janua.yaml")
	cmd := &cobra.Command{
		Use:          "janua [command] [flags]",
		Short:        "A minimal session-authenticated web application",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := loadOrInitConfig(configFilePath)
			if err != nil {
				return fmt.Errorf("failed to load configuration file: %w", err)
			}
			logger := observability.InitSlog(cfg)
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.String("path", configFilePath),
				slog.String("db", cfg.DBFilepath),
				slog.String("web_address", cfg.WebAddress),
			)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(
		&configFilePath,
		"config", "c",
		configFilePath,
		"path to the configuration file",
	)

	cmd.AddCommand(
		serveCommand(),
		initDBCommand(),
		userCommand(),
	)

	return cmd
}

func loadOrInitConfig(configFilePath string) (*config.Config, error) {
	cfg, err := config.Load(configFilePath)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	resp, initErr := prompt(fmt.Sprintf("Config not found at %s. Create one? [y|N] ", configFilePath), false)
	if initErr != nil || !bytes.Equal(resp, []byte("y")) {
		return nil, errors.Join(err, initErr)
	}

	cfg = config.Default()
	cfg.SecretKey = sec.NewSecretKey()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err = os.WriteFile(configFilePath, data, 0600); err != nil { //nolint:mnd // owner rw access
		return nil, fmt.Errorf("failed to write config file to %s: %w", configFilePath, err)
	}
	return cfg, nil
}
