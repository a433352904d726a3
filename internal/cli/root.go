// Package cli wires the rentbot commands.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/config"
	"github.com/namiiiah/Rent-Player-DiscordBot/pkg/logger"
)

// Build information, set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFiles []string

	dotenvMissing bool
}

// NewRootCommand creates the root command of the rentbot binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rentbot",
		Short: "Rental bot core service",
		Long:  "Booking intake, rental state machine and countdown scheduler behind the chat platform gateway.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			missing, err := config.LoadDotEnv(opts.EnvFiles...)
			if err != nil {
				return err
			}
			opts.dotenvMissing = missing
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap(ctx context.Context, opts *RootOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "rentbot",
	})
	if opts.dotenvMissing {
		log.Warn().Strs("files", opts.EnvFiles).Msg("no .env file found, using process environment")
	}
	return cfg, log, nil
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rentbot %s (%s)\n", Version, Commit)
			return err
		},
	}
}
