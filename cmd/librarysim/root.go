package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"librarysim/internal/config"
)

// app carries what the persistent pre-run resolved to the subcommands.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "librarysim",
		Short: "Library catalog and wishlist simulation",
		Long: `librarysim keeps a catalog of books with copy counts, lets patrons
order, collect and return them, and puts patrons on a wishlist when no
copy is free. Waiting patrons are told when a copy comes back.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			level, err := config.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(a),
		newDemoCmd(a),
		newImportCmd(a),
		newRemoteCmd(),
		newConfigCmd(),
	)

	return cmd
}
