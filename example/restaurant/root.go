package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "restaurant",
		Short:         "Book a restaurant table through a slot-filling conversation",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			} else {
				slog.SetLogLoggerLevel(slog.LevelInfo)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.json", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "optional .env file with secrets")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newSlotsCmd())
	return cmd
}
