package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/loan-match/backend/internal/observability"
)

type rootOptions struct {
	verbose bool
	logger  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "loanctl",
		Short:         "Browse loan matches and chat about a product",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
				ServiceName: "loanctl",
			})
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(newMatchCmd(opts), newChatCmd(opts))
	return cmd
}
