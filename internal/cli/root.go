// Package cli holds the rentald commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/rental-store/internal/config"
)

// RootOptions holds global flags for all commands. Empty values leave the
// environment's LOG_LEVEL and LOG_FORMAT in charge.
type RootOptions struct {
	LogLevel  string
	LogFormat string
}

// ValidFormats defines the allowed log formats.
var ValidFormats = []string{"json", "console"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rentald",
		Short: "Film rental store backend",
		Long:  "Runs the rental store HTTP API and the rental event consumer.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogFormat != "" && !slices.Contains(ValidFormats, opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format json|console (overrides LOG_FORMAT)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewConsumeCommand(opts))
	return cmd
}

// logger builds the root logger, letting flags override the environment.
func (o *RootOptions) logger(w io.Writer, level, format string) (zerolog.Logger, error) {
	if o.LogLevel != "" {
		level = o.LogLevel
	}
	if o.LogFormat != "" {
		format = o.LogFormat
	}
	return config.NewLogger(w, level, format)
}

// parentContext is the command's context, or Background when the command
// was executed without one.
func parentContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
