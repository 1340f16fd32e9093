package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/rental-store/internal/config"
	"github.com/iliyamo/rental-store/internal/queue"
)

// ConsumeOptions holds flags for the consume command.
type ConsumeOptions struct {
	*RootOptions
	LogPath string
}

// NewConsumeCommand creates the consume command.
func NewConsumeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsumeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append rental events to the event log",
		Long: `Consume rental and payment events from RabbitMQ and append each one as
a JSON line to the event log. The consumer reconnects with backoff until
interrupted.

Example:
  rentald consume --events logs/rental.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsume(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.LogPath, "events", "", "event log path (overrides EVENT_LOG_PATH)")
	return cmd
}

func runConsume(cmd *cobra.Command, opts *ConsumeOptions) error {
	cfg, err := config.LoadConsumer()
	if err != nil {
		return err
	}
	log, err := opts.logger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	path := cfg.EventLogPath
	if opts.LogPath != "" {
		path = opts.LogPath
	}

	ctx, stop := signal.NotifyContext(parentContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("events", path).Msg("consumer starting")
	if err := queue.StartConsumer(ctx, cfg.AMQPURL, path, log); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("consumer stopped")
	return nil
}
