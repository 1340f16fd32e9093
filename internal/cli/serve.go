package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/rental-store/internal/config"
	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/queue"
	"github.com/iliyamo/rental-store/internal/router"
	"github.com/iliyamo/rental-store/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the rental store HTTP API.

Configuration comes from the environment, optionally seeded from ./.env.
Rental and payment events are published to RabbitMQ when RABBITMQ_URL is
set, and requests are rate limited when Redis is reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := opts.logger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("close database")
		}
	}()
	log.Info().Str("host", cfg.DB.Host).Str("db", cfg.DB.Name).Msg("database ready")

	deps := service.Deps{
		UoW:        database.NewUnitOfWork(db, cfg.DBAcquireTimeout, log),
		Log:        log,
		BcryptCost: cfg.BcryptCost,
	}
	if cfg.AMQPURL != "" {
		deps.Events = queue.NewPublisher(cfg.AMQPURL)
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, rental events are not published")
	}

	rdb := config.NewRedisClient(cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	e := router.New(router.Deps{
		Services:  service.New(deps),
		Projector: projection.Default(),
		DB:        db,
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTTL,
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(parentContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
