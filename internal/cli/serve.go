package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxviazov/courtside/internal/config"
	"github.com/maxviazov/courtside/internal/handler"
	"github.com/maxviazov/courtside/internal/logger"
	"github.com/maxviazov/courtside/internal/service"
	"github.com/maxviazov/courtside/internal/tick"
)

// NewServeCommand creates the command running the HTTP API.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the scoring HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "config loading failed", err)
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "logger initialization failed", err)
	}
	log := appLogger.With().Str("module", "cli").Str("component", "serve").Logger()

	store, err := openBackend(ctx, *cfg, appLogger)
	if err != nil {
		return WrapExitError(ExitCommandError, "storage initialization failed", err)
	}
	defer store.close()

	svc, driver := newGameService(cfg.Clock, store, quartz.NewReal(), appLogger)
	defer driver.Close()

	if cfg.App.Env == "prod" || cfg.App.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(appLogger))
	handler.Register(r, store.pinger, svc)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newGameService wires the service and its tick driver; each needs the other.
func newGameService(cfg config.ClockConfig, store *backend, clock quartz.Clock, logger zerolog.Logger) (service.GameService, *tick.Driver) {
	var svc service.GameService
	driver := tick.NewDriver(clock, tick.Config{Interval: cfg.TickInterval, PersistEvery: cfg.PersistEvery},
		func(ctx context.Context, id string, persist bool) (bool, error) {
			return svc.Tick(ctx, id, persist)
		}, logger)
	svc = service.NewGameService(service.Deps{
		Live:     store.live,
		Finished: store.finished,
		Tx:       store.tx,
		Clock:    clock,
		Ticker:   driver,
	}, logger)
	return svc, driver
}

// requestLogger writes one zerolog line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("module", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
