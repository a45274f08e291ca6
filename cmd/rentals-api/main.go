package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/deppfellow/rentals-api/internal/database"
	"github.com/deppfellow/rentals-api/internal/handler"
	"github.com/deppfellow/rentals-api/internal/lib/utils"
	"github.com/deppfellow/rentals-api/internal/logger"
	"github.com/deppfellow/rentals-api/internal/repository"
	"github.com/deppfellow/rentals-api/internal/router"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/deppfellow/rentals-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const DefaultContextTimeout = 30

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentals-api",
		Short:         "Machinery rentals REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the postgres store migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "routes",
			Short: "Print the route table as JSON",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printRoutes(cmd)
			},
		},
	)

	return root
}

// bootstrap loads the configuration and builds the logger pair every command
// starts from. Config errors are printed because no logger exists yet.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return nil, nil, zerolog.Logger{}, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, log, nil
}

// newRouter wires repositories, services and handlers onto srv.
func newRouter(srv *server.Server) *echo.Echo {
	repos := repository.NewRepositories(srv.Store, srv.Registry, srv.Config.Store.OperationTimeout, srv.Metrics)
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)

	return router.NewRouter(srv, handlers)
}

func serve() error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Store.Driver == config.DriverPostgres {
		if err := database.Migrate(ctx, &log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
	}

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	srv.SetupHTTPServer(newRouter(srv))

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}

func migrate(ctx context.Context) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	if cfg.Store.Driver != config.DriverPostgres {
		log.Warn().Str("driver", cfg.Store.Driver).Msg("migrations only apply to the postgres store")
		return nil
	}

	if err := database.Migrate(ctx, &log, cfg); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}

	return nil
}

// printRoutes builds the router on the memory store, so no backend needs to
// be reachable.
func printRoutes(cmd *cobra.Command) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	cfg.Store.Driver = config.DriverMemory
	cfg.Notifications.Enabled = false

	srv, err := server.New(cmd.Context(), cfg, &log, loggerService)
	if err != nil {
		return err
	}
	defer func() { _ = srv.Shutdown(cmd.Context()) }()

	return utils.PrintJSON(cmd.OutOrStdout(), router.Routes(newRouter(srv)))
}
