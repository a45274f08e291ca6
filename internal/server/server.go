// Package server defines the Server struct that composes the app's shared
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the document store (memory, mongo, postgres or redis)
//   - the redis client, when a component needs one
//   - the background job service (asynq), when notifications are enabled
//   - Prometheus collectors
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/deppfellow/rentals-api/internal/database"
	"github.com/deppfellow/rentals-api/internal/lib/job"
	"github.com/deppfellow/rentals-api/internal/lib/metrics"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/rentals-api/internal/logger"
)

const redisStorePrefix = "rentals"

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// Registry lists the resources served over HTTP.
	Registry *resource.Registry

	// Store is the single document store handle shared by every handler.
	Store store.Store

	// DB is only set for the postgres store driver; Store owns and closes it.
	DB *database.Database

	// Redis is nil unless the redis store or notifications are configured.
	Redis *redis.Client

	Metrics *metrics.Metrics

	// Job is nil unless notifications are enabled.
	Job *job.JobService

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies. Failing to reach
// the selected store aborts startup.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Registry:      resource.Default(),
		Metrics:       metrics.New(),
	}

	if cfg.RedisRequired() {
		s.Redis = s.newRedisClient(ctx)
	}

	st, err := s.newStore(ctx)
	if err != nil {
		_ = s.closeRedis()
		return nil, err
	}
	s.Store = st

	if cfg.Notifications.Enabled {
		jobService := job.NewJobService(logger, cfg)
		jobService.InitHandlers(cfg, logger)

		if err := jobService.Start(); err != nil {
			_ = s.Store.Close(ctx)
			_ = s.closeRedis()
			return nil, err
		}
		s.Job = jobService
	}

	logger.Info().
		Str("store", s.Store.Name()).
		Bool("notifications", s.Job != nil).
		Msg("server dependencies initialized")

	return s, nil
}

func (s *Server) newRedisClient(ctx context.Context) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     s.Config.Redis.Address,
		Password: s.Config.Redis.Password,
		DB:       s.Config.Redis.DB,
	})

	if s.LoggerService != nil && s.LoggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// the redis store pings again through Store.Ping and fails hard
	if err := client.Ping(pingCtx).Err(); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to connect to Redis")
	}

	return client
}

func (s *Server) newStore(ctx context.Context) (store.Store, error) {
	var st store.Store

	switch s.Config.Store.Driver {
	case config.DriverMemory:
		st = store.NewMemoryStore()

	case config.DriverMongo:
		mongoStore, err := store.NewMongoStore(ctx, s.Config.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo store: %w", err)
		}
		st = mongoStore

	case config.DriverPostgres:
		db, err := database.New(ctx, s.Config, s.Logger, s.LoggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db
		st = store.NewPostgresStore(db)

	case config.DriverRedis:
		st = store.NewRedisStore(s.Redis, redisStorePrefix)

	default:
		return nil, fmt.Errorf("unknown store driver %q", s.Config.Store.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.Config.Store.OperationTimeout)
	defer cancel()

	if err := st.Ping(pingCtx); err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("failed to reach %s store: %w", st.Name(), err)
	}

	return st, nil
}

// SetupHTTPServer configures the net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("store", s.Store.Name()).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then releases the job service, store and redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Store != nil {
		if err := s.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s store: %w", s.Store.Name(), err))
		}
	}

	if err := s.closeRedis(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
	}

	return errors.Join(errs...)
}

func (s *Server) closeRedis() error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Close()
}
