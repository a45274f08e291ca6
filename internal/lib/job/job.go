// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue: tasks are enqueued with an
// asynq.Client and executed by the workers of an asynq.Server.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/deppfellow/rentals-api/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client

	server      *asynq.Server
	logger      *zerolog.Logger
	emailClient *email.Client
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks the larger worker share:
// critical 6, default 3, low 1 out of 10 workers.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	client := asynq.NewClient(redisOpt(cfg))

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// InitHandlers builds the dependencies the task handlers need.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	j.emailClient = email.NewClient(cfg, logger)
}

// Start registers task handlers and starts the worker server. It does not
// block; workers run until Stop.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}

	return nil
}

// EnqueueWelcome schedules the welcome email of a new user.
func (j *JobService) EnqueueWelcome(ctx context.Context, to, name string) error {
	task, err := NewWelcomeEmailTask(to, name)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TaskWelcome, err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")

	return nil
}

// Stop waits for in-flight tasks and closes the client connection.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
