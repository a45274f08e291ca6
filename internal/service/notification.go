package service

import (
	"context"

	"github.com/deppfellow/rentals-api/internal/lib/metrics"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/rs/zerolog"
)

// WelcomeEnqueuer hands a welcome email to the background job queue.
type WelcomeEnqueuer interface {
	EnqueueWelcome(ctx context.Context, to, name string) error
}

const taskWelcome = "email:welcome"

// WelcomeNotifier returns a CreateHook that enqueues a welcome email for new
// users. Enqueue failures are logged and counted, never returned.
func WelcomeNotifier(jobs WelcomeEnqueuer, m *metrics.Metrics) CreateHook {
	return func(ctx context.Context, def *resource.Definition, doc store.Document) {
		logger := zerolog.Ctx(ctx).With().
			Str("task", taskWelcome).
			Str("document_id", doc.ID).
			Logger()

		to, _ := doc.Fields["correo"].(string)
		name, _ := doc.Fields["nombre"].(string)
		if to == "" {
			logger.Warn().Msg("user has no string email, skipping welcome notification")
			m.ObserveNotification(taskWelcome, "skipped")
			return
		}

		if err := jobs.EnqueueWelcome(ctx, to, name); err != nil {
			logger.Error().Err(err).Msg("failed to enqueue welcome notification")
			m.ObserveNotification(taskWelcome, "error")
			return
		}

		logger.Debug().Msg("welcome notification enqueued")
		m.ObserveNotification(taskWelcome, "ok")
	}
}
