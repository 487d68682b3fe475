package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/events"
	"github.com/spec-kit/resume-service/internal/service"
)

// NotificationWorker delivers account notifications off the request path.
type NotificationWorker struct {
	dispatcher *events.AsyncDispatcher
}

// StartNotificationWorker starts the delivery pool and registers notification handlers on it.
func StartNotificationWorker(cfg config.NotificationConfig, mailer service.Mailer, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := events.NewAsyncDispatcher(logger.Named("notifications"), cfg.Workers, cfg.QueueSize)
	service.NewNotificationService(dispatcher, mailer, logger, cfg).RegisterHandlers()
	return &NotificationWorker{dispatcher: dispatcher}
}

// Dispatcher is what services publish to.
func (w *NotificationWorker) Dispatcher() events.Dispatcher {
	return w.dispatcher
}

// Stop drains queued notifications until ctx ends.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	return w.dispatcher.Close(ctx)
}
