package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/events"
)

// Mailer delivers a rendered message. Delivery itself lives outside this service.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// LogMailer records messages instead of sending them.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(_ context.Context, from, to, subject, _ string) error {
	m.Logger.Info("mail handed off",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer Mailer, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventResetCodeIssued, n.handleResetCodeIssued)
	n.dispatcher.Subscribe(events.EventAccountCreated, n.handleAccountCreated)
	n.dispatcher.Subscribe(events.EventAccountWithdrawn, n.handleAccountWithdrawn)
}

func (n *NotificationService) handleResetCodeIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ResetCodeIssuedPayload)
	if !ok {
		return fmt.Errorf("event %s: unexpected payload %T", event.ID, event.Payload)
	}
	n.logger.Info("ResetCodeIssued", zap.String("event_id", event.ID), zap.String("target", payload.Target))
	body := fmt.Sprintf("Your verification code is %s. It expires at %s.",
		payload.Code, payload.ExpiresAt.Format("15:04 MST"))
	return n.sendEmail(ctx, payload.Target, "Password reset verification code", body)
}

func (n *NotificationService) handleAccountCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountPayload)
	if !ok {
		return fmt.Errorf("event %s: unexpected payload %T", event.ID, event.Payload)
	}
	n.logger.Info("AccountCreated", zap.String("event_id", event.ID), zap.String("email", payload.Email))
	return n.sendEmail(ctx, payload.Email, "Welcome", fmt.Sprintf("Hello %s, your account is ready.", payload.Name))
}

func (n *NotificationService) handleAccountWithdrawn(_ context.Context, event events.Event) error {
	n.logger.Info("AccountWithdrawn", zap.String("event_id", event.ID), zap.String("subject", event.Subject))
	return nil
}

func (n *NotificationService) sendEmail(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || n.mailer == nil {
		n.logger.Debug("email notification disabled", zap.String("to", to))
		return nil
	}
	return n.mailer.Send(ctx, n.cfg.EmailFrom, to, subject, body)
}
