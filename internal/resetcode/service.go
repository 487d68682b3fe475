package resetcode

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/events"
	"github.com/spec-kit/resume-service/internal/observability"
)

var (
	ErrInvalidTarget   = errors.New("resetcode: recovery target is required")
	ErrAccountNotFound = errors.New("resetcode: account not found")
)

// AccountDirectory is the slice of the user store the recovery flow needs.
type AccountDirectory interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdatePasswordByEmail reports false when no account matched.
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (bool, error)
}

// Service runs the request, verify and confirm steps of credential recovery.
type Service struct {
	store      Store
	accounts   AccountDirectory
	dispatcher events.Dispatcher
	generator  Generator
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithGenerator replaces the random code source.
func WithGenerator(g Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithMetrics records operation outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the recovery flow. dispatcher may be nil, in which case no notification is sent.
func NewService(store Store, accounts AccountDirectory, dispatcher events.Dispatcher, cfg config.AuthConfig, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:      store,
		accounts:   accounts,
		dispatcher: dispatcher,
		generator:  RandomGenerator{},
		ttl:        cfg.ResetCodeTTL,
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
		logger:     logger,
	}
	if s.ttl <= 0 {
		s.ttl = 3 * time.Minute
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL is how long an issued code stays valid.
func (s *Service) TTL() time.Duration { return s.ttl }

// RequestCode issues a fresh code for target and hands it to the notifier.
// Unknown targets succeed silently so callers cannot probe for accounts.
func (s *Service) RequestCode(ctx context.Context, target string) error {
	target = NormalizeTarget(target)
	if target == "" {
		return ErrInvalidTarget
	}

	exists, err := s.accounts.ExistsByEmail(ctx, target)
	if err != nil {
		return fmt.Errorf("lookup recovery target: %w", err)
	}
	if !exists {
		s.logger.Warn("reset code requested for unknown target", zap.String("target", target))
		s.metrics.RecordResetCode("request", "unknown_target")
		return nil
	}

	code, err := s.generator.Generate()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, target, code, s.ttl); err != nil {
		s.metrics.RecordResetCode("request", "store_error")
		return err
	}
	s.metrics.RecordResetCode("request", "issued")

	s.notify(ctx, target, code)
	return nil
}

func (s *Service) notify(ctx context.Context, target, code string) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(events.EventResetCodeIssued, target, events.ResetCodeIssuedPayload{
		Target:    target,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("reset code notification not queued",
			zap.String("target", target),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

// VerifyCode checks a code without consuming it.
func (s *Service) VerifyCode(ctx context.Context, target, code string) (CheckResult, error) {
	target = NormalizeTarget(target)
	if target == "" {
		return 0, ErrInvalidTarget
	}

	stored, found, err := s.store.Get(ctx, target)
	if err != nil {
		s.metrics.RecordResetCode("verify", "store_error")
		return 0, err
	}
	result := CodeValid
	switch {
	case !found:
		result = CodeExpired
	case subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1:
		result = CodeMismatch
	}
	s.metrics.RecordResetCode("verify", result.String())
	return result, nil
}

// ConfirmAndConsume claims the code and, only if it matched, replaces the password.
// The code is deleted before the password is written, so a code authorizes at most
// one change even under concurrent confirms. If the write fails the code is put
// back with its remaining lifetime so the same code can be retried.
func (s *Service) ConfirmAndConsume(ctx context.Context, target, code, newPassword string) (CheckResult, error) {
	target = NormalizeTarget(target)
	if target == "" {
		return 0, ErrInvalidTarget
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return 0, err
	}

	code = strings.TrimSpace(code)
	result, remaining, err := s.store.ConsumeIfMatch(ctx, target, code)
	if err != nil {
		s.metrics.RecordResetCode("confirm", "store_error")
		return 0, err
	}
	s.metrics.RecordResetCode("confirm", result.String())
	if result != CodeValid {
		return result, nil
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		s.restore(ctx, target, code, remaining)
		return 0, fmt.Errorf("hash password: %w", err)
	}
	updated, err := s.accounts.UpdatePasswordByEmail(ctx, target, hash)
	if err != nil {
		s.restore(ctx, target, code, remaining)
		return 0, fmt.Errorf("update password: %w", err)
	}
	if !updated {
		return 0, ErrAccountNotFound
	}
	s.logger.Info("password reset completed", zap.String("target", target))
	return CodeValid, nil
}

func (s *Service) restore(ctx context.Context, target, code string, remaining time.Duration) {
	if remaining <= 0 {
		return
	}
	// the request may already be cancelled; the code still has to go back
	if err := s.store.Restore(context.WithoutCancel(ctx), target, code, remaining); err != nil {
		s.metrics.RecordResetCode("confirm", "restore_failed")
		s.logger.Error("reset code not restored", zap.String("target", target), zap.Error(err))
		return
	}
	s.metrics.RecordResetCode("confirm", "restored")
}

// NormalizeTarget canonicalizes a recovery target (an email address).
func NormalizeTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}
