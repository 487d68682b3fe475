package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/domain"
	"github.com/spec-kit/resume-service/internal/events"
	"github.com/spec-kit/resume-service/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
	ErrAccountNotFound    = errors.New("account not found")
)

// FieldError reports a rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// IssuedToken is a signed credential with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Session is the credential set handed out at login.
type Session struct {
	User    *domain.User
	Access  IssuedToken
	Refresh IssuedToken
}

// AuthService coordinates registration, login and credential renewal.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, tokens *auth.TokenService, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		dispatcher: dispatcher,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// NormalizeEmail canonicalizes an email so it can serve as a stable subject.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return &FieldError{Field: "email", Reason: "required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &FieldError{Field: "email", Reason: "invalid format"}
	}
	return nil
}

// Signup creates a USER account.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, &FieldError{Field: "password", Reason: fmt.Sprintf("must be %d to %d bytes", auth.MinPasswordLength, auth.MaxPasswordBytes)}
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &FieldError{Field: "name", Reason: "required"}
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, &FieldError{Field: "phone", Reason: "required"}
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventAccountCreated, email, events.AccountPayload{Email: email, Name: name}))
	return user, nil
}

// Login verifies credentials and issues an access and a refresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	access, err := s.issueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Access: access, Refresh: IssuedToken{Token: refresh, ExpiresAt: refreshExp}}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The account is
// reloaded so the new token carries the current name and role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (IssuedToken, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.String("reason", auth.TokenErrorReason(err)))
		return IssuedToken{}, fmt.Errorf("%w: %v", ErrInvalidRefresh, err)
	}
	user, err := s.users.GetByEmail(ctx, auth.ExtractSubject(*claims))
	if errors.Is(err, repository.ErrNotFound) {
		return IssuedToken{}, fmt.Errorf("%w: account no longer exists", ErrInvalidRefresh)
	}
	if err != nil {
		return IssuedToken{}, err
	}
	return s.issueAccess(user)
}

func (s *AuthService) issueAccess(user *domain.User) (IssuedToken, error) {
	token, exp, err := s.tokens.IssueAccessToken(user.Email, user.Name, user.Role)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: exp}, nil
}

// EmailExists reports whether an account already uses email.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return false, err
	}
	return s.users.ExistsByEmail(ctx, email)
}

// PhoneExists reports whether an account already uses phone.
func (s *AuthService) PhoneExists(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, &FieldError{Field: "phone", Reason: "required"}
	}
	return s.users.ExistsByPhone(ctx, phone)
}

// Me loads the account of the authenticated principal.
func (s *AuthService) Me(ctx context.Context, principal *auth.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, principal.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return user, err
}

// Withdraw deletes the principal's account after re-checking the password.
func (s *AuthService) Withdraw(ctx context.Context, principal *auth.Principal, password string) error {
	user, err := s.Me(ctx, principal)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}
	deleted, err := s.users.DeleteByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountNotFound
	}
	s.publish(ctx, events.NewEvent(events.EventAccountWithdrawn, user.Email, events.AccountPayload{Email: user.Email, Name: user.Name}))
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("event not queued", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
