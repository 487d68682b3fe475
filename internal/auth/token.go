package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/domain"
	"github.com/spec-kit/resume-service/internal/observability"
)

// TokenKind distinguishes access credentials from renewal credentials.
type TokenKind int

const (
	KindAccess TokenKind = iota + 1
	KindRefresh
)

func (k TokenKind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// AccessClaims are the validated contents of an access token.
type AccessClaims struct {
	ID          string
	Subject     string
	DisplayName string
	Role        domain.Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// RefreshClaims are the validated contents of a refresh token.
type RefreshClaims struct {
	ID        string
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdentityClaims is implemented by both validated claim types.
type IdentityClaims interface {
	identity() (string, domain.Role)
}

func (c AccessClaims) identity() (string, domain.Role)  { return c.Subject, c.Role }
func (c RefreshClaims) identity() (string, domain.Role) { return c.Subject, c.Role }

// Principal converts validated access claims into the request identity.
func (c AccessClaims) Principal() Principal {
	return Principal{Subject: c.Subject, Role: c.Role}
}

// ExtractSubject returns the stable identity carried by validated claims.
func ExtractSubject(claims IdentityClaims) string {
	subject, _ := claims.identity()
	return subject
}

// tokenClaims is the signed payload. Access tokens issued before typ existed
// carry only name+role, so a missing typ with a name still reads as access.
type tokenClaims struct {
	Name string      `json:"name,omitempty"`
	Role domain.Role `json:"role"`
	Type string      `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) kind() (TokenKind, error) {
	switch c.Type {
	case "access":
		return KindAccess, nil
	case "refresh":
		return KindRefresh, nil
	case "":
		if c.Name != "" {
			return KindAccess, nil
		}
		return 0, fmt.Errorf("%w: token kind missing", ErrTokenMalformed)
	default:
		return 0, fmt.Errorf("%w: unknown token kind %q", ErrTokenMalformed, c.Type)
	}
}

// TokenService issues and validates access and refresh tokens.
type TokenService struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	skew       time.Duration
	now        func() time.Time
	metrics    *observability.Metrics
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records validation outcomes.
func WithMetrics(m *observability.Metrics) TokenOption {
	return func(s *TokenService) { s.metrics = m }
}

// NewTokenService builds the service. Key material is decoded once here and never mutated.
func NewTokenService(cfg config.AuthConfig, opts ...TokenOption) (*TokenService, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}
	s := &TokenService{
		key:        key,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		skew:       cfg.ClockSkew,
		now:        time.Now,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 14 * 24 * time.Hour
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTTL is the lifetime of issued access tokens.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL is the lifetime of issued refresh tokens.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs a short-lived access token.
func (s *TokenService) IssueAccessToken(subject, displayName string, role domain.Role) (string, time.Time, error) {
	return s.issue(KindAccess, subject, displayName, role)
}

// IssueRefreshToken signs a long-lived refresh token.
func (s *TokenService) IssueRefreshToken(subject string, role domain.Role) (string, time.Time, error) {
	return s.issue(KindRefresh, subject, "", role)
}

func (s *TokenService) issue(kind TokenKind, subject, displayName string, role domain.Role) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("auth: subject is required")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: unknown role %q", role)
	}

	ttl := s.accessTTL
	if kind == KindRefresh {
		ttl = s.refreshTTL
	}
	now := s.now().UTC()
	expiresAt := now.Add(ttl)
	claims := &tokenClaims{
		Name: displayName,
		Role: role,
		Type: kind.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

// ValidateAccess verifies an access token and returns its claims.
func (s *TokenService) ValidateAccess(token string) (*AccessClaims, error) {
	claims, kind, err := s.decode(token)
	if err == nil && kind != KindAccess {
		err = fmt.Errorf("%w: got %s token where access was expected", ErrTokenWrongKind, kind)
	}
	s.metrics.RecordTokenValidation(KindAccess.String(), TokenErrorReason(err))
	if err != nil {
		return nil, err
	}
	return &AccessClaims{
		ID:          claims.ID,
		Subject:     claims.Subject,
		DisplayName: claims.Name,
		Role:        claims.Role,
		IssuedAt:    claims.IssuedAt.Time.UTC(),
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}

// ValidateRefresh verifies a refresh token and returns its claims.
func (s *TokenService) ValidateRefresh(token string) (*RefreshClaims, error) {
	claims, kind, err := s.decode(token)
	if err == nil && kind != KindRefresh {
		err = fmt.Errorf("%w: got %s token where refresh was expected", ErrTokenWrongKind, kind)
	}
	s.metrics.RecordTokenValidation(KindRefresh.String(), TokenErrorReason(err))
	if err != nil {
		return nil, err
	}
	return &RefreshClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// decode verifies the signature and time claims. The skew is applied both to exp
// (grace after expiry) and to iat (tolerated issuance from the future).
func (s *TokenService) decode(token string) (*tokenClaims, TokenKind, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, 0, fmt.Errorf("%w: empty token", ErrTokenMalformed)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.skew),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	var claims tokenClaims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}); err != nil {
		return nil, 0, mapJWTError(err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, 0, fmt.Errorf("%w: subject missing", ErrTokenMalformed)
	}
	if claims.IssuedAt == nil {
		return nil, 0, fmt.Errorf("%w: iat missing", ErrTokenMalformed)
	}
	if !claims.Role.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown role %q", ErrTokenMalformed, claims.Role)
	}
	kind, err := claims.kind()
	if err != nil {
		return nil, 0, err
	}
	return &claims, kind, nil
}

// mapJWTError translates jwt library errors into the token error taxonomy.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
