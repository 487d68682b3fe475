package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/domain"
	"github.com/spec-kit/resume-service/internal/observability"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var testKey = []byte(strings.Repeat("s", 32))

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       base64.StdEncoding.EncodeToString(testKey),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 14 * 24 * time.Hour,
		ClockSkew:       60 * time.Second,
	}
}

func newTestTokenService(t *testing.T, now time.Time, opts ...TokenOption) *TokenService {
	t.Helper()
	opts = append([]TokenOption{WithClock(func() time.Time { return now })}, opts...)
	svc, err := NewTokenService(testAuthConfig(), opts...)
	require.NoError(t, err)
	return svc
}

func signRaw(t *testing.T, method jwt.SigningMethod, key []byte, claims *tokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestNewTokenServiceRejectsMissingKey(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = ""
	_, err := NewTokenService(cfg)
	require.ErrorIs(t, err, config.ErrSigningKeyInvalid)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, fixedNow)

	tests := []struct {
		subject string
		name    string
		role    domain.Role
	}{
		{subject: "u@example.com", name: "Kim", role: domain.RoleUser},
		{subject: "admin@example.com", name: "Root", role: domain.RoleAdmin},
		{subject: "42", name: "", role: domain.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			token, expiresAt, err := svc.IssueAccessToken(tt.subject, tt.name, tt.role)
			require.NoError(t, err)
			assert.Equal(t, fixedNow.Add(time.Hour), expiresAt)
			assert.Len(t, strings.Split(token, "."), 3)

			claims, err := svc.ValidateAccess(token)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, tt.name, claims.DisplayName)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, fixedNow, claims.IssuedAt)
			assert.Equal(t, expiresAt, claims.ExpiresAt)
			assert.NotEmpty(t, claims.ID)
			assert.Equal(t, tt.subject, ExtractSubject(*claims))
			assert.Equal(t, Principal{Subject: tt.subject, Role: tt.role}, claims.Principal())
		})
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, fixedNow)

	token, expiresAt, err := svc.IssueRefreshToken("u@example.com", domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(14*24*time.Hour), expiresAt)

	claims, err := svc.ValidateRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", ExtractSubject(*claims))
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestIssueRejectsBadInput(t *testing.T) {
	svc := newTestTokenService(t, fixedNow)

	_, _, err := svc.IssueAccessToken("  ", "x", domain.RoleUser)
	assert.Error(t, err)
	_, _, err = svc.IssueRefreshToken("u@example.com", domain.Role("ROOT"))
	assert.Error(t, err)
}

func TestExpiryHonorsClockSkew(t *testing.T) {
	validator := newTestTokenService(t, fixedNow)

	tests := []struct {
		name      string
		expiresAt time.Time
		wantErr   error
	}{
		{name: "inside lifetime", expiresAt: fixedNow.Add(time.Minute)},
		{name: "expired within skew", expiresAt: fixedNow.Add(-59 * time.Second)},
		{name: "expired exactly at skew", expiresAt: fixedNow.Add(-60 * time.Second), wantErr: ErrTokenExpired},
		{name: "expired beyond skew", expiresAt: fixedNow.Add(-61 * time.Second), wantErr: ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := newTestTokenService(t, tt.expiresAt.Add(-time.Hour))
			token, expiresAt, err := issuer.IssueAccessToken("u@example.com", "Kim", domain.RoleUser)
			require.NoError(t, err)
			require.Equal(t, tt.expiresAt, expiresAt)

			_, err = validator.ValidateAccess(token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "expired", TokenErrorReason(err))
		})
	}
}

func TestIssuedAtFromTheFuture(t *testing.T) {
	validator := newTestTokenService(t, fixedNow)

	drifted := newTestTokenService(t, fixedNow.Add(45*time.Second))
	token, _, err := drifted.IssueAccessToken("u@example.com", "Kim", domain.RoleUser)
	require.NoError(t, err)
	_, err = validator.ValidateAccess(token)
	require.NoError(t, err, "issuer clock ahead by less than skew must be tolerated")

	farAhead := newTestTokenService(t, fixedNow.Add(5*time.Minute))
	token, _, err = farAhead.IssueAccessToken("u@example.com", "Kim", domain.RoleUser)
	require.NoError(t, err)
	_, err = validator.ValidateAccess(token)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService(t, fixedNow)

	refresh, _, err := svc.IssueRefreshToken("u@example.com", domain.RoleUser)
	require.NoError(t, err)
	_, err = svc.ValidateAccess(refresh)
	require.ErrorIs(t, err, ErrTokenWrongKind)

	access, _, err := svc.IssueAccessToken("u@example.com", "Kim", domain.RoleUser)
	require.NoError(t, err)
	_, err = svc.ValidateRefresh(access)
	require.ErrorIs(t, err, ErrTokenWrongKind)
}

func TestLegacyAccessTokenWithoutKind(t *testing.T) {
	svc := newTestTokenService(t, fixedNow)
	registered := jwt.RegisteredClaims{
		Subject:   "u@example.com",
		IssuedAt:  jwt.NewNumericDate(fixedNow),
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}

	legacy := signRaw(t, jwt.SigningMethodHS256, testKey, &tokenClaims{Name: "Kim", Role: domain.RoleUser, RegisteredClaims: registered})
	claims, err := svc.ValidateAccess(legacy)
	require.NoError(t, err)
	assert.Equal(t, "Kim", claims.DisplayName)

	_, err = svc.ValidateRefresh(legacy)
	require.ErrorIs(t, err, ErrTokenWrongKind)

	bare := signRaw(t, jwt.SigningMethodHS256, testKey, &tokenClaims{Role: domain.RoleUser, RegisteredClaims: registered})
	_, err = svc.ValidateAccess(bare)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateRejectsBrokenTokens(t *testing.T) {
	svc := newTestTokenService(t, fixedNow)
	good, _, err := svc.IssueAccessToken("u@example.com", "Kim", domain.RoleUser)
	require.NoError(t, err)
	other, _, err := svc.IssueAccessToken("mallory@example.com", "Mallory", domain.RoleAdmin)
	require.NoError(t, err)

	goodParts := strings.Split(good, ".")
	otherParts := strings.Split(other, ".")
	swappedPayload := goodParts[0] + "." + otherParts[1] + "." + goodParts[2]

	registered := jwt.RegisteredClaims{
		Subject:   "u@example.com",
		IssuedAt:  jwt.NewNumericDate(fixedNow),
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}
	foreignKey := signRaw(t, jwt.SigningMethodHS256, []byte(strings.Repeat("x", 32)),
		&tokenClaims{Name: "Kim", Role: domain.RoleUser, Type: "access", RegisteredClaims: registered})
	wrongAlg := signRaw(t, jwt.SigningMethodHS512, testKey,
		&tokenClaims{Name: "Kim", Role: domain.RoleUser, Type: "access", RegisteredClaims: registered})
	noExpiry := signRaw(t, jwt.SigningMethodHS256, testKey,
		&tokenClaims{Name: "Kim", Role: domain.RoleUser, Type: "access", RegisteredClaims: jwt.RegisteredClaims{
			Subject: "u@example.com", IssuedAt: jwt.NewNumericDate(fixedNow),
		}})
	badRole := signRaw(t, jwt.SigningMethodHS256, testKey,
		&tokenClaims{Name: "Kim", Role: domain.Role("ROOT"), Type: "access", RegisteredClaims: registered})
	unknownKind := signRaw(t, jwt.SigningMethodHS256, testKey,
		&tokenClaims{Name: "Kim", Role: domain.RoleUser, Type: "id", RegisteredClaims: registered})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: ErrTokenMalformed},
		{name: "garbage", token: "not-a-token", wantErr: ErrTokenMalformed},
		{name: "bad segments", token: "a.b.c", wantErr: ErrTokenMalformed},
		{name: "swapped payload", token: swappedPayload, wantErr: ErrTokenSignatureInvalid},
		{name: "foreign key", token: foreignKey, wantErr: ErrTokenSignatureInvalid},
		{name: "wrong algorithm", token: wrongAlg, wantErr: ErrTokenSignatureInvalid},
		{name: "missing exp", token: noExpiry, wantErr: ErrTokenMalformed},
		{name: "unknown role", token: badRole, wantErr: ErrTokenMalformed},
		{name: "unknown kind", token: unknownKind, wantErr: ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccess(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidationOutcomesAreCounted(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := newTestTokenService(t, fixedNow, WithMetrics(metrics))

	access, _, err := svc.IssueAccessToken("u@example.com", "Kim", domain.RoleUser)
	require.NoError(t, err)
	_, _ = svc.ValidateAccess(access)
	_, _ = svc.ValidateRefresh(access)
	_, _ = svc.ValidateAccess("garbage")

	counter := metrics.TokenValidations()
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("access", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("refresh", "wrong_kind")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("access", "malformed")))
}

func TestTokenErrorReason(t *testing.T) {
	assert.Equal(t, "ok", TokenErrorReason(nil))
	assert.Equal(t, "signature_invalid", TokenErrorReason(ErrTokenSignatureInvalid))
	assert.Equal(t, "unknown", TokenErrorReason(assert.AnError))
}
