package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdentityMiddleware resolves the caller's principal from the access credential.
// It never rejects a request: a missing or invalid token simply leaves no principal,
// and protected routes enforce authentication downstream.
type IdentityMiddleware struct {
	tokens      *TokenService
	publicPaths []string
	logger      *zap.Logger
}

// NewIdentityMiddleware constructs middleware. Requests under publicPaths are not inspected.
func NewIdentityMiddleware(tokens *TokenService, publicPaths []string, logger *zap.Logger) *IdentityMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefixes := make([]string, 0, len(publicPaths))
	for _, p := range publicPaths {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &IdentityMiddleware{tokens: tokens, publicPaths: prefixes, logger: logger}
}

// Handle runs once per request before any resource handler.
func (m *IdentityMiddleware) Handle(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions || m.isPublic(c.Path()) {
		return c.Next()
	}

	raw := AccessTokenFromRequest(c)
	if raw == "" {
		return c.Next()
	}

	claims, err := m.tokens.ValidateAccess(raw)
	if err != nil {
		m.logger.Debug("access token rejected",
			zap.String("reason", TokenErrorReason(err)),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Next()
	}

	principal := claims.Principal()
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
	return c.Next()
}

func (m *IdentityMiddleware) isPublic(path string) bool {
	for _, prefix := range m.publicPaths {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
