package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resume-service/internal/domain"
)

const principalKey = "auth_principal"

type principalContextKey struct{}

// Principal represents the authenticated caller for one request.
type Principal struct {
	Subject string
	Role    domain.Role
}

// HasRole reports whether the principal carries one of roles.
func (p Principal) HasRole(roles ...domain.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// WithPrincipal attaches the principal to a request-scoped context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal published for this request.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok {
		return nil, false
	}
	return &p, true
}

// PrincipalFromRequest retrieves the principal published by the identity middleware.
func PrincipalFromRequest(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	if !ok {
		return nil, false
	}
	return &p, true
}
