package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names used to carry credentials.
const (
	AccessTokenCookie   = "access_token"
	RefreshTokenCookie  = "refresh_token"
	LegacyRefreshCookie = "RT"

	accessCookiePath  = "/"
	refreshCookiePath = "/auth"
)

// AccessTokenFromRequest reads the access token cookie, falling back to a bearer header.
func AccessTokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(AccessTokenCookie)); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RefreshTokenFromRequest reads the refresh cookie, accepting the legacy name.
func RefreshTokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(RefreshTokenCookie)); token != "" {
		return token
	}
	return strings.TrimSpace(c.Cookies(LegacyRefreshCookie))
}

// CookieWriter sets and clears credential cookies.
type CookieWriter struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetAccess writes the access token cookie, scoped to the whole site.
func (w CookieWriter) SetAccess(c *fiber.Ctx, token string) {
	c.Cookie(w.cookie(AccessTokenCookie, token, accessCookiePath, w.AccessTTL))
}

// SetRefresh writes the refresh token cookie, scoped to the auth endpoints only.
func (w CookieWriter) SetRefresh(c *fiber.Ctx, token string) {
	c.Cookie(w.cookie(RefreshTokenCookie, token, refreshCookiePath, w.RefreshTTL))
}

// Clear expires both credential cookies.
func (w CookieWriter) Clear(c *fiber.Ctx) {
	for _, ck := range []*fiber.Cookie{
		w.cookie(AccessTokenCookie, "", accessCookiePath, 0),
		w.cookie(RefreshTokenCookie, "", refreshCookiePath, 0),
	} {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.Cookie(ck)
	}
}

func (w CookieWriter) cookie(name, value, path string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl / time.Second),
		HTTPOnly: true,
		Secure:   w.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
