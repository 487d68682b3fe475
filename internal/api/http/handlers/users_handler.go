package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resume-service/internal/api/dto"
	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/service"
)

// UsersHandler exposes the current account under /api/users/me.
type UsersHandler struct {
	auth    *service.AuthService
	cookies auth.CookieWriter
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cookies auth.CookieWriter) *UsersHandler {
	return &UsersHandler{auth: authService, cookies: cookies}
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRequest(c)
	user, err := h.auth.Me(c.UserContext(), principal)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Withdraw handles DELETE /api/users/me.
func (h *UsersHandler) Withdraw(c *fiber.Ctx) error {
	var req dto.WithdrawRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromRequest(c)
	if err := h.auth.Withdraw(c.UserContext(), principal, req.Password); err != nil {
		return mapServiceError(err)
	}
	h.cookies.Clear(c)
	return c.SendStatus(http.StatusNoContent)
}
