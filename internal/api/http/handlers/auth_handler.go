package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resume-service/internal/api/dto"
	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/resetcode"
	"github.com/spec-kit/resume-service/internal/service"
	apperrors "github.com/spec-kit/resume-service/pkg/util/errorutil"
)

// AuthHandler exposes the unauthenticated credential endpoints under /auth.
type AuthHandler struct {
	auth    *service.AuthService
	resets  *resetcode.Service
	cookies auth.CookieWriter
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, resets *resetcode.Service, cookies auth.CookieWriter) *AuthHandler {
	return &AuthHandler{auth: authService, resets: resets, cookies: cookies}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /auth/login. Both tokens go out as HttpOnly cookies; the
// access token is also returned in the body.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(err)
	}

	h.cookies.SetAccess(c, session.Access.Token)
	h.cookies.SetRefresh(c, session.Refresh.Token)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(session.User),
			"auth": dto.NewTokenResponse(session.Access.Token, session.Access.ExpiresAt, time.Now()),
		},
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := auth.RefreshTokenFromRequest(c)
	if raw == "" {
		return apperrors.NewInvalidRefresh()
	}

	access, err := h.auth.Refresh(c.UserContext(), raw)
	if err != nil {
		return mapServiceError(err)
	}

	h.cookies.SetAccess(c, access.Token)
	return c.JSON(fiber.Map{"data": dto.NewTokenResponse(access.Token, access.ExpiresAt, time.Now())})
}

// Logout handles POST /auth/logout. Tokens are stateless, so this only expires the cookies.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c)
	return c.SendStatus(http.StatusNoContent)
}

// CheckEmail handles GET /auth/check-email?email=.
func (h *AuthHandler) CheckEmail(c *fiber.Ctx) error {
	exists, err := h.auth.EmailExists(c.UserContext(), c.Query("email"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.ExistsResponse{Exists: exists}})
}

// CheckPhone handles GET /auth/check-phone?phone=.
func (h *AuthHandler) CheckPhone(c *fiber.Ctx) error {
	exists, err := h.auth.PhoneExists(c.UserContext(), c.Query("phone"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.ExistsResponse{Exists: exists}})
}

// RequestPasswordReset handles POST /auth/password-reset/request. The response
// is the same whether or not the email belongs to an account.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetCodeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.resets.RequestCode(c.UserContext(), req.Email); err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"expires_in": int64(h.resets.TTL() / time.Second)},
	})
}

// VerifyPasswordReset handles POST /auth/password-reset/verify.
func (h *AuthHandler) VerifyPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetCodeVerifyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.resets.VerifyCode(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return mapServiceError(err)
	}
	if err := checkResultError(result); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"verified": true}})
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetCodeConfirmRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.resets.ConfirmAndConsume(c.UserContext(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		return mapServiceError(err)
	}
	if err := checkResultError(result); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
