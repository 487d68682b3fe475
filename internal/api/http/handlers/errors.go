package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/ownership"
	"github.com/spec-kit/resume-service/internal/repository"
	"github.com/spec-kit/resume-service/internal/resetcode"
	"github.com/spec-kit/resume-service/internal/service"
	apperrors "github.com/spec-kit/resume-service/pkg/util/errorutil"
)

// mapServiceError translates core errors into boundary errors. Unknown errors
// pass through and become 500s in the error middleware.
func mapServiceError(err error) error {
	var fieldErr *service.FieldError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fieldErr):
		return apperrors.NewValidationError("request validation failed", map[string]any{fieldErr.Field: fieldErr.Reason})
	case errors.Is(err, auth.ErrPasswordPolicy):
		return apperrors.NewValidationError("request validation failed", map[string]any{"password": "does not meet policy"})
	case errors.Is(err, resetcode.ErrInvalidTarget):
		return apperrors.NewValidationError("request validation failed", map[string]any{"email": "required"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, service.ErrInvalidRefresh):
		return apperrors.NewInvalidRefresh()
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.NewConflict("email already registered", nil)
	case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, resetcode.ErrAccountNotFound):
		return apperrors.NewNotFound("account", nil)
	case errors.Is(err, ownership.ErrOwnerNotFound), errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("resource", nil)
	case errors.Is(err, ownership.ErrOwnerMismatch):
		return apperrors.NewOwnerMismatch()
	case errors.Is(err, resetcode.ErrStoreUnavailable):
		return apperrors.NewRecoveryStoreUnavailable(err)
	default:
		return err
	}
}

func checkResultError(result resetcode.CheckResult) error {
	switch result {
	case resetcode.CodeValid:
		return nil
	case resetcode.CodeMismatch:
		return apperrors.NewResetCodeMismatch()
	default:
		return apperrors.NewResetCodeExpired()
	}
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return invalidPayload()
	}
	return nil
}
