package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resume-service/internal/api/dto"
	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/service"
	apperrors "github.com/spec-kit/resume-service/pkg/util/errorutil"
)

// ResumesHandler exposes owner-only resume endpoints under /api/resumes.
type ResumesHandler struct {
	resumes *service.ResumeService
}

// NewResumesHandler constructs handler.
func NewResumesHandler(resumes *service.ResumeService) *ResumesHandler {
	return &ResumesHandler{resumes: resumes}
}

func resumeID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid resume id", map[string]any{"id": c.Params("id")})
	}
	return int64(id), nil
}

func (h *ResumesHandler) input(c *fiber.Ctx) (service.ResumeInput, error) {
	var req dto.ResumeRequest
	if err := parseBody(c, &req); err != nil {
		return service.ResumeInput{}, err
	}
	return service.ResumeInput{Title: req.Title, Summary: req.Summary, IsPublic: req.IsPublic}, nil
}

// List handles GET /api/resumes.
func (h *ResumesHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromRequest(c)
	resumes, err := h.resumes.ListMine(c.UserContext(), principal)
	if err != nil {
		return mapServiceError(err)
	}
	out := make([]dto.ResumeResponse, 0, len(resumes))
	for i := range resumes {
		out = append(out, dto.NewResumeResponse(&resumes[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create handles POST /api/resumes.
func (h *ResumesHandler) Create(c *fiber.Ctx) error {
	in, err := h.input(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromRequest(c)
	resume, err := h.resumes.Create(c.UserContext(), principal, in)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewResumeResponse(resume)})
}

// Get handles GET /api/resumes/:id.
func (h *ResumesHandler) Get(c *fiber.Ctx) error {
	id, err := resumeID(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromRequest(c)
	resume, err := h.resumes.Get(c.UserContext(), principal, id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewResumeResponse(resume)})
}

// Update handles PUT /api/resumes/:id.
func (h *ResumesHandler) Update(c *fiber.Ctx) error {
	id, err := resumeID(c)
	if err != nil {
		return err
	}
	in, err := h.input(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromRequest(c)
	resume, err := h.resumes.Update(c.UserContext(), principal, id, in)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewResumeResponse(resume)})
}

// Delete handles DELETE /api/resumes/:id.
func (h *ResumesHandler) Delete(c *fiber.Ctx) error {
	id, err := resumeID(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromRequest(c)
	if err := h.resumes.Delete(c.UserContext(), principal, id); err != nil {
		return mapServiceError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
