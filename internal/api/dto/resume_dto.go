package dto

import (
	"time"

	"github.com/spec-kit/resume-service/internal/domain"
)

// ResumeRequest payload for creating or replacing a resume.
type ResumeRequest struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	IsPublic bool   `json:"is_public"`
}

// ResumeResponse is the public view of a resume.
type ResumeResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewResumeResponse maps a domain resume.
func NewResumeResponse(r *domain.Resume) ResumeResponse {
	return ResumeResponse{
		ID:        r.ID,
		Title:     r.Title,
		Summary:   r.Summary,
		IsPublic:  r.IsPublic,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
