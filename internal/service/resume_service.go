package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/domain"
	"github.com/spec-kit/resume-service/internal/ownership"
	"github.com/spec-kit/resume-service/internal/repository"
)

const maxResumeTitle = 200

// ResumeInput carries the editable fields of a resume.
type ResumeInput struct {
	Title    string
	Summary  string
	IsPublic bool
}

func (in ResumeInput) validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return &FieldError{Field: "title", Reason: "required"}
	}
	if utf8.RuneCountInString(title) > maxResumeTitle {
		return &FieldError{Field: "title", Reason: "too long"}
	}
	return nil
}

// ResumeService exposes resume operations restricted to the resume's owner.
type ResumeService struct {
	resumes repository.ResumeRepository
	guard   *ownership.Guard
}

// NewResumeService builds the service.
func NewResumeService(resumes repository.ResumeRepository, guard *ownership.Guard) *ResumeService {
	return &ResumeService{resumes: resumes, guard: guard}
}

func (s *ResumeService) ownerOf(ctx context.Context, resourceID string) (string, bool, error) {
	id, err := strconv.ParseInt(resourceID, 10, 64)
	if err != nil {
		return "", false, nil
	}
	return s.resumes.FindOwner(ctx, id)
}

func (s *ResumeService) enforce(ctx context.Context, principal *auth.Principal, id int64) error {
	return s.guard.Enforce(ctx, strconv.FormatInt(id, 10), principal, s.ownerOf)
}

// Create stores a new resume owned by principal.
func (s *ResumeService) Create(ctx context.Context, principal *auth.Principal, in ResumeInput) (*domain.Resume, error) {
	if principal == nil {
		return nil, ErrInvalidCredentials
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	resume := &domain.Resume{Title: strings.TrimSpace(in.Title), Summary: in.Summary, IsPublic: in.IsPublic}
	if err := s.resumes.Create(ctx, principal.Subject, resume); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return resume, nil
}

// ListMine returns the principal's resumes.
func (s *ResumeService) ListMine(ctx context.Context, principal *auth.Principal) ([]domain.Resume, error) {
	if principal == nil {
		return nil, ErrInvalidCredentials
	}
	return s.resumes.ListByOwner(ctx, principal.Subject)
}

// Get returns a resume after checking ownership.
func (s *ResumeService) Get(ctx context.Context, principal *auth.Principal, id int64) (*domain.Resume, error) {
	if err := s.enforce(ctx, principal, id); err != nil {
		return nil, err
	}
	return s.resumes.GetByID(ctx, id)
}

// Update replaces the editable fields after checking ownership. Ownership is
// decided before the body is validated, as for Get and Delete.
func (s *ResumeService) Update(ctx context.Context, principal *auth.Principal, id int64, in ResumeInput) (*domain.Resume, error) {
	if err := s.enforce(ctx, principal, id); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	resume, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resume.Title = strings.TrimSpace(in.Title)
	resume.Summary = in.Summary
	resume.IsPublic = in.IsPublic
	if err := s.resumes.Update(ctx, resume); err != nil {
		return nil, err
	}
	return resume, nil
}

// Delete removes a resume after checking ownership.
func (s *ResumeService) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	if err := s.enforce(ctx, principal, id); err != nil {
		return err
	}
	return s.resumes.Delete(ctx, id)
}
