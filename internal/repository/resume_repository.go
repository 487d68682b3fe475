package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spec-kit/resume-service/internal/domain"
)

// ResumeRepository persists resumes and answers ownership lookups.
type ResumeRepository interface {
	// FindOwner returns the email of the account owning the resume.
	FindOwner(ctx context.Context, id int64) (ownerEmail string, found bool, err error)
	Create(ctx context.Context, ownerEmail string, resume *domain.Resume) error
	GetByID(ctx context.Context, id int64) (*domain.Resume, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Resume, error)
	Update(ctx context.Context, resume *domain.Resume) error
	Delete(ctx context.Context, id int64) error
}

type resumeRepository struct {
	db *sql.DB
}

// NewResumeRepository returns a Postgres-backed implementation.
func NewResumeRepository(db *sql.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) FindOwner(ctx context.Context, id int64) (string, bool, error) {
	const query = `
        SELECT u.email
        FROM resumes r JOIN users u ON u.id = r.user_id
        WHERE r.id=$1`

	var email string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return email, true, nil
}

func (r *resumeRepository) Create(ctx context.Context, ownerEmail string, resume *domain.Resume) error {
	const query = `
        INSERT INTO resumes (user_id, title, summary, is_public)
        SELECT id, $2, $3, $4 FROM users WHERE email=$1
        RETURNING id, user_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		ownerEmail,
		resume.Title,
		resume.Summary,
		resume.IsPublic,
	).Scan(&resume.ID, &resume.UserID, &resume.CreatedAt, &resume.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *resumeRepository) GetByID(ctx context.Context, id int64) (*domain.Resume, error) {
	const query = `
        SELECT id, user_id, title, summary, is_public, created_at, updated_at
        FROM resumes WHERE id=$1`

	var resume domain.Resume
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&resume.Summary,
		&resume.IsPublic,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Resume, error) {
	const query = `
        SELECT r.id, r.user_id, r.title, r.summary, r.is_public, r.created_at, r.updated_at
        FROM resumes r JOIN users u ON u.id = r.user_id
        WHERE u.email=$1
        ORDER BY r.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := make([]domain.Resume, 0)
	for rows.Next() {
		var resume domain.Resume
		if err := rows.Scan(
			&resume.ID,
			&resume.UserID,
			&resume.Title,
			&resume.Summary,
			&resume.IsPublic,
			&resume.CreatedAt,
			&resume.UpdatedAt,
		); err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

func (r *resumeRepository) Update(ctx context.Context, resume *domain.Resume) error {
	const query = `
        UPDATE resumes SET title=$1, summary=$2, is_public=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		resume.Title,
		resume.Summary,
		resume.IsPublic,
		resume.ID,
	).Scan(&resume.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *resumeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resumes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
