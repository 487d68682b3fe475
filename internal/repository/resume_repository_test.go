package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resume-service/internal/domain"
)

var resumeColumns = []string{"id", "user_id", "title", "summary", "is_public", "created_at", "updated_at"}

func newMockResumes(t *testing.T) (ResumeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResumeRepository(db), mock
}

func TestResumeFindOwner(t *testing.T) {
	repo, mock := newMockResumes(t)
	query := regexp.QuoteMeta("FROM resumes r JOIN users u ON u.id = r.user_id")

	tests := []struct {
		name      string
		id        int64
		setup     func()
		wantOwner string
		wantFound bool
		wantErr   bool
	}{
		{
			name: "owned",
			id:   1,
			setup: func() {
				mock.ExpectQuery(query).WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("u@example.com"))
			},
			wantOwner: "u@example.com",
			wantFound: true,
		},
		{
			name: "missing",
			id:   2,
			setup: func() {
				mock.ExpectQuery(query).WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows([]string{"email"}))
			},
		},
		{
			name: "database down",
			id:   3,
			setup: func() {
				mock.ExpectQuery(query).WithArgs(int64(3)).WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			owner, found, err := repo.FindOwner(context.Background(), tt.id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantFound, found)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResumeCreateAndList(t *testing.T) {
	repo, mock := newMockResumes(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO resumes (user_id, title, summary, is_public)")).
		WithArgs("u@example.com", "Backend", "Go", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).AddRow(int64(5), int64(42), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO resumes")).
		WithArgs("ghost@example.com", "x", "", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.email=$1")).
		WithArgs("u@example.com").
		WillReturnRows(sqlmock.NewRows(resumeColumns).
			AddRow(int64(5), int64(42), "Backend", "Go", true, now, now).
			AddRow(int64(3), int64(42), "Old", "", false, now, now))

	resume := &domain.Resume{Title: "Backend", Summary: "Go", IsPublic: true}
	require.NoError(t, repo.Create(context.Background(), "u@example.com", resume))
	assert.Equal(t, int64(5), resume.ID)
	assert.Equal(t, int64(42), resume.UserID)

	err := repo.Create(context.Background(), "ghost@example.com", &domain.Resume{Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	list, err := repo.ListByOwner(context.Background(), "u@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Old", list[1].Title)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResumeGetUpdateDelete(t *testing.T) {
	repo, mock := newMockResumes(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes WHERE id=$1")).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(resumeColumns).AddRow(int64(5), int64(42), "Backend", "Go", false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes WHERE id=$1")).WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(resumeColumns))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE resumes SET title=$1, summary=$2, is_public=$3")).
		WithArgs("Senior Backend", "Go, Postgres", true, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now.Add(time.Minute)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resumes WHERE id=$1")).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resumes WHERE id=$1")).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	resume, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Backend", resume.Title)

	_, err = repo.GetByID(context.Background(), 6)
	require.ErrorIs(t, err, ErrNotFound)

	resume.Title = "Senior Backend"
	resume.Summary = "Go, Postgres"
	resume.IsPublic = true
	require.NoError(t, repo.Update(context.Background(), resume))
	assert.Equal(t, now.Add(time.Minute), resume.UpdatedAt)

	require.NoError(t, repo.Delete(context.Background(), 5))
	require.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
