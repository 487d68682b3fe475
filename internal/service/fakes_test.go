package service

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/domain"
	"github.com/spec-kit/resume-service/internal/repository"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32))),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		ClockSkew:       time.Minute,
		BcryptCost:      4,
	}
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(testAuthConfig())
	require.NoError(t, err)
	return tokens
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byMail: map[string]*domain.User{}}
}

func (f *fakeUsers) add(t *testing.T, email, password, name string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	u := &domain.User{Email: email, PasswordHash: hash, Name: name, Phone: "010-" + name, Role: role}
	require.NoError(t, f.Create(context.Background(), u))
	return u
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byMail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	cp := *user
	f.byMail[user.Email] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byMail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byMail[email]
	return ok, nil
}

func (f *fakeUsers) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byMail {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdatePasswordByEmail(_ context.Context, email, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byMail[email]
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	return true, nil
}

func (f *fakeUsers) DeleteByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byMail[email]
	delete(f.byMail, email)
	return ok, nil
}

func (f *fakeUsers) rename(email, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byMail[email].Name = name
}

type fakeResumes struct {
	mu      sync.Mutex
	users   *fakeUsers
	nextID  int64
	resumes map[int64]domain.Resume
	owners  map[int64]string
}

func newFakeResumes(users *fakeUsers) *fakeResumes {
	return &fakeResumes{users: users, resumes: map[int64]domain.Resume{}, owners: map[int64]string{}}
}

func (f *fakeResumes) seed(id int64, owner, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes[id] = domain.Resume{ID: id, Title: title}
	f.owners[id] = owner
}

func (f *fakeResumes) FindOwner(_ context.Context, id int64) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[id]
	return owner, ok, nil
}

func (f *fakeResumes) Create(ctx context.Context, ownerEmail string, resume *domain.Resume) error {
	owner, err := f.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	resume.ID = 1000 + f.nextID
	resume.UserID = owner.ID
	f.resumes[resume.ID] = *resume
	f.owners[resume.ID] = ownerEmail
	return nil
}

func (f *fakeResumes) GetByID(_ context.Context, id int64) (*domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *fakeResumes) ListByOwner(_ context.Context, ownerEmail string) ([]domain.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Resume, 0)
	for id, owner := range f.owners {
		if owner == ownerEmail {
			out = append(out, f.resumes[id])
		}
	}
	return out, nil
}

func (f *fakeResumes) Update(_ context.Context, resume *domain.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.resumes[resume.ID]; !ok {
		return repository.ErrNotFound
	}
	f.resumes[resume.ID] = *resume
	return nil
}

func (f *fakeResumes) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.resumes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.resumes, id)
	delete(f.owners, id)
	return nil
}
