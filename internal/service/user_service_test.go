package service

import (
	"context"
	"errors"
	"testing"

	"postboard/internal/credentials"
	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getWithCredentialsFn func(context.Context, uint) (*models.User, error)
	getWithPostsFn       func(context.Context, uint) (*models.User, []models.PostSummary, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	listFn               func(context.Context) ([]models.User, error)
	updateGuardedFn      func(context.Context, uint, string, map[string]any) error
	deleteGuardedFn      func(context.Context, uint, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetWithCredentials(ctx context.Context, id uint) (*models.User, error) {
	return s.getWithCredentialsFn(ctx, id)
}
func (s *userRepoStub) GetWithPosts(ctx context.Context, id uint) (*models.User, []models.PostSummary, error) {
	return s.getWithPostsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context) ([]models.User, error) {
	return s.listFn(ctx)
}
func (s *userRepoStub) UpdateGuarded(ctx context.Context, id uint, guard string, fields map[string]any) error {
	return s.updateGuardedFn(ctx, id, guard, fields)
}
func (s *userRepoStub) DeleteGuarded(ctx context.Context, id uint, guard string) error {
	return s.deleteGuardedFn(ctx, id, guard)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:            func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getWithCredentialsFn: func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getWithPostsFn: func(_ context.Context, _ uint) (*models.User, []models.PostSummary, error) {
			return &models.User{}, nil, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		listFn:          func(_ context.Context) ([]models.User, error) { return nil, nil },
		updateGuardedFn: func(_ context.Context, _ uint, _ string, _ map[string]any) error { return nil },
		deleteGuardedFn: func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegister_Success(t *testing.T) {
	repo := noopUserRepo()
	var created *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		created = u
		return nil
	}
	svc := NewUserService(repo, credentials.Plaintext{})

	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@x.com", Password: "p1", Nickname: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "p1", created.Password)
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewUserService(noopUserRepo(), credentials.Plaintext{})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com"})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
		return &models.User{ID: 1}, nil
	}
	createCalled := false
	repo.createFn = func(_ context.Context, _ *models.User) error {
		createCalled = true
		return nil
	}
	svc := NewUserService(repo, credentials.Plaintext{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@x.com", Password: "p1", Nickname: "A",
	})
	assertAppErrorCode(t, err, "CONFLICT")
	assert.False(t, createCalled)
}

func TestRegister_BcryptHashesPassword(t *testing.T) {
	repo := noopUserRepo()
	var created *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		created = u
		return nil
	}
	svc := NewUserService(repo, credentials.Bcrypt{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@x.com", Password: "p1", Nickname: "A",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "p1", created.Password)
	assert.True(t, credentials.Bcrypt{}.Verify(created.Password, "p1"))
}

func TestUpdateUser_PlaintextGuardsOnSubmittedPassword(t *testing.T) {
	repo := noopUserRepo()
	var gotGuard string
	var gotFields map[string]any
	repo.updateGuardedFn = func(_ context.Context, _ uint, guard string, fields map[string]any) error {
		gotGuard = guard
		gotFields = fields
		return nil
	}
	svc := NewUserService(repo, credentials.Plaintext{})

	err := svc.UpdateUser(context.Background(), UpdateUserInput{
		ID: 1, Password: "p1", Nickname: "new-nick",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", gotGuard)
	assert.Contains(t, gotFields, "updated_at")
	assert.Equal(t, "new-nick", gotFields["nickname"])
	assert.NotContains(t, gotFields, "email")
	assert.NotContains(t, gotFields, "password")
}

func TestUpdateUser_NewPasswordIsHashed(t *testing.T) {
	repo := noopUserRepo()
	var gotFields map[string]any
	repo.updateGuardedFn = func(_ context.Context, _ uint, _ string, fields map[string]any) error {
		gotFields = fields
		return nil
	}
	svc := NewUserService(repo, credentials.Plaintext{})

	err := svc.UpdateUser(context.Background(), UpdateUserInput{
		ID: 1, Password: "p1", NewPassword: "p2",
	})
	require.NoError(t, err)
	assert.Equal(t, "p2", gotFields["password"])
}

func TestUpdateUser_BcryptVerifiesBeforeGuardedWrite(t *testing.T) {
	stored, err := credentials.Bcrypt{}.Hash("p1")
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getWithCredentialsFn = func(_ context.Context, _ uint) (*models.User, error) {
		return &models.User{ID: 1, Password: stored}, nil
	}
	var gotGuard string
	repo.updateGuardedFn = func(_ context.Context, _ uint, guard string, _ map[string]any) error {
		gotGuard = guard
		return nil
	}
	svc := NewUserService(repo, credentials.Bcrypt{})

	require.NoError(t, svc.UpdateUser(context.Background(), UpdateUserInput{
		ID: 1, Password: "p1", Nickname: "n",
	}))
	assert.Equal(t, stored, gotGuard)

	err = svc.UpdateUser(context.Background(), UpdateUserInput{ID: 1, Password: "wrong"})
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func TestUpdateUser_BcryptUnaffectedByCachedRead(t *testing.T) {
	stored, err := credentials.Bcrypt{}.Hash("p1")
	require.NoError(t, err)

	// A cached user read carries no password; the guard resolution must not
	// see it, or a correct password would be rejected after any prior read.
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
		return &models.User{ID: 1, Password: ""}, nil
	}
	repo.getWithCredentialsFn = func(_ context.Context, _ uint) (*models.User, error) {
		return &models.User{ID: 1, Password: stored}, nil
	}
	svc := NewUserService(repo, credentials.Bcrypt{})

	err = svc.UpdateUser(context.Background(), UpdateUserInput{
		ID: 1, Password: "p1", Nickname: "n",
	})
	require.NoError(t, err)
}

func TestDeleteUser_PassesGuard(t *testing.T) {
	repo := noopUserRepo()
	var gotID uint
	var gotGuard string
	repo.deleteGuardedFn = func(_ context.Context, id uint, guard string) error {
		gotID = id
		gotGuard = guard
		return nil
	}
	svc := NewUserService(repo, credentials.Plaintext{})

	require.NoError(t, svc.DeleteUser(context.Background(), 7, "p1"))
	assert.Equal(t, uint(7), gotID)
	assert.Equal(t, "p1", gotGuard)
}

func TestGetUserWithPosts(t *testing.T) {
	repo := noopUserRepo()
	repo.getWithPostsFn = func(_ context.Context, id uint) (*models.User, []models.PostSummary, error) {
		return &models.User{ID: id, Nickname: "A"}, []models.PostSummary{{ID: 3, Title: "t"}}, nil
	}
	svc := NewUserService(repo, credentials.Plaintext{})

	got, err := svc.GetUserWithPosts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, "t", got.Posts[0].Title)
}
