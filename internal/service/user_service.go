// Package service implements the business rules sitting between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"time"

	"postboard/internal/credentials"
	"postboard/internal/models"
	"postboard/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	scheme   credentials.Scheme
}

type RegisterInput struct {
	Email    string
	Password string
	Nickname string
}

type UpdateUserInput struct {
	ID          uint
	Password    string
	NewPassword string
	Email       string
	Nickname    string
}

func NewUserService(userRepo repository.UserRepository, scheme credentials.Scheme) *UserService {
	return &UserService{userRepo: userRepo, scheme: scheme}
}

// Register creates a new account. A duplicate email is reported as a
// conflict; the unique index catches the race where two signups for the
// same email interleave.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" || in.Password == "" || in.Nickname == "" {
		return nil, models.NewValidationError("email, password and nickname are required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	stored, err := s.scheme.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: stored,
		Nickname: in.Nickname,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserWithPosts(ctx context.Context, id uint) (*models.UserWithPosts, error) {
	user, posts, err := s.userRepo.GetWithPosts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserWithPosts{User: *user, Posts: posts}, nil
}

// UpdateUser applies a password-guarded update. Omitted fields keep their
// stored values; updated_at is always refreshed.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) error {
	guard, err := s.resolveGuard(ctx, in.ID, in.Password)
	if err != nil {
		return err
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if in.Email != "" {
		fields["email"] = in.Email
	}
	if in.NewPassword != "" {
		stored, herr := s.scheme.Hash(in.NewPassword)
		if herr != nil {
			return models.NewInternalError(herr)
		}
		fields["password"] = stored
	}
	if in.Nickname != "" {
		fields["nickname"] = in.Nickname
	}

	return s.userRepo.UpdateGuarded(ctx, in.ID, guard, fields)
}

// DeleteUser removes the account after the password precondition holds.
// Posts owned by the user go with it via the database cascade.
func (s *UserService) DeleteUser(ctx context.Context, id uint, password string) error {
	guard, err := s.resolveGuard(ctx, id, password)
	if err != nil {
		return err
	}
	return s.userRepo.DeleteGuarded(ctx, id, guard)
}

// resolveGuard turns the submitted password into the value the guarded write
// compares against the password column. Deterministic schemes compare the
// submitted value directly; salted schemes verify against the fetched record
// and then guard on the stored hash, so a concurrent password change still
// voids the write. The fetch bypasses the cache: cached users carry no
// password.
func (s *UserService) resolveGuard(ctx context.Context, id uint, password string) (string, error) {
	if guard, ok := s.scheme.Comparable(password); ok {
		return guard, nil
	}

	user, err := s.userRepo.GetWithCredentials(ctx, id)
	if err != nil {
		return "", err
	}
	if !s.scheme.Verify(user.Password, password) {
		return "", models.NewUnauthorizedError("Password does not match")
	}
	return user.Password, nil
}
