// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"postboard/internal/cache"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
//
// UpdateGuarded and DeleteGuarded embed a password precondition in a single
// conditional write (WHERE user_id = ? AND password = ?), so a concurrent
// password change between check and mutation cannot slip through.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetWithCredentials(ctx context.Context, id uint) (*models.User, error)
	GetWithPosts(ctx context.Context, id uint) (*models.User, []models.PostSummary, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	UpdateGuarded(ctx context.Context, id uint, guard string, fields map[string]any) error
	DeleteGuarded(ctx context.Context, id uint, guard string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithCredentials loads the user straight from the database, bypassing
// the cache. Cached entries round-trip through JSON and the password column
// is never serialized, so credential checks must read the source of truth.
func (r *userRepository) GetWithCredentials(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetWithPosts(ctx context.Context, id uint) (*models.User, []models.PostSummary, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.NewNotFoundError("User", id)
		}
		return nil, nil, models.NewInternalError(err)
	}

	posts := []models.PostSummary{}
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("post_id", "title", "created_at").
		Where("user_id = ?", id).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	return &user, posts, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) UpdateGuarded(ctx context.Context, id uint, guard string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ? AND password = ?", id, guard).
		Updates(fields)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.classifyGuardMiss(ctx, id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) DeleteGuarded(ctx context.Context, id uint, guard string) error {
	// The cascade removes the user's posts, so their cache keys must go
	// too. Collect the ids before the delete wipes the rows.
	var postIDs []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", id).
		Pluck("post_id", &postIDs).Error; err != nil {
		return models.NewInternalError(err)
	}

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND password = ?", id, guard).
		Delete(&models.User{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.classifyGuardMiss(ctx, id)
	}
	cache.InvalidateUser(ctx, id)
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, postID)
	}
	return nil
}

// classifyGuardMiss distinguishes a missing row from a failed password
// precondition after a guarded write matched nothing.
func (r *userRepository) classifyGuardMiss(ctx context.Context, id uint) error {
	var user models.User
	if err := r.db.WithContext(ctx).Select("user_id").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", id)
		}
		return models.NewInternalError(err)
	}
	return models.NewUnauthorizedError("Password does not match")
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite phrasing covered for tests
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
