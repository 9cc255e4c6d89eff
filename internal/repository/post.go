package repository

import (
	"context"
	"errors"

	"postboard/internal/cache"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]models.PostListItem, error)
	GetByID(ctx context.Context, id uint) (*models.PostListItem, error)
	GetFull(ctx context.Context, id uint) (*models.Post, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post. A violated user foreign key surfaces as an
// internal error; referential integrity is owned by the database.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context) ([]models.PostListItem, error) {
	items := []models.PostListItem{}
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("post_id", "title", "content", "user_id").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.PostListItem, error) {
	var item models.PostListItem
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &item, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Post{}).
			Select("post_id", "title", "content", "user_id").
			Where("post_id = ?", id).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *postRepository) GetFull(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// UpdateFields applies only the provided columns, so omitted request fields
// keep their stored values without a read-modify-write cycle.
func (r *postRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("post_id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
