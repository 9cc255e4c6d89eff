package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	Title   string
	Content string
	UserID  uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost persists a new post. Only the owning user id is required;
// whether it references an existing user is the database's call.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("userId is required")
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.PostListItem, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.PostListItem, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost updates title and content, each falling back to the stored
// value when the input is empty, and returns the record as persisted.
func (s *PostService) UpdatePost(ctx context.Context, id uint, title, content string) (*models.Post, error) {
	fields := map[string]any{}
	if title != "" {
		fields["title"] = title
	}
	if content != "" {
		fields["content"] = content
	}

	if err := s.postRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.postRepo.GetFull(ctx, id)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}
