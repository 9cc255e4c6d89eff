package server

import (
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		UserID  uint   `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"data":    post,
	})
}

// GetPosts handles GET /posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"data": posts})
}

// GetPost handles GET /posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"data": post})
}

// UpdatePost handles PUT /posts/:id. Empty title or content keeps the
// stored value.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, id, req.Title, req.Content)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"data":    post,
	})
}

// DeletePost handles DELETE /posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), id); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
