package server

import (
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"data":    user,
	})
}

// GetUsers handles GET /users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"data": users})
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"data": user})
}

// GetUserPosts handles GET /users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserWithPosts(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"data": user})
}

// UpdateUser handles PUT /users/:id. The submitted password must match the
// stored one before any field changes.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Password    string `json:"password"`
		NewPassword string `json:"newPassword"`
		Email       string `json:"email"`
		Nickname    string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdateUser(ctx, service.UpdateUserInput{
		ID:          id,
		Password:    req.Password,
		NewPassword: req.NewPassword,
		Email:       req.Email,
		Nickname:    req.Nickname,
	}); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// DeleteUser handles DELETE /users/:id. The user's posts are removed by the
// database cascade.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.DeleteUser(ctx, id, req.Password); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
