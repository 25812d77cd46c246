package server

import (
	"eventrate/internal/models"
	"eventrate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.Context(), s.currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		AvatarURL *string `json:"avatarUrl"`
		Bio       *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    s.currentUserID(c),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// GetMyEvents handles GET /api/users/me/events
// @Summary List own events
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{events=[]models.EventResponse}
// @Router /users/me/events [get]
func (s *Server) GetMyEvents(c *fiber.Ctx) error {
	events, err := s.userService.MyEvents(c.Context(), s.currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// GetMyRatings handles GET /api/users/me/ratings
// @Summary List own ratings
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ratings=[]models.RatingResponse}
// @Router /users/me/ratings [get]
func (s *Server) GetMyRatings(c *fiber.Ctx) error {
	ratings, err := s.ratingService.ListUserRatings(c.Context(), s.currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ratings": ratings})
}

// GetUserRatings handles GET /api/users/:id/ratings
// @Summary List a user's ratings
// @Description Callers may only list their own ratings through this route
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{ratings=[]models.RatingResponse}
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id}/ratings [get]
func (s *Server) GetUserRatings(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != s.currentUserID(c) {
		return fail(c, models.NewForbiddenError("You can only view your own ratings"))
	}

	ratings, err := s.ratingService.ListUserRatings(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ratings": ratings})
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user.Public())
}
