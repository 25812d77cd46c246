package server

import (
	"eventrate/internal/models"
	"eventrate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitRating handles POST /api/events/:id/ratings
// @Summary Submit or replace a rating
// @Description One rating per user per event; a second submission replaces the first
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} service.SubmitRatingResult
// @Success 201 {object} service.SubmitRatingResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/ratings [post]
func (s *Server) SubmitRating(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		OverallRating     float64                `json:"overallRating"`
		ArrivalTime       *string                `json:"arrivalTime"`
		DepartureTime     *string                `json:"departureTime"`
		StillPresent      bool                   `json:"stillPresent"`
		QuickTags         []string               `json:"quickTags"`
		DetailedCriteria  map[string]interface{} `json:"detailedCriteria"`
		CrowdLevel        *int                   `json:"crowdLevel"`
		WeatherConditions string                 `json:"weatherConditions"`
		Comment           string                 `json:"comment"`
		Metadata          map[string]interface{} `json:"metadata"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	result, err := s.ratingService.SubmitRating(c.Context(), service.SubmitRatingInput{
		EventID:           eventID,
		UserID:            s.currentUserID(c),
		OverallRating:     req.OverallRating,
		ArrivalTime:       req.ArrivalTime,
		DepartureTime:     req.DepartureTime,
		StillPresent:      req.StillPresent,
		QuickTags:         req.QuickTags,
		DetailedCriteria:  req.DetailedCriteria,
		CrowdLevel:        req.CrowdLevel,
		WeatherConditions: req.WeatherConditions,
		Comment:           req.Comment,
		Metadata:          req.Metadata,
	})
	if err != nil {
		return fail(c, err)
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// GetRating handles GET /api/ratings/:id
// @Summary Get a single rating
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rating ID"
// @Success 200 {object} models.RatingResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ratings/{id} [get]
func (s *Server) GetRating(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	rating, err := s.ratingService.GetRating(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rating)
}

// UpdateRating handles PUT /api/ratings/:id
// @Summary Update a rating by ID
// @Description Author only; lands on the same row as a re-submission
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rating ID"
// @Success 200 {object} service.SubmitRatingResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ratings/{id} [put]
func (s *Server) UpdateRating(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		OverallRating     float64                `json:"overallRating"`
		ArrivalTime       *string                `json:"arrivalTime"`
		DepartureTime     *string                `json:"departureTime"`
		StillPresent      bool                   `json:"stillPresent"`
		QuickTags         []string               `json:"quickTags"`
		DetailedCriteria  map[string]interface{} `json:"detailedCriteria"`
		CrowdLevel        *int                   `json:"crowdLevel"`
		WeatherConditions string                 `json:"weatherConditions"`
		Comment           string                 `json:"comment"`
		Metadata          map[string]interface{} `json:"metadata"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	result, err := s.ratingService.UpdateRating(c.Context(), id, service.SubmitRatingInput{
		UserID:            s.currentUserID(c),
		OverallRating:     req.OverallRating,
		ArrivalTime:       req.ArrivalTime,
		DepartureTime:     req.DepartureTime,
		StillPresent:      req.StillPresent,
		QuickTags:         req.QuickTags,
		DetailedCriteria:  req.DetailedCriteria,
		CrowdLevel:        req.CrowdLevel,
		WeatherConditions: req.WeatherConditions,
		Comment:           req.Comment,
		Metadata:          req.Metadata,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// DeleteRating handles DELETE /api/ratings/:id
// @Summary Delete a rating
// @Description Soft delete by default; ?hard=true removes the row. Owner only.
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rating ID"
// @Param hard query bool false "Hard delete"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ratings/{id} [delete]
func (s *Server) DeleteRating(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	hard := c.QueryBool("hard", false)
	if err := s.ratingService.DeleteRating(c.Context(), id, s.currentUserID(c), hard); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Rating deleted"})
}

// GetEventRatings handles GET /api/events/:id/ratings
// @Summary List an event's ratings
// @Description Active ratings with the rater's public identity, newest first
// @Tags ratings
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} object{ratings=[]models.RatingResponse}
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/ratings [get]
func (s *Server) GetEventRatings(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ratings, err := s.ratingService.ListEventRatings(c.Context(), eventID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ratings": ratings})
}
