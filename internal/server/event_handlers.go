package server

import (
	"time"

	"eventrate/internal/models"
	"eventrate/internal/repository"
	"eventrate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetEvents handles GET /api/events
// @Summary Browse events
// @Description List active events with optional category and city filters
// @Tags events
// @Produce json
// @Param category query string false "Exact category filter"
// @Param city query string false "City substring filter"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} object{events=[]models.EventResponse,pagination=models.Pagination}
// @Router /events [get]
func (s *Server) GetEvents(c *fiber.Ctx) error {
	filters := repository.EventFilters{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 20),
	}

	events, pagination, err := s.eventService.ListEvents(c.Context(), filters)
	if err != nil {
		return fail(c, err)
	}

	responses := make([]models.EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].Response())
	}

	return c.JSON(fiber.Map{
		"events":     responses,
		"pagination": pagination,
	})
}

// GetEvent handles GET /api/events/:id
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventService.GetEvent(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(event.Response())
}

type eventRequestBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    struct {
		Address string `json:"address"`
		City    string `json:"city"`
	} `json:"location"`
	Date struct {
		Start *time.Time `json:"start"`
		End   *time.Time `json:"end"`
	} `json:"date"`
	Capacity int `json:"capacity"`
	Price    struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		IsFree   bool    `json:"isFree"`
	} `json:"price"`
	Tags []string `json:"tags"`
}

// CreateEvent handles POST /api/events
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body eventRequestBody true "Event"
// @Success 201 {object} models.EventResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req eventRequestBody
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if req.Date.Start == nil {
		return fail(c, models.NewValidationError("Start date is required"))
	}

	event, err := s.eventService.CreateEvent(c.Context(), service.CreateEventInput{
		CreatorID:       s.currentUserID(c),
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		LocationAddress: req.Location.Address,
		LocationCity:    req.Location.City,
		DateStart:       *req.Date.Start,
		DateEnd:         req.Date.End,
		Capacity:        req.Capacity,
		PriceAmount:     req.Price.Amount,
		PriceCurrency:   req.Price.Currency,
		PriceIsFree:     req.Price.IsFree,
		Tags:            req.Tags,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event.Response())
}

// UpdateEvent handles PUT /api/events/:id
// @Summary Update an event
// @Description Partial update, owner only
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [put]
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Location    *struct {
			Address *string `json:"address"`
			City    *string `json:"city"`
		} `json:"location"`
		Date *struct {
			Start *time.Time `json:"start"`
			End   *time.Time `json:"end"`
		} `json:"date"`
		Capacity *int `json:"capacity"`
		Price    *struct {
			Amount *float64 `json:"amount"`
			IsFree *bool    `json:"isFree"`
		} `json:"price"`
		Status *string  `json:"status"`
		Tags   []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	input := service.UpdateEventInput{
		UserID:      s.currentUserID(c),
		EventID:     id,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Status:      req.Status,
		Tags:        req.Tags,
	}
	if req.Location != nil {
		input.LocationAddress = req.Location.Address
		input.LocationCity = req.Location.City
	}
	if req.Date != nil {
		input.DateStart = req.Date.Start
		input.DateEnd = req.Date.End
	}
	if req.Price != nil {
		input.PriceAmount = req.Price.Amount
		input.PriceIsFree = req.Price.IsFree
	}

	event, err := s.eventService.UpdateEvent(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(event.Response())
}

// DeleteEvent handles DELETE /api/events/:id
// @Summary Delete an event
// @Description Hard delete of the event with its ratings and registrations, owner only
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [delete]
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.DeleteEvent(c.Context(), id, s.currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Event deleted"})
}

// CheckDuplicates handles GET /api/events/check-duplicates
// @Summary Check for duplicate events
// @Description Score stored active events against a prospective one
// @Tags events
// @Produce json
// @Param title query string true "Prospective title"
// @Param location_city query string false "Prospective city"
// @Param date_start query string false "Prospective start date (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {object} service.DuplicateReport
// @Failure 400 {object} models.ErrorResponse
// @Router /events/check-duplicates [get]
func (s *Server) CheckDuplicates(c *fiber.Ctx) error {
	input := service.CheckDuplicatesInput{
		Title: c.Query("title"),
		City:  c.Query("location_city"),
	}
	if raw := c.Query("date_start"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return fail(c, models.NewValidationError("Invalid date_start"))
		}
		input.DateStart = &parsed
	}

	report, err := s.eventService.CheckDuplicates(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// RegisterForEvent handles POST /api/events/:id/register
// @Summary Register for an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /events/{id}/register [post]
func (s *Server) RegisterForEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.RegisterForEvent(c.Context(), id, s.currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Registered"})
}

// UpdateEventPhotos handles POST /api/events/:id/photos
// @Summary Replace the event photo list
// @Description Owner only; entries that are not valid http(s) URLs are dropped
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body object{photos=[]string} true "Photo URLs"
// @Success 200 {object} object{photos=[]string}
// @Failure 403 {object} models.ErrorResponse
// @Router /events/{id}/photos [post]
func (s *Server) UpdateEventPhotos(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Photos []string `json:"photos"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	kept, err := s.eventService.UpdatePhotos(c.Context(), id, s.currentUserID(c), req.Photos)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"photos": kept})
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
