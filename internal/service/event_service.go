package service

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"time"

	"eventrate/internal/models"
	"eventrate/internal/observability"
	"eventrate/internal/repository"
)

// maxDuplicateMatches caps how many candidates the duplicate check returns.
const maxDuplicateMatches = 5

type EventService struct {
	eventRepo repository.EventRepository
}

type CreateEventInput struct {
	CreatorID       uint
	Title           string
	Description     string
	Category        string
	LocationAddress string
	LocationCity    string
	DateStart       time.Time
	DateEnd         *time.Time
	Capacity        int
	PriceAmount     float64
	PriceCurrency   string
	PriceIsFree     bool
	Tags            []string
}

type UpdateEventInput struct {
	UserID          uint
	EventID         uint
	Title           *string
	Description     *string
	Category        *string
	LocationAddress *string
	LocationCity    *string
	DateStart       *time.Time
	DateEnd         *time.Time
	Capacity        *int
	PriceAmount     *float64
	PriceIsFree     *bool
	Status          *string
	Tags            []string
}

// CheckDuplicatesInput is the prospective event screened before creation.
type CheckDuplicatesInput struct {
	Title     string
	City      string
	DateStart *time.Time
}

// DuplicateReport is the duplicate check result: the strongest candidates and
// how many matched in total.
type DuplicateReport struct {
	Duplicates []models.DuplicateMatch `json:"duplicates"`
	Total      int                     `json:"total"`
}

func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// View counting is best effort
	_ = s.eventRepo.IncrementViews(ctx, id)
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, filters repository.EventFilters) ([]models.Event, *models.Pagination, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	events, total, err := s.eventRepo.List(ctx, filters)
	if err != nil {
		return nil, nil, err
	}

	pages := int((total + int64(filters.Limit) - 1) / int64(filters.Limit))
	pagination := &models.Pagination{
		Page:  filters.Page,
		Limit: filters.Limit,
		Total: total,
		Pages: pages,
	}
	return events, pagination, nil
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if in.DateStart.IsZero() {
		return nil, models.NewValidationError("Start date is required")
	}
	if in.DateEnd != nil && in.DateEnd.Before(in.DateStart) {
		return nil, models.NewValidationError("End date cannot be before start date")
	}
	if in.Capacity < 0 {
		return nil, models.NewValidationError("Capacity cannot be negative")
	}

	currency := in.PriceCurrency
	if currency == "" {
		currency = "EUR"
	}

	event := &models.Event{
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		CreatorID:       in.CreatorID,
		LocationAddress: in.LocationAddress,
		LocationCity:    in.LocationCity,
		DateStart:       in.DateStart,
		DateEnd:         in.DateEnd,
		Capacity:        in.Capacity,
		PriceAmount:     in.PriceAmount,
		PriceCurrency:   currency,
		PriceIsFree:     in.PriceIsFree,
		Status:          models.EventStatusActive,
	}
	if in.Tags != nil {
		encoded, err := json.Marshal(in.Tags)
		if err != nil {
			return nil, models.NewValidationError("Invalid tags")
		}
		event.Tags = encoded
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own events")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.Category != nil {
		event.Category = *in.Category
	}
	if in.LocationAddress != nil {
		event.LocationAddress = *in.LocationAddress
	}
	if in.LocationCity != nil {
		event.LocationCity = *in.LocationCity
	}
	if in.DateStart != nil {
		event.DateStart = *in.DateStart
	}
	if in.DateEnd != nil {
		event.DateEnd = in.DateEnd
	}
	if in.Capacity != nil {
		if *in.Capacity < 0 {
			return nil, models.NewValidationError("Capacity cannot be negative")
		}
		event.Capacity = *in.Capacity
	}
	if in.PriceAmount != nil {
		event.PriceAmount = *in.PriceAmount
	}
	if in.PriceIsFree != nil {
		event.PriceIsFree = *in.PriceIsFree
	}
	if in.Status != nil {
		switch *in.Status {
		case models.EventStatusActive, models.EventStatusCancelled:
			event.Status = *in.Status
		default:
			return nil, models.NewValidationError("Invalid status")
		}
	}
	if in.Tags != nil {
		encoded, err := json.Marshal(in.Tags)
		if err != nil {
			return nil, models.NewValidationError("Invalid tags")
		}
		event.Tags = encoded
	}
	if event.DateEnd != nil && event.DateEnd.Before(event.DateStart) {
		return nil, models.NewValidationError("End date cannot be before start date")
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID, userID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != userID {
		return models.NewForbiddenError("You can only delete your own events")
	}
	return s.eventRepo.Delete(ctx, eventID)
}

// UpdatePhotos replaces the event's photo URL list. Entries that do not parse
// as absolute http(s) URLs are silently dropped.
func (s *EventService) UpdatePhotos(ctx context.Context, eventID, userID uint, photoURLs []string) ([]string, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, models.NewForbiddenError("You can only update your own events")
	}

	valid := make([]string, 0, len(photoURLs))
	for _, raw := range photoURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		valid = append(valid, raw)
	}

	encoded, err := json.Marshal(valid)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.eventRepo.UpdatePhotos(ctx, eventID, encoded); err != nil {
		return nil, err
	}
	return valid, nil
}

func (s *EventService) RegisterForEvent(ctx context.Context, eventID, userID uint) error {
	err := s.eventRepo.Register(ctx, eventID, userID)
	if err != nil {
		observability.EventRegistrations.WithLabelValues("rejected").Inc()
		return err
	}
	observability.EventRegistrations.WithLabelValues("confirmed").Inc()
	return nil
}

// CheckDuplicates scores every active event against the prospective one and
// returns the strongest candidates (confidence >= 50, top 5).
func (s *EventService) CheckDuplicates(ctx context.Context, in CheckDuplicatesInput) (*DuplicateReport, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}

	candidates, err := s.eventRepo.ListActiveForDuplicateCheck(ctx)
	if err != nil {
		return nil, err
	}

	query := duplicateQuery{Title: in.Title, City: in.City, DateStart: in.DateStart}
	matches := make([]models.DuplicateMatch, 0)
	for i := range candidates {
		candidate := &candidates[i]
		confidence, reason, titleSim, citySim, dateDiff := scoreDuplicate(query, candidate)
		if confidence < 50 {
			continue
		}
		matches = append(matches, models.DuplicateMatch{
			Event:           candidate.Response(),
			Confidence:      confidence,
			Reason:          reason,
			TitleSimilarity: titleSim,
			CitySimilarity:  citySim,
			DateDiffDays:    dateDiff,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	total := len(matches)
	if total > 0 {
		observability.DuplicateChecks.WithLabelValues("match").Inc()
	} else {
		observability.DuplicateChecks.WithLabelValues("clean").Inc()
	}

	if len(matches) > maxDuplicateMatches {
		matches = matches[:maxDuplicateMatches]
	}
	return &DuplicateReport{Duplicates: matches, Total: total}, nil
}
