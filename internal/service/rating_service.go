package service

import (
	"context"
	"encoding/json"

	"eventrate/internal/models"
	"eventrate/internal/observability"
	"eventrate/internal/repository"
	"eventrate/internal/validation"

	"gorm.io/datatypes"
)

type RatingService struct {
	ratingRepo repository.RatingRepository
	eventRepo  repository.EventRepository
}

type SubmitRatingInput struct {
	EventID           uint
	UserID            uint
	OverallRating     float64
	ArrivalTime       *string
	DepartureTime     *string
	StillPresent      bool
	QuickTags         []string
	DetailedCriteria  map[string]interface{}
	CrowdLevel        *int
	WeatherConditions string
	Comment           string
	Metadata          map[string]interface{}
}

// SubmitRatingResult reports whether the submission created a new rating or
// replaced the caller's previous one.
type SubmitRatingResult struct {
	Rating  models.RatingResponse `json:"rating"`
	Created bool                  `json:"created"`
}

func NewRatingService(ratingRepo repository.RatingRepository, eventRepo repository.EventRepository) *RatingService {
	return &RatingService{ratingRepo: ratingRepo, eventRepo: eventRepo}
}

// SubmitRating validates and stores a rating. One rating per user per event:
// a second submission replaces the first and the event aggregate follows.
func (s *RatingService) SubmitRating(ctx context.Context, in SubmitRatingInput) (*SubmitRatingResult, error) {
	overall, err := validation.ValidateOverallRating(in.OverallRating)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateCrowdLevel(in.CrowdLevel); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateTimeOfDay(in.ArrivalTime); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateTimeOfDay(in.DepartureTime); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	departure := in.DepartureTime
	if in.StillPresent {
		departure = nil
	}

	registered, err := s.eventRepo.IsRegistered(ctx, event.ID, in.UserID)
	if err != nil {
		return nil, err
	}

	metadata := datatypes.JSONMap{}
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	metadata["isRegistered"] = registered
	metadata["submissionSource"] = "web"
	metadata["version"] = "2.0"

	rating := &models.Rating{
		EventID:           event.ID,
		UserID:            in.UserID,
		OverallRating:     overall,
		ArrivalTime:       in.ArrivalTime,
		DepartureTime:     departure,
		StillPresent:      in.StillPresent,
		CrowdLevel:        in.CrowdLevel,
		WeatherConditions: in.WeatherConditions,
		Comment:           in.Comment,
		Metadata:          metadata,
		Status:            models.RatingStatusActive,
	}
	if in.QuickTags != nil {
		encoded, err := json.Marshal(in.QuickTags)
		if err != nil {
			return nil, models.NewValidationError("Invalid quick tags")
		}
		rating.QuickTags = encoded
	}
	if in.DetailedCriteria != nil {
		rating.DetailedCriteria = datatypes.JSONMap(in.DetailedCriteria)
	}

	created, err := s.ratingRepo.Upsert(ctx, rating)
	if err != nil {
		return nil, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	observability.RatingSubmissions.WithLabelValues(outcome).Inc()

	return &SubmitRatingResult{Rating: rating.Response(), Created: created}, nil
}

// GetRating returns a single rating. Reads need no ownership.
func (s *RatingService) GetRating(ctx context.Context, ratingID uint) (*models.RatingResponse, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	resp := rating.Response()
	return &resp, nil
}

// UpdateRating replaces the fields of an existing rating by ID. Only the
// author may update; the write lands on the same (event, user) row.
func (s *RatingService) UpdateRating(ctx context.Context, ratingID uint, in SubmitRatingInput) (*SubmitRatingResult, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if rating.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own ratings")
	}
	in.EventID = rating.EventID
	return s.SubmitRating(ctx, in)
}

// DeleteRating removes the caller's rating. Soft by default, hard on request.
func (s *RatingService) DeleteRating(ctx context.Context, ratingID, userID uint, hard bool) error {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return err
	}
	if rating.UserID != userID {
		return models.NewForbiddenError("You can only delete your own ratings")
	}
	if hard {
		return s.ratingRepo.HardDelete(ctx, ratingID)
	}
	return s.ratingRepo.SoftDelete(ctx, ratingID)
}

func (s *RatingService) ListEventRatings(ctx context.Context, eventID uint) ([]models.RatingResponse, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.RatingResponse, 0, len(ratings))
	for i := range ratings {
		responses = append(responses, ratings[i].Response())
	}
	return responses, nil
}

func (s *RatingService) ListUserRatings(ctx context.Context, userID uint) ([]models.RatingResponse, error) {
	ratings, err := s.ratingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.RatingResponse, 0, len(ratings))
	for i := range ratings {
		responses = append(responses, ratings[i].Response())
	}
	return responses, nil
}
