package service

import (
	"context"
	"net/url"

	"eventrate/internal/models"
	"eventrate/internal/repository"
	"eventrate/internal/validation"
)

type UserService struct {
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
}

type UpdateProfileInput struct {
	UserID    uint
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	AvatarURL *string
	Bio       *string
}

func NewUserService(userRepo repository.UserRepository, eventRepo repository.EventRepository) *UserService {
	return &UserService{userRepo: userRepo, eventRepo: eventRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != user.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = *in.Username
	}
	if in.Email != nil && *in.Email != user.Email {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.AvatarURL != nil {
		if *in.AvatarURL != "" {
			u, err := url.Parse(*in.AvatarURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, models.NewValidationError("Avatar URL must be a valid http(s) URL")
			}
		}
		user.AvatarURL = *in.AvatarURL
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}

	conflict, err := s.userRepo.HasConflict(ctx, user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, models.NewConflictError("Username or email already taken")
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) MyEvents(ctx context.Context, userID uint) ([]models.EventResponse, error) {
	events, err := s.eventRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].Response())
	}
	return responses, nil
}
