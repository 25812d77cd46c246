package service

import (
	"context"
	"errors"
	"testing"

	"eventrate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile_ConflictingIdentity(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
	}
	userRepo.hasConflictFn = func(_ context.Context, _ uint, _, _ string) (bool, error) {
		return true, nil
	}
	svc := NewUserService(userRepo, noopEventRepo())

	username := "bob"
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: &username})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestUpdateProfile_InvalidAvatarURL(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
	}
	svc := NewUserService(userRepo, noopEventRepo())

	avatar := "javascript:alert(1)"
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, AvatarURL: &avatar})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Email: "alice@example.com", Bio: "old bio"}, nil
	}
	var updated *models.User
	userRepo.updateFn = func(_ context.Context, user *models.User) error {
		updated = user
		return nil
	}
	svc := NewUserService(userRepo, noopEventRepo())

	bio := "event enthusiast"
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "event enthusiast", user.Bio)
}

func TestUpdateProfile_InvalidUsername(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
	}
	svc := NewUserService(userRepo, noopEventRepo())

	username := "a"
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: &username})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestMyEvents(t *testing.T) {
	eventRepo := noopEventRepo()
	eventRepo.listByCreatorFn = func(_ context.Context, creatorID uint) ([]models.Event, error) {
		return []models.Event{{ID: 1, CreatorID: creatorID, Title: "Concert"}}, nil
	}
	svc := NewUserService(noopUserRepo(), eventRepo)

	events, err := svc.MyEvents(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Concert", events[0].Title)
}
