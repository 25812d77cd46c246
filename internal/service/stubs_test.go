package service

import (
	"context"

	"eventrate/internal/models"
	"eventrate/internal/repository"
)

// eventRepoStub is a stub for repository.EventRepository.
type eventRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.Event, error)
	listFn            func(context.Context, repository.EventFilters) ([]models.Event, int64, error)
	listByCreatorFn   func(context.Context, uint) ([]models.Event, error)
	listForDupCheckFn func(context.Context) ([]models.Event, error)
	createFn          func(context.Context, *models.Event) error
	updateFn          func(context.Context, *models.Event) error
	updatePhotosFn    func(context.Context, uint, []byte) error
	deleteFn          func(context.Context, uint) error
	incrementViewsFn  func(context.Context, uint) error
	registerFn        func(context.Context, uint, uint) error
	isRegisteredFn    func(context.Context, uint, uint) (bool, error)
}

func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	return s.getByIDFn(ctx, id)
}
func (s *eventRepoStub) List(ctx context.Context, filters repository.EventFilters) ([]models.Event, int64, error) {
	return s.listFn(ctx, filters)
}
func (s *eventRepoStub) ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error) {
	return s.listByCreatorFn(ctx, creatorID)
}
func (s *eventRepoStub) ListActiveForDuplicateCheck(ctx context.Context) ([]models.Event, error) {
	return s.listForDupCheckFn(ctx)
}
func (s *eventRepoStub) Create(ctx context.Context, event *models.Event) error {
	return s.createFn(ctx, event)
}
func (s *eventRepoStub) Update(ctx context.Context, event *models.Event) error {
	return s.updateFn(ctx, event)
}
func (s *eventRepoStub) UpdatePhotos(ctx context.Context, eventID uint, photos []byte) error {
	return s.updatePhotosFn(ctx, eventID, photos)
}
func (s *eventRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *eventRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *eventRepoStub) Register(ctx context.Context, eventID, userID uint) error {
	return s.registerFn(ctx, eventID, userID)
}
func (s *eventRepoStub) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	return s.isRegisteredFn(ctx, eventID, userID)
}

func noopEventRepo() *eventRepoStub {
	return &eventRepoStub{
		getByIDFn:         func(_ context.Context, _ uint) (*models.Event, error) { return &models.Event{}, nil },
		listFn:            func(_ context.Context, _ repository.EventFilters) ([]models.Event, int64, error) { return nil, 0, nil },
		listByCreatorFn:   func(_ context.Context, _ uint) ([]models.Event, error) { return nil, nil },
		listForDupCheckFn: func(_ context.Context) ([]models.Event, error) { return nil, nil },
		createFn:          func(_ context.Context, _ *models.Event) error { return nil },
		updateFn:          func(_ context.Context, _ *models.Event) error { return nil },
		updatePhotosFn:    func(_ context.Context, _ uint, _ []byte) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		incrementViewsFn:  func(_ context.Context, _ uint) error { return nil },
		registerFn:        func(_ context.Context, _, _ uint) error { return nil },
		isRegisteredFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// ratingRepoStub is a stub for repository.RatingRepository.
type ratingRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.Rating, error)
	getByEventAndUserFn func(context.Context, uint, uint) (*models.Rating, error)
	listByEventFn       func(context.Context, uint) ([]models.Rating, error)
	listByUserFn        func(context.Context, uint) ([]models.Rating, error)
	upsertFn            func(context.Context, *models.Rating) (bool, error)
	softDeleteFn        func(context.Context, uint) error
	hardDeleteFn        func(context.Context, uint) error
}

func (s *ratingRepoStub) GetByID(ctx context.Context, id uint) (*models.Rating, error) {
	return s.getByIDFn(ctx, id)
}
func (s *ratingRepoStub) GetByEventAndUser(ctx context.Context, eventID, userID uint) (*models.Rating, error) {
	return s.getByEventAndUserFn(ctx, eventID, userID)
}
func (s *ratingRepoStub) ListByEvent(ctx context.Context, eventID uint) ([]models.Rating, error) {
	return s.listByEventFn(ctx, eventID)
}
func (s *ratingRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Rating, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *ratingRepoStub) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	return s.upsertFn(ctx, rating)
}
func (s *ratingRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *ratingRepoStub) HardDelete(ctx context.Context, id uint) error {
	return s.hardDeleteFn(ctx, id)
}

func noopRatingRepo() *ratingRepoStub {
	return &ratingRepoStub{
		getByIDFn:           func(_ context.Context, _ uint) (*models.Rating, error) { return &models.Rating{}, nil },
		getByEventAndUserFn: func(_ context.Context, _, _ uint) (*models.Rating, error) { return nil, nil },
		listByEventFn:       func(_ context.Context, _ uint) ([]models.Rating, error) { return nil, nil },
		listByUserFn:        func(_ context.Context, _ uint) ([]models.Rating, error) { return nil, nil },
		upsertFn:            func(_ context.Context, _ *models.Rating) (bool, error) { return true, nil },
		softDeleteFn:        func(_ context.Context, _ uint) error { return nil },
		hardDeleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updateFn             func(context.Context, *models.User) error
	updatePasswordFn     func(context.Context, uint, string) error
	updateRecoveryCodeFn func(context.Context, uint, string) error
	hasConflictFn        func(context.Context, uint, string, string) (bool, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return s.updatePasswordFn(ctx, userID, passwordHash)
}
func (s *userRepoStub) UpdateRecoveryCode(ctx context.Context, userID uint, code string) error {
	return s.updateRecoveryCodeFn(ctx, userID, code)
}
func (s *userRepoStub) HasConflict(ctx context.Context, excludeID uint, username, email string) (bool, error) {
	return s.hasConflictFn(ctx, excludeID, username, email)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:            func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:         func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:      func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:             func(_ context.Context, _ *models.User) error { return nil },
		updateFn:             func(_ context.Context, _ *models.User) error { return nil },
		updatePasswordFn:     func(_ context.Context, _ uint, _ string) error { return nil },
		updateRecoveryCodeFn: func(_ context.Context, _ uint, _ string) error { return nil },
		hasConflictFn:        func(_ context.Context, _ uint, _, _ string) (bool, error) { return false, nil },
	}
}
