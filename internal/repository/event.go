package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventrate/internal/cache"
	"eventrate/internal/models"
	"eventrate/internal/observability"

	"gorm.io/gorm"
)

// EventFilters narrows the event list query.
type EventFilters struct {
	Category string
	City     string
	Page     int
	Limit    int
}

// Signature encodes the filter set into a cache key fragment.
func (f EventFilters) Signature() string {
	return fmt.Sprintf("%s:%s:%d:%d", f.Category, f.City, f.Page, f.Limit)
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	List(ctx context.Context, filters EventFilters) ([]models.Event, int64, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error)
	ListActiveForDuplicateCheck(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	UpdatePhotos(ctx context.Context, eventID uint, photos []byte) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	Register(ctx context.Context, eventID, userID uint) error
	IsRegistered(ctx context.Context, eventID, userID uint) (bool, error)
}

type eventRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	key := cache.EventKey(id)

	err := cache.Aside(ctx, key, &event, cache.EventTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Creator").First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Event", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filters EventFilters) ([]models.Event, int64, error) {
	defer r.metrics.TrackQuery("list", "events")()

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	query := r.db.WithContext(ctx).Model(&models.Event{}).Where("status = ?", models.EventStatusActive)
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.City != "" {
		// LOWER/LIKE instead of ILIKE so the filter behaves the same on
		// postgres and sqlite.
		query = query.Where("LOWER(location_city) LIKE ?", "%"+strings.ToLower(filters.City)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var events []models.Event
	offset := (filters.Page - 1) * filters.Limit
	if err := query.Preload("Creator").
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return events, total, nil
}

func (r *eventRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

// ListActiveForDuplicateCheck returns the active events the duplicate detector
// scores against, ordered by start date.
func (r *eventRepository) ListActiveForDuplicateCheck(ctx context.Context) ([]models.Event, error) {
	defer r.metrics.TrackQuery("duplicate_scan", "events")()

	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.EventStatusActive).
		Order("date_start ASC").
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEventLists(ctx)
	return nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, event.ID)
	return nil
}

func (r *eventRepository) UpdatePhotos(ctx context.Context, eventID uint, photos []byte) error {
	result := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("photos", photos)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Event", eventID)
	}
	cache.InvalidateEvent(ctx, eventID)
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	// Ratings and registrations are removed with the event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, id)
	return nil
}

func (r *eventRepository) IncrementViews(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Register records an RSVP and bumps the attendee count in one transaction.
// The event row is re-read inside the transaction so the capacity check and
// the increment see the same state.
func (r *eventRepository) Register(ctx context.Context, eventID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Event", eventID)
			}
			return models.NewInternalError(err)
		}
		if event.Status != models.EventStatusActive {
			return models.NewNotFoundError("Event", eventID)
		}
		if event.Capacity > 0 && event.CurrentAttendees >= event.Capacity {
			return models.NewConflictError("Event is full")
		}

		registration := models.EventRegistration{
			EventID: eventID,
			UserID:  userID,
			Status:  "confirmed",
		}
		if err := tx.Create(&registration).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Already registered for this event")
			}
			return models.NewInternalError(err)
		}

		return tx.Model(&models.Event{}).
			Where("id = ?", eventID).
			UpdateColumn("current_attendees", gorm.Expr("current_attendees + 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, eventID)
	return nil
}

func (r *eventRepository) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
