package repository

import (
	"context"
	"errors"

	"eventrate/internal/cache"
	"eventrate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository defines persistence operations for ratings. Every write
// recomputes the owning event's denormalized aggregate inside the same
// transaction.
type RatingRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Rating, error)
	GetByEventAndUser(ctx context.Context, eventID, userID uint) (*models.Rating, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Rating, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Rating, error)
	Upsert(ctx context.Context, rating *models.Rating) (created bool, err error)
	SoftDelete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository returns a new RatingRepository implementation.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetByID(ctx context.Context, id uint) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Rating", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &rating, nil
}

func (r *ratingRepository) GetByEventAndUser(ctx context.Context, eventID, userID uint) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &rating, nil
}

func (r *ratingRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ? AND status = ?", eventID, models.RatingStatusActive).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ratings, nil
}

func (r *ratingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ? AND status = ?", userID, models.RatingStatusActive).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ratings, nil
}

// Upsert writes the caller's rating for an event. A second submission by the
// same user replaces the mutable fields of the first. Returns whether a new
// row was created.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Rating{}).
			Where("event_id = ? AND user_id = ?", rating.EventID, rating.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		created = count == 0

		// Insert-or-update in one statement keyed on the (event_id, user_id)
		// unique index. Two concurrent first submissions cannot race between
		// a lookup and the write: the loser's insert becomes an update.
		rating.Status = models.RatingStatusActive
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"overall_rating", "arrival_time", "departure_time",
				"still_present", "quick_tags", "detailed_criteria",
				"crowd_level", "weather_conditions", "comment",
				"rating_metadata", "status", "updated_at",
			}),
		}).Create(rating).Error; err != nil {
			return err
		}

		// Re-read so ID and created_at reflect the stored row on the update
		// path regardless of dialect.
		if err := tx.Where("event_id = ? AND user_id = ?", rating.EventID, rating.UserID).
			First(rating).Error; err != nil {
			return err
		}

		return recomputeEventAggregate(tx, rating.EventID)
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, appErr
		}
		return false, models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, rating.EventID)
	return created, nil
}

func (r *ratingRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.delete(ctx, id, false)
}

func (r *ratingRepository) HardDelete(ctx context.Context, id uint) error {
	return r.delete(ctx, id, true)
}

func (r *ratingRepository) delete(ctx context.Context, id uint, hard bool) error {
	var eventID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rating models.Rating
		if err := tx.First(&rating, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Rating", id)
			}
			return err
		}
		eventID = rating.EventID

		if hard {
			if err := tx.Delete(&models.Rating{}, id).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&rating).Update("status", models.RatingStatusRemoved).Error; err != nil {
				return err
			}
		}

		return recomputeEventAggregate(tx, eventID)
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

// recomputeEventAggregate rewrites the event's rating_average/rating_count
// from its active ratings. Runs inside the caller's transaction.
func recomputeEventAggregate(tx *gorm.DB, eventID uint) error {
	type aggregate struct {
		Average float64
		Count   int64
	}
	var agg aggregate
	if err := tx.Model(&models.Rating{}).
		Select("COALESCE(AVG(overall_rating), 0) AS average, COUNT(*) AS count").
		Where("event_id = ? AND status = ?", eventID, models.RatingStatusActive).
		Scan(&agg).Error; err != nil {
		return err
	}

	return tx.Model(&models.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"rating_average": agg.Average,
			"rating_count":   agg.Count,
		}).Error
}
