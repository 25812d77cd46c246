package repository

import (
	"context"
	"errors"

	"eventrate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResetTokenRepository defines persistence operations for password reset tokens.
type ResetTokenRepository interface {
	Replace(ctx context.Context, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	Delete(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository returns a new ResetTokenRepository implementation.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Replace stores the token, superseding any active token for the same user.
func (r *resetTokenRepository) Replace(ctx context.Context, token *models.PasswordResetToken) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "created_at"}),
	}).Create(token).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *resetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var record models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &record, nil
}

func (r *resetTokenRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.PasswordResetToken{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteExpired removes stale tokens, returning how many were dropped.
func (r *resetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < CURRENT_TIMESTAMP").
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
