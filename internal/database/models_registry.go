package database

import "eventrate/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Event{},
		&models.Rating{},
		&models.EventRegistration{},
		&models.PasswordResetToken{},
	}
}
