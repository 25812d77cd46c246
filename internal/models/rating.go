package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rating statuses.
const (
	RatingStatusActive  = "active"
	RatingStatusRemoved = "removed"
)

// Rating is one user's multi-dimensional review of an event. A user holds at
// most one rating per event; submitting again updates the existing row.
type Rating struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	EventID           uint              `gorm:"not null;uniqueIndex:idx_ratings_event_user" json:"event_id"`
	Event             *Event            `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID            uint              `gorm:"not null;uniqueIndex:idx_ratings_event_user" json:"user_id"`
	User              *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OverallRating     float64           `gorm:"not null" json:"overall_rating"`
	ArrivalTime       *string           `json:"arrival_time,omitempty"`
	DepartureTime     *string           `json:"departure_time,omitempty"`
	StillPresent      bool              `gorm:"default:false" json:"still_present"`
	QuickTags         datatypes.JSON    `json:"quick_tags,omitempty"`
	DetailedCriteria  datatypes.JSONMap `json:"detailed_criteria,omitempty"`
	CrowdLevel        *int              `json:"crowd_level,omitempty"`
	WeatherConditions string            `json:"weather_conditions,omitempty"`
	Comment           string            `json:"comment,omitempty"`
	Metadata          datatypes.JSONMap `gorm:"column:rating_metadata" json:"metadata,omitempty"`
	Status            string            `gorm:"default:active;index" json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// RatingResponse joins a rating with the rater's public identity.
type RatingResponse struct {
	ID                uint              `json:"id"`
	EventID           uint              `json:"event_id"`
	OverallRating     float64           `json:"overall_rating"`
	ArrivalTime       *string           `json:"arrival_time,omitempty"`
	DepartureTime     *string           `json:"departure_time,omitempty"`
	StillPresent      bool              `json:"still_present"`
	QuickTags         datatypes.JSON    `json:"quick_tags,omitempty"`
	DetailedCriteria  datatypes.JSONMap `json:"detailed_criteria,omitempty"`
	CrowdLevel        *int              `json:"crowd_level,omitempty"`
	WeatherConditions string            `json:"weather_conditions,omitempty"`
	Comment           string            `json:"comment,omitempty"`
	User              *PublicProfile    `json:"user,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Response converts a rating to its public wire shape.
func (r *Rating) Response() RatingResponse {
	resp := RatingResponse{
		ID:                r.ID,
		EventID:           r.EventID,
		OverallRating:     r.OverallRating,
		ArrivalTime:       r.ArrivalTime,
		DepartureTime:     r.DepartureTime,
		StillPresent:      r.StillPresent,
		QuickTags:         r.QuickTags,
		DetailedCriteria:  r.DetailedCriteria,
		CrowdLevel:        r.CrowdLevel,
		WeatherConditions: r.WeatherConditions,
		Comment:           r.Comment,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.User != nil {
		profile := r.User.Public()
		resp.User = &profile
	}
	return resp
}
