package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event statuses.
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusRemoved   = "removed"
)

// Event is a listed happening that users can register for and rate.
// RatingAverage and RatingCount are derived from active ratings and never
// written directly by handlers.
type Event struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"not null;index" json:"title"`
	Description      string         `json:"description"`
	Category         string         `gorm:"index" json:"category"`
	CreatorID        uint           `gorm:"not null;index" json:"creator_id"`
	Creator          *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	LocationAddress  string         `json:"location_address"`
	LocationCity     string         `gorm:"index" json:"location_city"`
	DateStart        time.Time      `gorm:"not null;index" json:"date_start"`
	DateEnd          *time.Time     `json:"date_end,omitempty"`
	Capacity         int            `gorm:"default:0" json:"capacity"`
	CurrentAttendees int            `gorm:"default:0" json:"current_attendees"`
	PriceAmount      float64        `gorm:"default:0" json:"price_amount"`
	PriceCurrency    string         `gorm:"default:EUR" json:"price_currency"`
	PriceIsFree      bool           `gorm:"default:true" json:"price_is_free"`
	Photos           datatypes.JSON `json:"photos,omitempty"`
	Tags             datatypes.JSON `json:"tags,omitempty"`
	Status           string         `gorm:"default:active;index" json:"status"`
	RatingAverage    float64        `gorm:"default:0" json:"rating_average"`
	RatingCount      int            `gorm:"default:0" json:"rating_count"`
	IsFeatured       bool           `gorm:"default:false" json:"is_featured"`
	ViewsCount       int            `gorm:"default:0" json:"views_count"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// EventLocation, EventDate, EventPrice and EventRatingSummary compose the
// nested response shape served by the list and detail endpoints.
type EventLocation struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

type EventDate struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

type EventPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	IsFree   bool    `json:"isFree"`
}

type EventRatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// EventResponse is the public wire shape of an event.
type EventResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	Category         string             `json:"category,omitempty"`
	Location         EventLocation      `json:"location"`
	Date             EventDate          `json:"date"`
	Capacity         int                `json:"capacity"`
	CurrentAttendees int                `json:"current_attendees"`
	Price            EventPrice         `json:"price"`
	Photos           datatypes.JSON     `json:"photos,omitempty"`
	Tags             datatypes.JSON     `json:"tags,omitempty"`
	Status           string             `json:"status"`
	Rating           EventRatingSummary `json:"rating"`
	Creator          *PublicProfile     `json:"creator,omitempty"`
	IsFeatured       bool               `json:"is_featured"`
	ViewsCount       int                `json:"views_count"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Response converts an event to its public wire shape.
func (e *Event) Response() EventResponse {
	resp := EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Category:         e.Category,
		Location:         EventLocation{Address: e.LocationAddress, City: e.LocationCity},
		Date:             EventDate{Start: e.DateStart, End: e.DateEnd},
		Capacity:         e.Capacity,
		CurrentAttendees: e.CurrentAttendees,
		Price:            EventPrice{Amount: e.PriceAmount, Currency: e.PriceCurrency, IsFree: e.PriceIsFree},
		Photos:           e.Photos,
		Tags:             e.Tags,
		Status:           e.Status,
		Rating:           EventRatingSummary{Average: e.RatingAverage, Count: e.RatingCount},
		IsFeatured:       e.IsFeatured,
		ViewsCount:       e.ViewsCount,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.Creator != nil {
		profile := e.Creator.Public()
		resp.Creator = &profile
	}
	return resp
}

// Pagination is the page envelope returned by list endpoints.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// DuplicateMatch is one candidate returned by the duplicate check.
type DuplicateMatch struct {
	Event           EventResponse `json:"event"`
	Confidence      int           `json:"confidence"`
	Reason          string        `json:"reason"`
	TitleSimilarity int           `json:"titleSimilarity"`
	CitySimilarity  int           `json:"citySimilarity"`
	DateDiffDays    *float64      `json:"dateDiffDays,omitempty"`
}
