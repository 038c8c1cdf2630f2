package itinerary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Match confidence tiers, the collapsed output of place linking.
const (
	MatchExact = "exact"
	MatchHigh  = "high"
	MatchLow   = "low"
	MatchNone  = "none"
)

// TimelineEntry is one scheduled block inside a generated day.
// SuggestedPlaceID is whatever the model emitted; PlaceID and MatchConfidence
// are filled by the place linker before the day is stored.
type TimelineEntry struct {
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
	Activity         string `json:"activity"`
	Description      string `json:"description,omitempty"`
	SuggestedPlaceID string `json:"suggested_place_id,omitempty"`
	PlaceID          string `json:"place_id,omitempty"`
	MatchConfidence  string `json:"match_confidence,omitempty"`
}

// MealSuggestion is a generated meal recommendation for a day.
type MealSuggestion struct {
	Meal             string `json:"meal"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	SuggestedPlaceID string `json:"suggested_place_id,omitempty"`
	PlaceID          string `json:"place_id,omitempty"`
	MatchConfidence  string `json:"match_confidence,omitempty"`
}

// Day is one generated itinerary day. Rows are keyed by (trip, day number)
// and overwritten in place on regeneration, which makes day generation
// idempotent.
type Day struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TripID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_day_trip_number" json:"trip_id"`
	DayNumber int            `gorm:"column:day_number;not null;uniqueIndex:idx_day_trip_number" json:"day_number"`
	Date      time.Time      `gorm:"column:date;not null" json:"date"`
	Title     string         `gorm:"column:title" json:"title"`
	Timeline  datatypes.JSON `gorm:"column:timeline;type:jsonb" json:"timeline"`
	Meals     datatypes.JSON `gorm:"column:meals;type:jsonb" json:"meals,omitempty"`
	Notes     string         `gorm:"column:notes" json:"notes,omitempty"`
	Transport string         `gorm:"column:transport" json:"transport,omitempty"`
	Overnight string         `gorm:"column:overnight" json:"overnight,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Day) TableName() string { return "itinerary_day" }
