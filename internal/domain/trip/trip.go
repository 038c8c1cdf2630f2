package trip

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Trip struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Destination string         `gorm:"column:destination;not null;index" json:"destination"`
	StartDate   time.Time      `gorm:"column:start_date;not null" json:"start_date"`
	EndDate     time.Time      `gorm:"column:end_date;not null" json:"end_date"`
	Travelers   int            `gorm:"column:travelers;not null;default:1" json:"travelers"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trip) TableName() string { return "trip" }

// TotalDays is the inclusive day count of the trip window.
func (t *Trip) TotalDays() int {
	if t == nil || t.EndDate.Before(t.StartDate) {
		return 0
	}
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// DateForDay returns the calendar date of a 1-based day number.
func (t *Trip) DateForDay(dayNumber int) time.Time {
	return t.StartDate.AddDate(0, 0, dayNumber-1)
}

// Preferences is the per-trip travel preference row captured from the user.
// The generation pipeline snapshots it onto the generation record at start, so
// edits made mid-run do not change an in-flight plan.
type Preferences struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TripID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"trip_id"`
	Pace        string         `gorm:"column:pace" json:"pace,omitempty"`
	BudgetLevel string         `gorm:"column:budget_level" json:"budget_level,omitempty"`
	Interests   datatypes.JSON `gorm:"column:interests;type:jsonb" json:"interests,omitempty"`
	Dietary     datatypes.JSON `gorm:"column:dietary;type:jsonb" json:"dietary,omitempty"`
	Mobility    string         `gorm:"column:mobility" json:"mobility,omitempty"`
	Notes       string         `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Preferences) TableName() string { return "trip_preferences" }

// PreferenceSnapshot is the JSON shape stored on the generation record.
type PreferenceSnapshot struct {
	Pace        string   `json:"pace,omitempty"`
	BudgetLevel string   `json:"budget_level,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	Dietary     []string `json:"dietary,omitempty"`
	Mobility    string   `json:"mobility,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}
