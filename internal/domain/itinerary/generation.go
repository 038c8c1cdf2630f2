package itinerary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Generation statuses. Exactly one generation row exists per trip; the row is
// the durable source of truth for the whole run.
const (
	StatusNotStarted        = "not_started"
	StatusGeneratingSummary = "generating_summary"
	StatusGenerating        = "generating"
	StatusPaused            = "paused"
	StatusCompleted         = "completed"
	StatusFailed            = "failed"
)

// ActiveStatuses are the statuses under which a new start must be rejected.
var ActiveStatuses = []string{StatusGeneratingSummary, StatusGenerating}

// FailedDay records a day that exhausted its retries.
type FailedDay struct {
	DayNumber     int        `json:"day_number"`
	Attempts      int        `json:"attempts"`
	LastError     string     `json:"last_error,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
}

// AccommodationSuggestion is part of the plan summary.
type AccommodationSuggestion struct {
	Name     string `json:"name"`
	Area     string `json:"area,omitempty"`
	Style    string `json:"style,omitempty"`
	Reason   string `json:"reason,omitempty"`
	PriceTip string `json:"price_tip,omitempty"`
}

// PlanSummary is the cached output of the summary step. It seeds every day
// generation call and is not regenerated unless the run is fully restarted.
type PlanSummary struct {
	Title          string                    `json:"title"`
	Overview       string                    `json:"overview,omitempty"`
	DayTitles      []string                  `json:"day_titles"`
	Accommodations []AccommodationSuggestion `json:"accommodations,omitempty"`
}

// Generation is the persisted generation record, one row per trip.
//
// pending/completed/failed day sets plus current_day always partition
// 1..total_days at every stable state; the orchestrator maintains that
// invariant across transitions.
type Generation struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TripID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"trip_id"`
	Status        string         `gorm:"column:status;not null;default:not_started;index" json:"status"`
	TotalDays     int            `gorm:"column:total_days;not null;default:0" json:"total_days"`
	CurrentDay    *int           `gorm:"column:current_day" json:"current_day,omitempty"`
	RetryCount    int            `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	PendingDays   datatypes.JSON `gorm:"column:pending_days;type:jsonb" json:"pending_days"`
	CompletedDays datatypes.JSON `gorm:"column:completed_days;type:jsonb" json:"completed_days"`
	FailedDays    datatypes.JSON `gorm:"column:failed_days;type:jsonb" json:"failed_days"`
	Summary       datatypes.JSON `gorm:"column:summary;type:jsonb" json:"summary,omitempty"`
	LinkMetrics   datatypes.JSON `gorm:"column:link_metrics;type:jsonb" json:"link_metrics,omitempty"`
	PlacesCatalog datatypes.JSON `gorm:"column:places_catalog;type:jsonb" json:"places_catalog,omitempty"`
	Preferences   datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences,omitempty"`
	ErrorMessage  string         `gorm:"column:error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (Generation) TableName() string { return "itinerary_generation" }

// Terminal reports whether the status allows no further chained work.
func Terminal(status string) bool {
	switch status {
	case StatusPaused, StatusCompleted, StatusFailed, StatusNotStarted:
		return true
	}
	return false
}

// Active reports whether a run is currently in flight.
func Active(status string) bool {
	return status == StatusGeneratingSummary || status == StatusGenerating
}
