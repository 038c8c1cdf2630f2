package domain

import (
	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/domain/places"
	"github.com/voyplan/voyplan-backend/internal/domain/trip"
)

type (
	Trip               = trip.Trip
	TripPreferences    = trip.Preferences
	PreferenceSnapshot = trip.PreferenceSnapshot

	Generation     = itinerary.Generation
	FailedDay      = itinerary.FailedDay
	PlanSummary    = itinerary.PlanSummary
	Accommodation  = itinerary.AccommodationSuggestion
	ItineraryDay   = itinerary.Day
	TimelineEntry  = itinerary.TimelineEntry
	MealSuggestion = itinerary.MealSuggestion

	Place        = places.Place
	CatalogEntry = places.CatalogEntry
	Catalog      = places.Catalog
)

// AllModels lists every persisted model for automigration, dependency order
// first.
func AllModels() []any {
	return []any{
		&trip.Trip{},
		&trip.Preferences{},
		&places.Place{},
		&itinerary.Generation{},
		&itinerary.Day{},
	}
}
