package repos

import (
	itinrepo "github.com/voyplan/voyplan-backend/internal/data/repos/itinerary"
	placerepo "github.com/voyplan/voyplan-backend/internal/data/repos/places"
	triprepo "github.com/voyplan/voyplan-backend/internal/data/repos/trips"
)

type TripRepo = triprepo.TripRepo
type PreferencesRepo = triprepo.PreferencesRepo

type GenerationRepo = itinrepo.GenerationRepo
type DayRepo = itinrepo.DayRepo

type PlaceRepo = placerepo.PlaceRepo

var (
	NewTripRepo        = triprepo.NewTripRepo
	NewPreferencesRepo = triprepo.NewPreferencesRepo
	NewGenerationRepo  = itinrepo.NewGenerationRepo
	NewDayRepo         = itinrepo.NewDayRepo
	NewPlaceRepo       = placerepo.NewPlaceRepo
)
