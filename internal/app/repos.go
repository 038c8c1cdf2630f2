package app

import (
	"gorm.io/gorm"

	"github.com/voyplan/voyplan-backend/internal/data/repos"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type Repos struct {
	Trip        repos.TripRepo
	Preferences repos.PreferencesRepo
	Generation  repos.GenerationRepo
	Day         repos.DayRepo
	Place       repos.PlaceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Trip:        repos.NewTripRepo(db, log),
		Preferences: repos.NewPreferencesRepo(db, log),
		Generation:  repos.NewGenerationRepo(db, log),
		Day:         repos.NewDayRepo(db, log),
		Place:       repos.NewPlaceRepo(db, log),
	}
}
