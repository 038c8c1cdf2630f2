package services

import (
	"context"
	"strings"

	"github.com/voyplan/voyplan-backend/internal/data/repos"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/domain/places"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

// maxCatalogPerCategory caps how many places per category are snapshotted
// onto a generation record. Keeps the day prompt bounded for dense cities.
const maxCatalogPerCategory = 25

// PlacesCatalogService assembles the per-destination place catalog snapshotted
// onto a generation record at start.
type PlacesCatalogService interface {
	CatalogForDestination(ctx context.Context, destination string) (types.Catalog, error)
}

type placesCatalogService struct {
	places repos.PlaceRepo
	log    *logger.Logger
}

func NewPlacesCatalogService(placeRepo repos.PlaceRepo, baseLog *logger.Logger) PlacesCatalogService {
	return &placesCatalogService{
		places: placeRepo,
		log:    baseLog.With("service", "PlacesCatalogService"),
	}
}

// CatalogForDestination groups the destination's places by category, best
// rated first, capped per category. An unknown destination yields an empty
// catalog, not an error; generation runs fine without place linking.
func (s *placesCatalogService) CatalogForDestination(ctx context.Context, destination string) (types.Catalog, error) {
	catalog := types.Catalog{}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return catalog, nil
	}

	rows, err := s.places.ListByDestination(dbctx.Context{Ctx: ctx}, destination)
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		if p == nil {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(p.Category))
		if category == "" {
			category = "other"
		}
		if len(catalog[category]) >= maxCatalogPerCategory {
			continue
		}
		catalog[category] = append(catalog[category], places.EntryFromPlace(p))
	}

	if catalog.Empty() {
		s.log.Info("No catalog places for destination", "destination", destination)
	}
	return catalog, nil
}
