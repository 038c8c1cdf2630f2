package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voyplan/voyplan-backend/internal/data/repos"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/platform/apperr"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

// maxTripDays caps the trip window; anything longer is almost certainly a
// client bug and would make a generation run absurdly expensive.
const maxTripDays = 30

type CreateTripInput struct {
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Travelers   int       `json:"travelers"`
}

type PreferencesInput struct {
	Pace        string   `json:"pace"`
	BudgetLevel string   `json:"budget_level"`
	Interests   []string `json:"interests"`
	Dietary     []string `json:"dietary"`
	Mobility    string   `json:"mobility"`
	Notes       string   `json:"notes"`
}

type TripService interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, in CreateTripInput) (*types.Trip, error)
	List(ctx context.Context, ownerUserID uuid.UUID) ([]*types.Trip, error)
	Get(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Trip, error)
	UpsertPreferences(ctx context.Context, ownerUserID, tripID uuid.UUID, in PreferencesInput) (*types.TripPreferences, error)
	GetPreferences(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.TripPreferences, error)
}

type tripService struct {
	log   *logger.Logger
	trips repos.TripRepo
	prefs repos.PreferencesRepo
}

func NewTripService(baseLog *logger.Logger, trips repos.TripRepo, prefs repos.PreferencesRepo) TripService {
	return &tripService{
		log:   baseLog.With("service", "TripService"),
		trips: trips,
		prefs: prefs,
	}
}

func (s *tripService) Create(ctx context.Context, ownerUserID uuid.UUID, in CreateTripInput) (*types.Trip, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Destination = strings.TrimSpace(in.Destination)
	if in.Title == "" || in.Destination == "" {
		return nil, fmt.Errorf("%w: title and destination are required", apperr.ErrInvalidArgument)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: invalid date range", apperr.ErrInvalidArgument)
	}
	if in.Travelers <= 0 {
		in.Travelers = 1
	}

	row := &types.Trip{
		OwnerUserID: ownerUserID,
		Title:       in.Title,
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Travelers:   in.Travelers,
	}
	if row.TotalDays() > maxTripDays {
		return nil, fmt.Errorf("%w: trips are limited to %d days", apperr.ErrInvalidArgument, maxTripDays)
	}
	created, err := s.trips.Create(dbctx.Context{Ctx: ctx}, []*types.Trip{row})
	if err != nil {
		return nil, err
	}
	s.log.Info("Trip created", "trip_id", created[0].ID, "destination", in.Destination, "days", row.TotalDays())
	return created[0], nil
}

func (s *tripService) List(ctx context.Context, ownerUserID uuid.UUID) ([]*types.Trip, error) {
	return s.trips.ListByOwner(dbctx.Context{Ctx: ctx}, ownerUserID)
}

func (s *tripService) Get(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Trip, error) {
	trip, err := s.trips.GetByID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.OwnerUserID != ownerUserID {
		return nil, apperr.ErrNotFound
	}
	return trip, nil
}

func (s *tripService) UpsertPreferences(ctx context.Context, ownerUserID, tripID uuid.UUID, in PreferencesInput) (*types.TripPreferences, error) {
	if _, err := s.Get(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	row := &types.TripPreferences{
		TripID:      tripID,
		Pace:        strings.TrimSpace(in.Pace),
		BudgetLevel: strings.TrimSpace(in.BudgetLevel),
		Interests:   mustJSONValue(in.Interests),
		Dietary:     mustJSONValue(in.Dietary),
		Mobility:    strings.TrimSpace(in.Mobility),
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := s.prefs.UpsertByTripID(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, err
	}
	return s.prefs.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
}

func (s *tripService) GetPreferences(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.TripPreferences, error) {
	if _, err := s.Get(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	row, err := s.prefs.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	return row, nil
}
