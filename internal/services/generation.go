package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyplan/voyplan-backend/internal/data/repos"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/generation"
	"github.com/voyplan/voyplan-backend/internal/platform/apperr"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/sse"
)

// GenerationService is the control plane of itinerary generation: it
// validates preconditions, initializes the durable record, and hands the
// chain to the scheduler. All heavy lifting happens in the orchestrator.
type GenerationService interface {
	// Start begins a run. Rejected with apperr.ErrConflict while a run is
	// active; on a paused, completed, or failed trip it restarts from
	// scratch, wiping previously generated days.
	Start(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error)
	// Pause asks the active run to stop after its current unit of work.
	Pause(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error)
	// Resume picks a paused run back up where it left off.
	Resume(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error)
	// Retry re-queues failed days. dayNumber 0 retries all of them.
	Retry(ctx context.Context, ownerUserID, tripID uuid.UUID, dayNumber int) (*types.Generation, error)
	Status(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error)
	Days(ctx context.Context, ownerUserID, tripID uuid.UUID) ([]*types.ItineraryDay, error)
}

type generationService struct {
	log       *logger.Logger
	trips     repos.TripRepo
	prefs     repos.PreferencesRepo
	gens      repos.GenerationRepo
	days      repos.DayRepo
	catalog   PlacesCatalogService
	scheduler generation.Scheduler
	notifier  generation.Notifier
}

func NewGenerationService(
	baseLog *logger.Logger,
	trips repos.TripRepo,
	prefs repos.PreferencesRepo,
	gens repos.GenerationRepo,
	days repos.DayRepo,
	catalog PlacesCatalogService,
	scheduler generation.Scheduler,
	notifier generation.Notifier,
) GenerationService {
	return &generationService{
		log:       baseLog.With("service", "GenerationService"),
		trips:     trips,
		prefs:     prefs,
		gens:      gens,
		days:      days,
		catalog:   catalog,
		scheduler: scheduler,
		notifier:  notifier,
	}
}

// ownedTrip loads the trip and enforces ownership. Trips the caller does not
// own look identical to trips that do not exist.
func (s *generationService) ownedTrip(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Trip, error) {
	trip, err := s.trips.GetByID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.OwnerUserID != ownerUserID {
		return nil, apperr.ErrNotFound
	}
	return trip, nil
}

func (s *generationService) Start(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error) {
	log := s.log.With("trip_id", tripID)
	trip, err := s.ownedTrip(ctx, ownerUserID, tripID)
	if err != nil {
		return nil, err
	}
	totalDays := trip.TotalDays()
	if totalDays <= 0 {
		return nil, fmt.Errorf("%w: trip has no days", apperr.ErrInvalidArgument)
	}

	rec, err := s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if rec != nil && itinerary.Active(rec.Status) {
		return nil, fmt.Errorf("%w: generation already running", apperr.ErrConflict)
	}

	snapshot, err := s.preferenceSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.CatalogForDestination(ctx, trip.Destination)
	if err != nil {
		return nil, err
	}

	pending := mustJSONValue(generation.FullDaySet(totalDays))
	emptySet := mustJSONValue([]int{})
	if rec == nil {
		rec, err = s.gens.Create(dbctx.Context{Ctx: ctx}, &types.Generation{
			TripID:        tripID,
			Status:        itinerary.StatusGeneratingSummary,
			TotalDays:     totalDays,
			PendingDays:   pending,
			CompletedDays: emptySet,
			FailedDays:    mustJSONValue([]types.FailedDay{}),
			PlacesCatalog: mustJSONValue(catalog),
			Preferences:   mustJSONValue(snapshot),
		})
		if err != nil {
			return nil, err
		}
	} else {
		// Restart from scratch: previously generated days are wiped so the
		// trip never mixes output from two runs.
		if err := s.days.DeleteByTripID(dbctx.Context{Ctx: ctx}, tripID); err != nil {
			return nil, err
		}
		ok, err := s.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, tripID,
			[]string{itinerary.StatusNotStarted, itinerary.StatusPaused, itinerary.StatusCompleted, itinerary.StatusFailed},
			map[string]interface{}{
				"status":         itinerary.StatusGeneratingSummary,
				"total_days":     totalDays,
				"current_day":    gorm.Expr("NULL"),
				"retry_count":    0,
				"pending_days":   pending,
				"completed_days": emptySet,
				"failed_days":    mustJSONValue([]types.FailedDay{}),
				"summary":        gorm.Expr("NULL"),
				"link_metrics":   gorm.Expr("NULL"),
				"places_catalog": mustJSONValue(catalog),
				"preferences":    mustJSONValue(snapshot),
				"error_message":  "",
			})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: generation already running", apperr.ErrConflict)
		}
		rec, err = s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
		if err != nil {
			return nil, err
		}
	}

	s.publish(ctx, tripID, sse.EventGenerationStarted, map[string]any{
		"status":     itinerary.StatusGeneratingSummary,
		"total_days": totalDays,
	})
	s.dispatch(ctx, log, generation.Invocation{TripID: tripID, Action: generation.ActionStart})
	log.Info("Generation run started", "total_days", totalDays, "catalog_empty", catalog.Empty())
	return rec, nil
}

func (s *generationService) Pause(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error) {
	if _, err := s.ownedTrip(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	ok, err := s.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, tripID,
		itinerary.ActiveStatuses,
		map[string]interface{}{"status": itinerary.StatusPaused})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no active generation to pause", apperr.ErrConflict)
	}
	// The in-flight unit of work finishes on its own; the orchestrator sees
	// the new status before the next model call and stops there.
	s.log.Info("Generation pause requested", "trip_id", tripID)
	return s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
}

func (s *generationService) Resume(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error) {
	log := s.log.With("trip_id", tripID)
	if _, err := s.ownedTrip(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	rec, err := s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.ErrNotFound
	}
	if rec.Status != itinerary.StatusPaused {
		return nil, fmt.Errorf("%w: generation is not paused", apperr.ErrConflict)
	}
	if len(generation.DaySetFromJSON(rec.PendingDays)) == 0 {
		return nil, fmt.Errorf("%w: no pending days to resume", apperr.ErrConflict)
	}

	// A run paused before the summary landed resumes in the summary phase.
	nextStatus := itinerary.StatusGenerating
	action := generation.ActionResume
	if len(rec.Summary) == 0 {
		nextStatus = itinerary.StatusGeneratingSummary
		action = generation.ActionStart
	}
	ok, err := s.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, tripID,
		[]string{itinerary.StatusPaused},
		map[string]interface{}{"status": nextStatus, "retry_count": 0})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: generation is not paused", apperr.ErrConflict)
	}

	s.publish(ctx, tripID, sse.EventGenerationResumed, map[string]any{"status": nextStatus})
	s.dispatch(ctx, log, generation.Invocation{TripID: tripID, Action: action})
	log.Info("Generation resumed", "status", nextStatus)
	return s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
}

func (s *generationService) Retry(ctx context.Context, ownerUserID, tripID uuid.UUID, dayNumber int) (*types.Generation, error) {
	log := s.log.With("trip_id", tripID)
	if _, err := s.ownedTrip(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	rec, err := s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.ErrNotFound
	}
	if itinerary.Active(rec.Status) {
		return nil, fmt.Errorf("%w: generation already running", apperr.ErrConflict)
	}

	failed := generation.FailedDaysFromJSON(rec.FailedDays)
	if len(failed) == 0 {
		return nil, fmt.Errorf("%w: no failed days to retry", apperr.ErrConflict)
	}

	var requeue []int
	remaining := failed
	if dayNumber > 0 {
		found := false
		remaining = remaining[:0:0]
		for _, f := range failed {
			if f.DayNumber == dayNumber {
				found = true
				requeue = append(requeue, f.DayNumber)
				continue
			}
			remaining = append(remaining, f)
		}
		if !found {
			return nil, fmt.Errorf("%w: day %d is not failed", apperr.ErrInvalidArgument, dayNumber)
		}
	} else {
		remaining = []types.FailedDay{}
		for _, f := range failed {
			requeue = append(requeue, f.DayNumber)
		}
	}

	pending := generation.DaySetFromJSON(rec.PendingDays)
	for _, d := range requeue {
		pending = generation.AddDay(pending, d)
	}

	ok, err := s.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, tripID,
		[]string{itinerary.StatusPaused, itinerary.StatusCompleted, itinerary.StatusFailed},
		map[string]interface{}{
			"status":        itinerary.StatusGenerating,
			"pending_days":  mustJSONValue(pending),
			"failed_days":   mustJSONValue(remaining),
			"retry_count":   0,
			"error_message": "",
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: generation already running", apperr.ErrConflict)
	}

	s.publish(ctx, tripID, sse.EventGenerationResumed, map[string]any{
		"status":       itinerary.StatusGenerating,
		"retried_days": requeue,
	})
	s.dispatch(ctx, log, generation.Invocation{TripID: tripID, Action: generation.ActionRetry})
	log.Info("Failed days re-queued", "days", requeue)
	return s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
}

func (s *generationService) Status(ctx context.Context, ownerUserID, tripID uuid.UUID) (*types.Generation, error) {
	if _, err := s.ownedTrip(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	rec, err := s.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.ErrNotFound
	}
	return rec, nil
}

func (s *generationService) Days(ctx context.Context, ownerUserID, tripID uuid.UUID) ([]*types.ItineraryDay, error) {
	if _, err := s.ownedTrip(ctx, ownerUserID, tripID); err != nil {
		return nil, err
	}
	return s.days.ListByTripID(dbctx.Context{Ctx: ctx}, tripID)
}

func (s *generationService) preferenceSnapshot(ctx context.Context, tripID uuid.UUID) (types.PreferenceSnapshot, error) {
	var snapshot types.PreferenceSnapshot
	row, err := s.prefs.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return snapshot, err
	}
	if row == nil {
		return snapshot, nil
	}
	snapshot.Pace = row.Pace
	snapshot.BudgetLevel = row.BudgetLevel
	snapshot.Mobility = row.Mobility
	snapshot.Notes = row.Notes
	_ = json.Unmarshal(row.Interests, &snapshot.Interests)
	_ = json.Unmarshal(row.Dietary, &snapshot.Dietary)
	return snapshot, nil
}

func (s *generationService) dispatch(ctx context.Context, log *logger.Logger, inv generation.Invocation) {
	if err := s.scheduler.Dispatch(ctx, inv); err != nil {
		// The record stays in an active status; operators can resume via
		// retry once the scheduler backend is healthy again.
		log.Error("Invocation dispatch failed", "action", inv.Action, "error", err)
	}
}

func (s *generationService) publish(ctx context.Context, tripID uuid.UUID, event sse.Event, data map[string]any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, tripID, event, data)
}
