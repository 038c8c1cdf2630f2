package app

import (
	"fmt"

	"github.com/voyplan/voyplan-backend/internal/generation"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/services"
	"github.com/voyplan/voyplan-backend/internal/temporalx/genrun"
	"github.com/voyplan/voyplan-backend/internal/temporalx/temporalworker"
)

type Services struct {
	Trip       services.TripService
	Catalog    services.PlacesCatalogService
	Generation services.GenerationService

	Orchestrator *generation.Orchestrator
	Scheduler    generation.Scheduler
	Worker       *temporalworker.Runner
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	genCfg := generation.LoadConfig(log)

	catalog := services.NewPlacesCatalogService(reposet.Place, log)
	trip := services.NewTripService(log, reposet.Trip, reposet.Preferences)
	notifier := services.NewGenerationNotifier(clients.Bus, log)

	orch := generation.NewOrchestrator(log, genCfg, clients.AI, reposet.Trip, reposet.Generation, reposet.Day, notifier)

	var scheduler generation.Scheduler
	var worker *temporalworker.Runner
	switch cfg.ChainDriver {
	case ChainDriverTemporal:
		sched, err := genrun.NewScheduler(clients.Temporal, log)
		if err != nil {
			return Services{}, fmt.Errorf("init temporal scheduler: %w", err)
		}
		worker, err = temporalworker.NewRunner(log, clients.Temporal, orch)
		if err != nil {
			return Services{}, fmt.Errorf("init temporal worker: %w", err)
		}
		scheduler = sched
	default:
		scheduler = generation.NewInlineScheduler(orch, log)
	}

	gen := services.NewGenerationService(
		log,
		reposet.Trip,
		reposet.Preferences,
		reposet.Generation,
		reposet.Day,
		catalog,
		scheduler,
		notifier,
	)

	return Services{
		Trip:         trip,
		Catalog:      catalog,
		Generation:   gen,
		Orchestrator: orch,
		Scheduler:    scheduler,
		Worker:       worker,
	}, nil
}
