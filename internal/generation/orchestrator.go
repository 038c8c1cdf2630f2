package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyplan/voyplan-backend/internal/clients/openai"
	"github.com/voyplan/voyplan-backend/internal/data/repos"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/generation/linking"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/sse"
)

// Notifier receives run lifecycle events. Implementations fan them out to
// subscribers; the orchestrator never blocks on them.
type Notifier interface {
	Publish(ctx context.Context, tripID uuid.UUID, event sse.Event, data map[string]any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, uuid.UUID, sse.Event, map[string]any) {}

// Orchestrator drives one generation run as a chain of single-unit steps.
// Each Step call does at most one model call, persists the outcome on the
// generation record, and returns the follow-up invocation. All record writes
// are status-guarded, so a concurrent pause or a stale duplicate invocation
// loses the write race and backs off instead of corrupting the run.
type Orchestrator struct {
	log      *logger.Logger
	cfg      Config
	ai       openai.Client
	trips    repos.TripRepo
	gens     repos.GenerationRepo
	days     repos.DayRepo
	notifier Notifier
}

func NewOrchestrator(
	baseLog *logger.Logger,
	cfg Config,
	ai openai.Client,
	trips repos.TripRepo,
	gens repos.GenerationRepo,
	days repos.DayRepo,
	notifier Notifier,
) *Orchestrator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Orchestrator{
		log:      baseLog.With("component", "GenerationOrchestrator"),
		cfg:      cfg,
		ai:       ai,
		trips:    trips,
		gens:     gens,
		days:     days,
		notifier: notifier,
	}
}

// Step executes one unit of work for the trip's run and returns the next
// invocation, or nil when the run reached a stable state. A nil return with a
// nil error always leaves the record in not_started, paused, completed, or
// failed.
func (o *Orchestrator) Step(ctx context.Context, inv Invocation) (*Invocation, error) {
	if inv.TripID == uuid.Nil {
		return nil, fmt.Errorf("orchestrator: missing trip id")
	}
	log := o.log.With("trip_id", inv.TripID, "action", inv.Action)

	rec, err := o.gens.GetByTripID(dbctx.Context{Ctx: ctx}, inv.TripID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("orchestrator: no generation record for trip %s", inv.TripID)
	}

	switch inv.Action {
	case ActionStart:
		return o.stepSummary(ctx, log, rec)
	case ActionContinue, ActionResume, ActionRetry:
		if rec.Status == itinerary.StatusGeneratingSummary {
			// Resumed before the summary landed; redo the summary step.
			return o.stepSummary(ctx, log, rec)
		}
		return o.stepDay(ctx, log, rec)
	default:
		return nil, fmt.Errorf("orchestrator: unknown action %q", inv.Action)
	}
}

// stepSummary generates and caches the plan summary, then hands the run over
// to the day phase.
func (o *Orchestrator) stepSummary(ctx context.Context, log *logger.Logger, rec *types.Generation) (*Invocation, error) {
	switch rec.Status {
	case itinerary.StatusGeneratingSummary:
		// fall through
	case itinerary.StatusGenerating:
		// Summary already landed; an old duplicate invocation caught up.
		return &Invocation{TripID: rec.TripID, Action: ActionContinue}, nil
	default:
		o.observeStopped(ctx, log, rec.TripID, rec.Status)
		return nil, nil
	}

	trip, err := o.trips.GetByID(dbctx.Context{Ctx: ctx}, rec.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return o.failRun(ctx, log, rec, itinerary.StatusGeneratingSummary, "trip no longer exists")
	}

	summary, _, err := GenerateSummary(ctx, SummarizeDeps{Log: log, AI: o.ai, Cfg: o.cfg}, SummarizeInput{
		Trip:      trip,
		Prefs:     prefsFromJSON(rec.Preferences),
		TotalDays: rec.TotalDays,
	})
	if err != nil {
		attempts := rec.RetryCount + 1
		log.Warn("Summary generation attempt failed", "attempt", attempts, "max", o.cfg.MaxRetries, "error", err)
		if attempts >= o.cfg.MaxRetries {
			return o.failRun(ctx, log, rec, itinerary.StatusGeneratingSummary,
				fmt.Sprintf("summary generation failed after %d attempts: %v", attempts, err))
		}
		ok, uerr := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
			[]string{itinerary.StatusGeneratingSummary},
			map[string]interface{}{"retry_count": attempts})
		if uerr != nil {
			return nil, uerr
		}
		if !ok {
			return o.lostControl(ctx, log, rec.TripID)
		}
		return &Invocation{TripID: rec.TripID, Action: ActionStart}, nil
	}

	ok, err := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
		[]string{itinerary.StatusGeneratingSummary},
		map[string]interface{}{
			"status":        itinerary.StatusGenerating,
			"summary":       mustJSON(summary),
			"retry_count":   0,
			"error_message": "",
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Paused mid-call. Keep the summary so resume skips this step.
		_, _ = o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
			[]string{itinerary.StatusPaused},
			map[string]interface{}{"summary": mustJSON(summary)})
		return o.lostControl(ctx, log, rec.TripID)
	}

	o.notifier.Publish(ctx, rec.TripID, sse.EventGenerationProgress, map[string]any{
		"status":     itinerary.StatusGenerating,
		"total_days": rec.TotalDays,
		"summary":    summary,
	})
	return &Invocation{TripID: rec.TripID, Action: ActionContinue}, nil
}

// stepDay takes the next pending day through one generation attempt, or
// finalizes the run when no pending days remain.
func (o *Orchestrator) stepDay(ctx context.Context, log *logger.Logger, rec *types.Generation) (*Invocation, error) {
	if rec.Status != itinerary.StatusGenerating {
		o.observeStopped(ctx, log, rec.TripID, rec.Status)
		return nil, nil
	}

	pending := DaySetFromJSON(rec.PendingDays)
	if len(pending) == 0 {
		return nil, o.finalize(ctx, log, rec)
	}
	day := pending[0]
	log = log.With("day", day)

	ok, err := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
		[]string{itinerary.StatusGenerating},
		map[string]interface{}{"current_day": day})
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.lostControl(ctx, log, rec.TripID)
	}

	trip, err := o.trips.GetByID(dbctx.Context{Ctx: ctx}, rec.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return o.failRun(ctx, log, rec, itinerary.StatusGenerating, "trip no longer exists")
	}
	summary := planSummaryFromJSON(rec.Summary)
	if summary == nil {
		return o.failRun(ctx, log, rec, itinerary.StatusGenerating, "generation record lost its plan summary")
	}

	recap := ""
	if prev, err := o.days.GetByTripAndDay(dbctx.Context{Ctx: ctx}, rec.TripID, day-1); err == nil {
		recap = DayRecap(prev)
	}

	catalog := catalogFromJSON(rec.PlacesCatalog)
	dayMetrics := linking.NewMetrics()
	matcher := linking.NewMatcher(catalog, o.cfg.Matcher, dayMetrics, log)

	row, _, genErr := GenerateDay(ctx, DayDeps{Log: log, AI: o.ai, Matcher: matcher, Cfg: o.cfg}, DayInput{
		Trip:               trip,
		Prefs:              prefsFromJSON(rec.Preferences),
		Summary:            summary,
		Catalog:            catalog,
		DayNumber:          day,
		PreviousDaySummary: recap,
	})
	if genErr != nil {
		return o.handleDayFailure(ctx, log, rec, day, pending, genErr)
	}

	if err := o.days.UpsertByTripAndDay(dbctx.Context{Ctx: ctx}, row); err != nil {
		return o.handleDayFailure(ctx, log, rec, day, pending, err)
	}

	runMetrics := linking.NewMetrics()
	if len(rec.LinkMetrics) > 0 {
		runMetrics = metricsFromJSON(rec.LinkMetrics)
	}
	runMetrics.Add(*dayMetrics)

	completed := AddDay(DaySetFromJSON(rec.CompletedDays), day)
	remaining := removeDay(pending, day)
	ok, err = o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
		[]string{itinerary.StatusGenerating},
		map[string]interface{}{
			"pending_days":   mustJSON(remaining),
			"completed_days": mustJSON(completed),
			"retry_count":    0,
			"current_day":    gorm.Expr("NULL"),
			"link_metrics":   mustJSON(runMetrics),
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Paused while the day was in flight. The row is already stored and
		// the day is still pending; resume regenerates it idempotently.
		return o.lostControl(ctx, log, rec.TripID)
	}

	o.notifier.Publish(ctx, rec.TripID, sse.EventGenerationDayReady, map[string]any{
		"day_number": day,
		"title":      row.Title,
	})
	o.publishProgress(ctx, rec.TripID, rec.TotalDays, completed, remaining, FailedDaysFromJSON(rec.FailedDays))

	return &Invocation{TripID: rec.TripID, Action: ActionContinue}, nil
}

func (o *Orchestrator) handleDayFailure(ctx context.Context, log *logger.Logger, rec *types.Generation, day int, pending []int, genErr error) (*Invocation, error) {
	attempts := rec.RetryCount + 1
	log.Warn("Day generation attempt failed",
		"attempt", attempts,
		"max", o.cfg.MaxRetries,
		"parse_error", IsMalformedOutput(genErr),
		"error", genErr)

	if attempts < o.cfg.MaxRetries {
		ok, err := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
			[]string{itinerary.StatusGenerating},
			map[string]interface{}{
				"retry_count": attempts,
				"current_day": gorm.Expr("NULL"),
			})
		if err != nil {
			return nil, err
		}
		if !ok {
			return o.lostControl(ctx, log, rec.TripID)
		}
		return &Invocation{TripID: rec.TripID, Action: ActionContinue}, nil
	}

	// Retries exhausted: park the day as failed and move on. One bad day
	// never takes the rest of the trip down with it.
	now := time.Now().UTC()
	failed := append(FailedDaysFromJSON(rec.FailedDays), types.FailedDay{
		DayNumber:     day,
		Attempts:      attempts,
		LastError:     genErr.Error(),
		LastAttemptAt: &now,
	})
	remaining := removeDay(pending, day)
	ok, err := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
		[]string{itinerary.StatusGenerating},
		map[string]interface{}{
			"pending_days": mustJSON(remaining),
			"failed_days":  mustJSON(failed),
			"retry_count":  0,
			"current_day":  gorm.Expr("NULL"),
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.lostControl(ctx, log, rec.TripID)
	}

	log.Error("Day generation exhausted retries", "attempts", attempts, "error", genErr)
	o.publishProgress(ctx, rec.TripID, rec.TotalDays, DaySetFromJSON(rec.CompletedDays), remaining, failed)
	return &Invocation{TripID: rec.TripID, Action: ActionContinue}, nil
}

// finalize closes out a run whose pending set drained. Any parked day marks
// the run failed; completed days stay on the record for a later retry.
func (o *Orchestrator) finalize(ctx context.Context, log *logger.Logger, rec *types.Generation) error {
	completed := DaySetFromJSON(rec.CompletedDays)
	failed := FailedDaysFromJSON(rec.FailedDays)

	metrics := metricsFromJSON(rec.LinkMetrics)
	snap := metrics.Snapshot()
	healthLog := log.With(
		"linked", snap.Exact+snap.High+snap.Low,
		"total_refs", snap.Total,
		"link_rate", fmt.Sprintf("%.1f", snap.LinkRate),
		"exact_match_rate", fmt.Sprintf("%.1f", snap.ExactMatchRate),
		"invalid_id_rate", fmt.Sprintf("%.1f", snap.InvalidIDRate),
		"health_score", fmt.Sprintf("%.1f", snap.HealthScore))
	if snap.Total > 0 && snap.HealthScore < linking.HealthWarnThreshold {
		healthLog.Warn("Place linking health below threshold")
	} else {
		healthLog.Info("Place linking health")
	}

	status := itinerary.StatusCompleted
	errMsg := ""
	if len(failed) > 0 {
		nums := failedDayNumbers(failed)
		errMsg = fmt.Sprintf("days %s failed after %d attempts each", joinInts(nums), o.cfg.MaxRetries)
		status = itinerary.StatusFailed
	}

	ok, err := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
		[]string{itinerary.StatusGenerating},
		map[string]interface{}{
			"status":        status,
			"current_day":   gorm.Expr("NULL"),
			"error_message": errMsg,
		})
	if err != nil {
		return err
	}
	if !ok {
		_, err := o.lostControl(ctx, log, rec.TripID)
		return err
	}

	event := sse.EventGenerationCompleted
	if status == itinerary.StatusFailed {
		event = sse.EventGenerationFailed
	}
	o.notifier.Publish(ctx, rec.TripID, event, map[string]any{
		"status":         status,
		"completed_days": completed,
		"failed_days":    failedDayNumbers(failed),
		"link_health":    snap,
	})
	log.Info("Generation run finished", "status", status, "completed", len(completed), "failed", len(failed))
	return nil
}

func (o *Orchestrator) failRun(ctx context.Context, log *logger.Logger, rec *types.Generation, fromStatus, msg string) (*Invocation, error) {
	ok, err := o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, rec.TripID,
		[]string{fromStatus},
		map[string]interface{}{
			"status":        itinerary.StatusFailed,
			"current_day":   gorm.Expr("NULL"),
			"error_message": msg,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.lostControl(ctx, log, rec.TripID)
	}
	log.Error("Generation run failed", "reason", msg)
	o.notifier.Publish(ctx, rec.TripID, sse.EventGenerationFailed, map[string]any{
		"status": itinerary.StatusFailed,
		"error":  msg,
	})
	return nil, nil
}

// lostControl runs after a guarded write matched zero rows: someone else
// moved the record, almost always a pause. Re-read and report, never fight.
func (o *Orchestrator) lostControl(ctx context.Context, log *logger.Logger, tripID uuid.UUID) (*Invocation, error) {
	rec, err := o.gens.GetByTripID(dbctx.Context{Ctx: ctx}, tripID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if rec.CurrentDay != nil && !itinerary.Active(rec.Status) {
			// A pause landed while this day's call was in flight. The day is
			// still pending; a stable record carries no day in flight.
			_, _ = o.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, tripID,
				[]string{rec.Status},
				map[string]interface{}{"current_day": gorm.Expr("NULL")})
		}
		o.observeStopped(ctx, log, tripID, rec.Status)
	}
	return nil, nil
}

func (o *Orchestrator) observeStopped(ctx context.Context, log *logger.Logger, tripID uuid.UUID, status string) {
	log.Info("Run no longer active; stopping chain", "status", status)
	if status == itinerary.StatusPaused {
		o.notifier.Publish(ctx, tripID, sse.EventGenerationPaused, map[string]any{
			"status": itinerary.StatusPaused,
		})
	}
}

func (o *Orchestrator) publishProgress(ctx context.Context, tripID uuid.UUID, totalDays int, completed, pending []int, failed []types.FailedDay) {
	o.notifier.Publish(ctx, tripID, sse.EventGenerationProgress, map[string]any{
		"total_days":     totalDays,
		"completed_days": completed,
		"pending_days":   pending,
		"failed_days":    failedDayNumbers(failed),
	})
}

func joinInts(nums []int) string {
	parts := make([]string, 0, len(nums))
	for _, n := range nums {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ", ")
}
