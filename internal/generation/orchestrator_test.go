package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyplan/voyplan-backend/internal/clients/openai"
	"github.com/voyplan/voyplan-backend/internal/data/repos"
	"github.com/voyplan/voyplan-backend/internal/data/repos/testutil"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
	"github.com/voyplan/voyplan-backend/internal/sse"
)

// fakeAI scripts structured-output responses per call. The generate hook
// sees the schema name and rendered user prompt and decides what the model
// "returned".
type fakeAI struct {
	mu       sync.Mutex
	calls    int
	generate func(schemaName, user string) (map[string]any, error)
}

func (f *fakeAI) GenerateJSON(_ context.Context, _ string, user string, schemaName string, _ map[string]any) (map[string]any, openai.Usage, error) {
	f.mu.Lock()
	f.calls++
	gen := f.generate
	f.mu.Unlock()
	out, err := gen(schemaName, user)
	return out, openai.Usage{InputTokens: 100, OutputTokens: 200}, err
}

type recordedEvent struct {
	Event sse.Event
	Data  map[string]any
}

type captureNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *captureNotifier) Publish(_ context.Context, _ uuid.UUID, event sse.Event, data map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Event: event, Data: data})
}

func (n *captureNotifier) has(event sse.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

type orchFixture struct {
	db       *gorm.DB
	orch     *Orchestrator
	gens     repos.GenerationRepo
	days     repos.DayRepo
	notifier *captureNotifier
	trip     *types.Trip
	catalog  types.Catalog
	placeID  string
}

func newOrchFixture(t *testing.T, ai openai.Client, totalDays int) *orchFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	trip := testutil.SeedTrip(t, ctx, db, "Lisbon", totalDays)

	placeID := uuid.NewString()
	catalog := types.Catalog{
		"attraction": {
			{ID: placeID, Name: "Castelo de Sao Jorge", Type: "attraction", Rating: 4.6},
		},
		"restaurant": {
			{ID: uuid.NewString(), Name: "Cervejaria Ramiro", Type: "restaurant", Rating: 4.5},
		},
	}

	tripRepo := repos.NewTripRepo(db, log)
	genRepo := repos.NewGenerationRepo(db, log)
	dayRepo := repos.NewDayRepo(db, log)

	rec := &types.Generation{
		ID:            uuid.New(),
		TripID:        trip.ID,
		Status:        itinerary.StatusGeneratingSummary,
		TotalDays:     totalDays,
		PendingDays:   mustJSON(FullDaySet(totalDays)),
		CompletedDays: mustJSON([]int{}),
		FailedDays:    mustJSON([]types.FailedDay{}),
		PlacesCatalog: mustJSON(catalog),
		Preferences:   mustJSON(types.PreferenceSnapshot{Pace: "relaxed", Interests: []string{"food", "history"}}),
	}
	if _, err := genRepo.Create(dbctx.Context{Ctx: ctx}, rec); err != nil {
		t.Fatalf("seed generation record: %v", err)
	}

	notifier := &captureNotifier{}
	orch := NewOrchestrator(log, LoadConfig(log), ai, tripRepo, genRepo, dayRepo, notifier)

	return &orchFixture{
		db:       db,
		orch:     orch,
		gens:     genRepo,
		days:     dayRepo,
		notifier: notifier,
		trip:     trip,
		catalog:  catalog,
		placeID:  placeID,
	}
}

func (f *orchFixture) record(t *testing.T) *types.Generation {
	t.Helper()
	rec, err := f.gens.GetByTripID(dbctx.Context{Ctx: context.Background()}, f.trip.ID)
	if err != nil {
		t.Fatalf("load generation record: %v", err)
	}
	if rec == nil {
		t.Fatalf("generation record vanished")
	}
	return rec
}

// drive loops Step until the chain settles, the way the inline scheduler and
// the workflow both do.
func (f *orchFixture) drive(t *testing.T, action string) int {
	t.Helper()
	inv := &Invocation{TripID: f.trip.ID, Action: action}
	steps := 0
	for inv != nil {
		next, err := f.orch.Step(context.Background(), *inv)
		if err != nil {
			t.Fatalf("step %d (%s): %v", steps, inv.Action, err)
		}
		inv = next
		steps++
		if steps > 200 {
			t.Fatalf("invocation chain did not settle")
		}
	}
	return steps
}

// assertPartition checks that pending, completed, and failed day numbers
// partition 1..total_days with no current day in flight.
func assertPartition(t *testing.T, rec *types.Generation) {
	t.Helper()
	if rec.CurrentDay != nil {
		t.Fatalf("stable state still has current_day=%d", *rec.CurrentDay)
	}
	seen := map[int]string{}
	mark := func(day int, set string) {
		if prev, dup := seen[day]; dup {
			t.Fatalf("day %d in both %s and %s", day, prev, set)
		}
		seen[day] = set
	}
	for _, d := range DaySetFromJSON(rec.PendingDays) {
		mark(d, "pending")
	}
	for _, d := range DaySetFromJSON(rec.CompletedDays) {
		mark(d, "completed")
	}
	for _, f := range FailedDaysFromJSON(rec.FailedDays) {
		mark(f.DayNumber, "failed")
	}
	if len(seen) != rec.TotalDays {
		t.Fatalf("day sets cover %d days, want %d", len(seen), rec.TotalDays)
	}
	for d := 1; d <= rec.TotalDays; d++ {
		if _, ok := seen[d]; !ok {
			t.Fatalf("day %d missing from every set", d)
		}
	}
}

func summaryOutput(dayTitles ...string) map[string]any {
	titles := make([]any, 0, len(dayTitles))
	for _, s := range dayTitles {
		titles = append(titles, s)
	}
	return map[string]any{
		"title":      "Three Days in Lisbon",
		"overview":   "Castles, tascas, and miradouros.",
		"day_titles": titles,
		"accommodations": []any{
			map[string]any{"name": "Alfama guesthouse", "area": "Alfama", "style": "boutique"},
		},
	}
}

func dayOutput(title, suggestedPlaceID string) map[string]any {
	return map[string]any{
		"title": title,
		"timeline": []any{
			map[string]any{
				"start_time":         "09:30",
				"end_time":           "12:00",
				"activity":           "Castelo de Sao Jorge",
				"suggested_place_id": suggestedPlaceID,
			},
			map[string]any{
				"start_time": "14:00",
				"activity":   "Wander the Alfama lanes",
			},
		},
		"meals": []any{
			map[string]any{"meal": "lunch", "name": "Cervejaria Ramiro"},
		},
		"notes":     "Wear good shoes.",
		"transport": "tram 28, walking",
		"overnight": "Alfama guesthouse",
	}
}

func TestChainRunsSummaryThenDaysToCompletion(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 3)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("Alfama", "Belem", "Sintra"), nil
		}
		return dayOutput("A day out", f.placeID), nil
	}

	f.drive(t, ActionStart)

	rec := f.record(t)
	if rec.Status != itinerary.StatusCompleted {
		t.Fatalf("status = %q, want completed (error_message=%q)", rec.Status, rec.ErrorMessage)
	}
	if rec.ErrorMessage != "" {
		t.Fatalf("unexpected error message %q", rec.ErrorMessage)
	}
	if got := DaySetFromJSON(rec.CompletedDays); len(got) != 3 {
		t.Fatalf("completed days = %v, want 3 days", got)
	}
	if got := DaySetFromJSON(rec.PendingDays); len(got) != 0 {
		t.Fatalf("pending days = %v, want empty", got)
	}
	assertPartition(t, rec)

	if len(rec.Summary) == 0 {
		t.Fatalf("summary not persisted")
	}
	summary := planSummaryFromJSON(rec.Summary)
	if summary == nil || summary.Title != "Three Days in Lisbon" {
		t.Fatalf("stored summary = %+v", summary)
	}

	rows, err := f.days.ListByTripID(dbctx.Context{Ctx: context.Background()}, f.trip.ID)
	if err != nil {
		t.Fatalf("list days: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("stored %d day rows, want 3", len(rows))
	}
	for _, row := range rows {
		timeline := timelineFromJSON(row.Timeline)
		if len(timeline) != 2 {
			t.Fatalf("day %d timeline = %d entries, want 2", row.DayNumber, len(timeline))
		}
		if timeline[0].PlaceID != f.placeID || timeline[0].MatchConfidence != itinerary.MatchExact {
			t.Fatalf("day %d first entry not exact-linked: place_id=%q confidence=%q",
				row.DayNumber, timeline[0].PlaceID, timeline[0].MatchConfidence)
		}
	}

	// One summary call plus one call per day.
	if ai.calls != 4 {
		t.Fatalf("model calls = %d, want 4", ai.calls)
	}

	metrics := metricsFromJSON(f.record(t).LinkMetrics)
	if metrics.Exact != 3 {
		t.Fatalf("run metrics exact = %d, want 3", metrics.Exact)
	}
	if !f.notifier.has(sse.EventGenerationCompleted) {
		t.Fatalf("completed event never published")
	}
}

func TestSummaryRetriesThenFailsRun(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 2)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		return nil, fmt.Errorf("upstream 503")
	}

	f.drive(t, ActionStart)

	rec := f.record(t)
	if rec.Status != itinerary.StatusFailed {
		t.Fatalf("status = %q, want failed", rec.Status)
	}
	if !strings.Contains(rec.ErrorMessage, "summary generation failed after 3 attempts") {
		t.Fatalf("error message = %q", rec.ErrorMessage)
	}
	if ai.calls != 3 {
		t.Fatalf("model calls = %d, want 3", ai.calls)
	}
	if !f.notifier.has(sse.EventGenerationFailed) {
		t.Fatalf("failed event never published")
	}
}

func TestSummaryRetrySucceedsOnThirdAttempt(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 1)
	attempt := 0
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			attempt++
			if attempt < 3 {
				// Malformed output retries the same way provider errors do.
				return map[string]any{"overview": "no title"}, nil
			}
			return summaryOutput("Old Town"), nil
		}
		return dayOutput("Old Town", f.placeID), nil
	}

	f.drive(t, ActionStart)

	rec := f.record(t)
	if rec.Status != itinerary.StatusCompleted {
		t.Fatalf("status = %q, want completed (error_message=%q)", rec.Status, rec.ErrorMessage)
	}
	if rec.RetryCount != 0 {
		t.Fatalf("retry_count = %d, want 0 after recovery", rec.RetryCount)
	}
}

func TestBadDayIsParkedAndRunEndsFailed(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 3)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("Alfama", "Belem", "Sintra"), nil
		}
		if strings.Contains(user, "Plan day 2 ") {
			// Day 2 always comes back without a usable timeline.
			return map[string]any{"title": "Belem", "timeline": []any{}}, nil
		}
		return dayOutput("A day out", f.placeID), nil
	}

	f.drive(t, ActionStart)

	rec := f.record(t)
	if rec.Status != itinerary.StatusFailed {
		t.Fatalf("status = %q, want failed while other days still land", rec.Status)
	}
	assertPartition(t, rec)

	failed := FailedDaysFromJSON(rec.FailedDays)
	if len(failed) != 1 || failed[0].DayNumber != 2 {
		t.Fatalf("failed days = %+v, want day 2 only", failed)
	}
	if failed[0].Attempts != 3 {
		t.Fatalf("failed day attempts = %d, want 3", failed[0].Attempts)
	}
	if failed[0].LastAttemptAt == nil {
		t.Fatalf("failed day missing last attempt timestamp")
	}
	if !strings.Contains(rec.ErrorMessage, "days 2 failed after 3 attempts") {
		t.Fatalf("error message = %q", rec.ErrorMessage)
	}

	if got := DaySetFromJSON(rec.CompletedDays); len(got) != 2 {
		t.Fatalf("completed days = %v, want [1 3]", got)
	}
	if row, err := f.days.GetByTripAndDay(dbctx.Context{Ctx: context.Background()}, f.trip.ID, 2); err == nil && row != nil {
		t.Fatalf("failed day 2 should have no stored row")
	}
	if !f.notifier.has(sse.EventGenerationFailed) {
		t.Fatalf("expected failed event for a run with a parked day")
	}
}

func TestRequeuedDayCompletesTheRun(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 3)
	dayTwoBroken := true
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("Alfama", "Belem", "Sintra"), nil
		}
		if dayTwoBroken && strings.Contains(user, "Plan day 2 ") {
			return map[string]any{"title": "Belem", "timeline": []any{}}, nil
		}
		return dayOutput("A day out", f.placeID), nil
	}

	f.drive(t, ActionStart)
	if rec := f.record(t); rec.Status != itinerary.StatusFailed {
		t.Fatalf("status = %q, want failed before the retry", rec.Status)
	}

	// The control plane moves the parked day back to pending before
	// dispatching a retry invocation.
	dayTwoBroken = false
	ok, err := f.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: context.Background()}, f.trip.ID,
		[]string{itinerary.StatusFailed}, map[string]interface{}{
			"status":        itinerary.StatusGenerating,
			"pending_days":  mustJSON([]int{2}),
			"failed_days":   mustJSON([]types.FailedDay{}),
			"retry_count":   0,
			"error_message": "",
		})
	if err != nil || !ok {
		t.Fatalf("requeue CAS: ok=%v err=%v", ok, err)
	}
	f.drive(t, ActionRetry)

	rec := f.record(t)
	if rec.Status != itinerary.StatusCompleted {
		t.Fatalf("status = %q, want completed after the retry", rec.Status)
	}
	assertPartition(t, rec)
	if got := DaySetFromJSON(rec.CompletedDays); len(got) != 3 {
		t.Fatalf("completed days = %v, want all three", got)
	}
	if rec.ErrorMessage != "" {
		t.Fatalf("error message = %q, want empty after a clean retry", rec.ErrorMessage)
	}
	row, err := f.days.GetByTripAndDay(dbctx.Context{Ctx: context.Background()}, f.trip.ID, 2)
	if err != nil || row == nil {
		t.Fatalf("retried day 2 row missing: %v", err)
	}
	if !f.notifier.has(sse.EventGenerationCompleted) {
		t.Fatalf("expected completed event after the retry")
	}
}

func TestAllDaysFailedFailsRun(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 2)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("One", "Two"), nil
		}
		return nil, fmt.Errorf("upstream 500")
	}

	f.drive(t, ActionStart)

	rec := f.record(t)
	if rec.Status != itinerary.StatusFailed {
		t.Fatalf("status = %q, want failed when no day completed", rec.Status)
	}
	assertPartition(t, rec)
	if got := FailedDaysFromJSON(rec.FailedDays); len(got) != 2 {
		t.Fatalf("failed days = %+v, want both days", got)
	}
}

func TestPauseWinsTheWriteRaceAndChainStops(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 3)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("Alfama", "Belem", "Sintra"), nil
		}
		return dayOutput("A day out", f.placeID), nil
	}
	ctx := context.Background()

	// Summary step hands over to the day phase.
	next, err := f.orch.Step(ctx, Invocation{TripID: f.trip.ID, Action: ActionStart})
	if err != nil {
		t.Fatalf("summary step: %v", err)
	}
	if next == nil || next.Action != ActionContinue {
		t.Fatalf("summary step returned %+v, want continue", next)
	}

	// First day lands.
	if next, err = f.orch.Step(ctx, *next); err != nil {
		t.Fatalf("day step: %v", err)
	}

	// A pause request CASes the record out from under the chain.
	ok, err := f.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, f.trip.ID,
		itinerary.ActiveStatuses, map[string]interface{}{"status": itinerary.StatusPaused})
	if err != nil || !ok {
		t.Fatalf("pause CAS: ok=%v err=%v", ok, err)
	}

	// The in-flight invocation observes the pause and stops cleanly.
	next, err = f.orch.Step(ctx, *next)
	if err != nil {
		t.Fatalf("paused step: %v", err)
	}
	if next != nil {
		t.Fatalf("chain continued past pause with %+v", next)
	}

	rec := f.record(t)
	if rec.Status != itinerary.StatusPaused {
		t.Fatalf("status = %q, want paused", rec.Status)
	}
	assertPartition(t, rec)
	if got := DaySetFromJSON(rec.PendingDays); len(got) != 2 {
		t.Fatalf("pending days = %v, want days 2 and 3 still pending", got)
	}
	if !f.notifier.has(sse.EventGenerationPaused) {
		t.Fatalf("paused event never published")
	}

	// Resume continues from where the run stopped, without redoing day 1.
	callsBefore := ai.calls
	ok, err = f.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, f.trip.ID,
		[]string{itinerary.StatusPaused}, map[string]interface{}{"status": itinerary.StatusGenerating})
	if err != nil || !ok {
		t.Fatalf("resume CAS: ok=%v err=%v", ok, err)
	}
	f.drive(t, ActionResume)

	rec = f.record(t)
	if rec.Status != itinerary.StatusCompleted {
		t.Fatalf("status after resume = %q, want completed", rec.Status)
	}
	if ai.calls-callsBefore != 2 {
		t.Fatalf("resume made %d model calls, want 2 (days 2 and 3)", ai.calls-callsBefore)
	}
}

func TestPauseDuringDayCallClearsCurrentDay(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 3)
	ctx := context.Background()
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("Alfama", "Belem", "Sintra"), nil
		}
		// A pause lands while this day's call is in flight.
		ok, err := f.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, f.trip.ID,
			itinerary.ActiveStatuses, map[string]interface{}{"status": itinerary.StatusPaused})
		if err != nil || !ok {
			return nil, fmt.Errorf("pause CAS: ok=%v err=%v", ok, err)
		}
		return dayOutput("A day out", f.placeID), nil
	}

	next, err := f.orch.Step(ctx, Invocation{TripID: f.trip.ID, Action: ActionStart})
	if err != nil || next == nil {
		t.Fatalf("summary step: next=%v err=%v", next, err)
	}
	next, err = f.orch.Step(ctx, *next)
	if err != nil {
		t.Fatalf("day step: %v", err)
	}
	if next != nil {
		t.Fatalf("chain continued past pause with %+v", next)
	}

	rec := f.record(t)
	if rec.Status != itinerary.StatusPaused {
		t.Fatalf("status = %q, want paused", rec.Status)
	}
	if rec.CurrentDay != nil {
		t.Fatalf("paused record still holds day %d in flight", *rec.CurrentDay)
	}
	assertPartition(t, rec)
	if got := DaySetFromJSON(rec.PendingDays); len(got) != 3 {
		t.Fatalf("pending days = %v, want the interrupted day still pending", got)
	}
}

func TestStaleStartInvocationSkipsFinishedSummary(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 2)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		if schemaName == "trip_summary" {
			return summaryOutput("One", "Two"), nil
		}
		return dayOutput("A day out", f.placeID), nil
	}
	ctx := context.Background()

	if _, err := f.orch.Step(ctx, Invocation{TripID: f.trip.ID, Action: ActionStart}); err != nil {
		t.Fatalf("summary step: %v", err)
	}
	callsAfterSummary := ai.calls

	// A duplicate start delivery must not redo the summary call.
	next, err := f.orch.Step(ctx, Invocation{TripID: f.trip.ID, Action: ActionStart})
	if err != nil {
		t.Fatalf("duplicate start: %v", err)
	}
	if next == nil || next.Action != ActionContinue {
		t.Fatalf("duplicate start returned %+v, want continue", next)
	}
	if ai.calls != callsAfterSummary {
		t.Fatalf("duplicate start made a model call")
	}
}

func TestStepOnTerminalRecordIsNoop(t *testing.T) {
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 1)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		return summaryOutput("Only day"), nil
	}
	ctx := context.Background()

	ok, err := f.gens.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, f.trip.ID,
		[]string{itinerary.StatusGeneratingSummary},
		map[string]interface{}{"status": itinerary.StatusCompleted})
	if err != nil || !ok {
		t.Fatalf("seed completed status: ok=%v err=%v", ok, err)
	}

	next, err := f.orch.Step(ctx, Invocation{TripID: f.trip.ID, Action: ActionContinue})
	if err != nil {
		t.Fatalf("step on terminal record: %v", err)
	}
	if next != nil {
		t.Fatalf("terminal record produced follow-up %+v", next)
	}
	if ai.calls != 0 {
		t.Fatalf("terminal record triggered a model call")
	}
}
