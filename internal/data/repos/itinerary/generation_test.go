package itinerary

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/voyplan/voyplan-backend/internal/data/repos/testutil"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	domainitinerary "github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/platform/dbctx"
)

func jsonOf(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(b)
}

func TestUpdateFieldsWhenStatusGuardsWrites(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	trip := testutil.SeedTrip(t, ctx, db, "Porto", 2)

	repo := NewGenerationRepo(db, testutil.Logger(t))
	rec := &types.Generation{
		ID:          uuid.New(),
		TripID:      trip.ID,
		Status:      domainitinerary.StatusGenerating,
		TotalDays:   2,
		PendingDays: jsonOf(t, []int{1, 2}),
	}
	if _, err := repo.Create(dbctx.Context{Ctx: ctx}, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Guard mismatch: no write, no error.
	ok, err := repo.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, trip.ID,
		[]string{domainitinerary.StatusPaused},
		map[string]interface{}{"retry_count": 9})
	if err != nil {
		t.Fatalf("guarded update: %v", err)
	}
	if ok {
		t.Fatalf("guard matched a status it should not have")
	}
	got, err := repo.GetByTripID(dbctx.Context{Ctx: ctx}, trip.ID)
	if err != nil || got == nil {
		t.Fatalf("reload: rec=%v err=%v", got, err)
	}
	if got.RetryCount != 0 {
		t.Fatalf("retry_count = %d after rejected write", got.RetryCount)
	}

	// Guard match: write lands.
	ok, err = repo.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, trip.ID,
		[]string{domainitinerary.StatusGeneratingSummary, domainitinerary.StatusGenerating},
		map[string]interface{}{
			"status":      domainitinerary.StatusPaused,
			"retry_count": 1,
		})
	if err != nil {
		t.Fatalf("guarded update: %v", err)
	}
	if !ok {
		t.Fatalf("guard rejected the record's actual status")
	}
	got, err = repo.GetByTripID(dbctx.Context{Ctx: ctx}, trip.ID)
	if err != nil || got == nil {
		t.Fatalf("reload: rec=%v err=%v", got, err)
	}
	if got.Status != domainitinerary.StatusPaused || got.RetryCount != 1 {
		t.Fatalf("status=%q retry_count=%d after accepted write", got.Status, got.RetryCount)
	}

	// Second pause attempt loses: the record already left the allowed set.
	ok, err = repo.UpdateFieldsWhenStatus(dbctx.Context{Ctx: ctx}, trip.ID,
		domainitinerary.ActiveStatuses,
		map[string]interface{}{"status": domainitinerary.StatusPaused})
	if err != nil {
		t.Fatalf("guarded update: %v", err)
	}
	if ok {
		t.Fatalf("pause CAS succeeded twice")
	}
}

func TestUpsertByTripAndDayOverwritesInPlace(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	trip := testutil.SeedTrip(t, ctx, db, "Porto", 2)

	repo := NewDayRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	first := &types.ItineraryDay{
		TripID:    trip.ID,
		DayNumber: 1,
		Date:      trip.StartDate,
		Title:     "Ribeira",
		Timeline:  jsonOf(t, []types.TimelineEntry{{Activity: "Walk the riverfront"}}),
	}
	if err := repo.UpsertByTripAndDay(dbc, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &types.ItineraryDay{
		TripID:    trip.ID,
		DayNumber: 1,
		Date:      trip.StartDate,
		Title:     "Ribeira, regenerated",
		Timeline:  jsonOf(t, []types.TimelineEntry{{Activity: "Port cellar tour"}}),
	}
	if err := repo.UpsertByTripAndDay(dbc, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := repo.ListByTripID(dbc, trip.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("stored %d rows for (trip, day 1), want 1", len(rows))
	}
	if rows[0].Title != "Ribeira, regenerated" {
		t.Fatalf("title = %q, want the regenerated row", rows[0].Title)
	}
	var entries []types.TimelineEntry
	if err := json.Unmarshal(rows[0].Timeline, &entries); err != nil || len(entries) != 1 {
		t.Fatalf("timeline = %s (err=%v)", rows[0].Timeline, err)
	}
	if entries[0].Activity != "Port cellar tour" {
		t.Fatalf("timeline not overwritten: %+v", entries)
	}
}

func TestModelsMigrateAndStampRows(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	trip := testutil.SeedTrip(t, ctx, db, "Porto", 2)

	repo := NewGenerationRepo(db, testutil.Logger(t))
	rec := &types.Generation{
		TripID:      trip.ID,
		Status:      domainitinerary.StatusGeneratingSummary,
		TotalDays:   2,
		PendingDays: jsonOf(t, []int{1, 2}),
	}
	if _, err := repo.Create(dbctx.Context{Ctx: ctx}, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByTripID(dbctx.Context{Ctx: ctx}, trip.ID)
	if err != nil || got == nil {
		t.Fatalf("reload: rec=%v err=%v", got, err)
	}
	if got.ID == uuid.Nil {
		t.Fatalf("create left a nil id")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not stamped: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}
