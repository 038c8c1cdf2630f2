package generation

import (
	"context"
	"testing"
	"time"

	"github.com/voyplan/voyplan-backend/internal/data/repos/testutil"
	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
)

func TestDispatchDoesNotBlockWhenWorkersAreBusy(t *testing.T) {
	t.Setenv("GENERATION_MAX_CONCURRENT_RUNS", "1")
	t.Setenv("GENERATION_QUEUE_SIZE", "1")

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	ai := &fakeAI{}
	f := newOrchFixture(t, ai, 1)
	ai.generate = func(schemaName, user string) (map[string]any, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		if schemaName == "trip_summary" {
			return summaryOutput("Alfama"), nil
		}
		return dayOutput("A day out", f.placeID), nil
	}

	sched := NewInlineScheduler(f.orch, testutil.Logger(t))
	ctx := context.Background()

	if err := sched.Dispatch(ctx, Invocation{TripID: f.trip.ID, Action: ActionStart}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker never picked up the first chain")
	}

	// The lone worker is parked inside a model call; the next dispatch must
	// land in the queue and return immediately.
	done := make(chan error, 1)
	go func() {
		done <- sched.Dispatch(ctx, Invocation{TripID: f.trip.ID, Action: ActionContinue})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("queued dispatch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch blocked on a saturated worker pool")
	}

	// The queue of one is now full: a further dispatch is refused, never
	// blocked.
	if err := sched.Dispatch(ctx, Invocation{TripID: f.trip.ID, Action: ActionContinue}); err == nil {
		t.Fatalf("expected a queue-full error")
	}

	close(release)
	sched.Wait()

	if rec := f.record(t); rec.Status != itinerary.StatusCompleted {
		t.Fatalf("status = %q, want completed after drain", rec.Status)
	}
}
