package generation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/voyplan/voyplan-backend/internal/platform/envutil"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

// Actions a run can be invoked with. Start begins the summary phase on a
// freshly initialized record; the rest enter the day phase.
const (
	ActionStart    = "start"
	ActionContinue = "continue"
	ActionRetry    = "retry"
	ActionResume   = "resume"
)

// Invocation is one scheduled unit of generation work for a trip.
type Invocation struct {
	TripID uuid.UUID `json:"trip_id"`
	Action string    `json:"action"`
}

// Scheduler dispatches an invocation chain for a trip. Dispatch is
// fire-and-forget: it returns once the chain is accepted, not when the run
// finishes.
type Scheduler interface {
	Dispatch(ctx context.Context, inv Invocation) error
}

// InlineScheduler drives invocation chains on a fixed pool of in-process
// workers fed by a buffered queue. Worker count is capped so a burst of
// trips cannot exhaust the provider; the queue keeps Dispatch non-blocking
// even when every worker is mid-run.
type InlineScheduler struct {
	log       *logger.Logger
	orch      *Orchestrator
	queue     chan Invocation
	group     *errgroup.Group
	closeOnce sync.Once
}

func NewInlineScheduler(orch *Orchestrator, baseLog *logger.Logger) *InlineScheduler {
	s := &InlineScheduler{
		log:   baseLog.With("component", "InlineScheduler"),
		orch:  orch,
		queue: make(chan Invocation, envutil.Int("GENERATION_QUEUE_SIZE", 64)),
		group: &errgroup.Group{},
	}
	workers := envutil.Int("GENERATION_MAX_CONCURRENT_RUNS", 4)
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.group.Go(func() error {
			// Detached from any request context: chains outlive the HTTP
			// calls that start them.
			for inv := range s.queue {
				s.run(context.Background(), inv)
			}
			return nil
		})
	}
	return s
}

func (s *InlineScheduler) Dispatch(_ context.Context, inv Invocation) error {
	select {
	case s.queue <- inv:
		return nil
	default:
		// The persisted record is the source of truth; a dropped dispatch
		// stalls the run until a manual resume or retry.
		return fmt.Errorf("generation queue full, dropped %s for trip %s", inv.Action, inv.TripID)
	}
}

func (s *InlineScheduler) run(ctx context.Context, inv Invocation) {
	for {
		next, err := s.orch.Step(ctx, inv)
		if err != nil {
			s.log.Error("Invocation chain aborted", "trip_id", inv.TripID, "action", inv.Action, "error", err)
			return
		}
		if next == nil {
			return
		}
		inv = *next
	}
}

// Wait stops intake and blocks until every queued and in-flight chain
// drains. Used on shutdown; Dispatch must not be called after it.
func (s *InlineScheduler) Wait() {
	s.closeOnce.Do(func() { close(s.queue) })
	_ = s.group.Wait()
}
