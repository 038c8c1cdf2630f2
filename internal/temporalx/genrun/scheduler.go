package genrun

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/voyplan/voyplan-backend/internal/generation"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/temporalx"
)

// Scheduler dispatches invocation chains onto Temporal. SignalWithStart keeps
// exactly one workflow execution per trip, so duplicate control actions
// serialize instead of racing.
type Scheduler struct {
	log *logger.Logger
	tc  temporalsdkclient.Client
}

func NewScheduler(tc temporalsdkclient.Client, baseLog *logger.Logger) (*Scheduler, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	return &Scheduler{
		log: baseLog.With("component", "TemporalScheduler"),
		tc:  tc,
	}, nil
}

func (s *Scheduler) Dispatch(ctx context.Context, inv generation.Invocation) error {
	cfg := temporalx.LoadConfig()
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:        WorkflowID(inv.TripID),
		TaskQueue: cfg.TaskQueue,
	}
	run, err := s.tc.SignalWithStartWorkflow(ctx, opts.ID, SignalInvoke, inv, opts, WorkflowName, (*generation.Invocation)(nil))
	if err != nil {
		return fmt.Errorf("genrun dispatch: %w", err)
	}
	s.log.Debug("Invocation dispatched", "trip_id", inv.TripID, "action", inv.Action, "run_id", run.GetRunID())
	return nil
}
