package genrun

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/voyplan/voyplan-backend/internal/generation"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type Activities struct {
	Log  *logger.Logger
	Orch *generation.Orchestrator
}

// Step runs one orchestrator step. Pipeline-level failures (a day exhausting
// its retries, a pause) are recorded on the generation record and come back
// as normal results; only infrastructure errors surface to the workflow.
func (a *Activities) Step(ctx context.Context, inv generation.Invocation) (StepResult, error) {
	res := StepResult{}
	if a == nil || a.Orch == nil {
		return res, fmt.Errorf("genrun: activity not configured")
	}

	stopHB := startHeartbeat(ctx)
	defer stopHB()

	next, err := a.Orch.Step(ctx, inv)
	if err != nil {
		return res, err
	}
	if next == nil {
		res.Done = true
		return res, nil
	}
	res.Next = *next
	return res, nil
}

func startHeartbeat(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		hb := time.NewTicker(10 * time.Second)
		defer hb.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-hb.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}
