package genrun

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/voyplan/voyplan-backend/internal/generation"
)

// Workflow drives the invocation chains for one trip. Control actions arrive
// as signals (SignalWithStart keeps exactly one execution per trip); each
// chain runs the step activity until the run reaches a stable state, then the
// workflow waits briefly for a follow-up action and completes when none
// comes. pending carries an undrained invocation across continue-as-new.
func Workflow(ctx workflow.Context, pending *generation.Invocation) error {
	const (
		idleWait             = 30 * time.Second
		continueTickLimit    = 500
		continueHistoryLimit = 10000
	)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy:         nil, // model-call retries are tracked on the generation record
	})

	invCh := workflow.GetSignalChannel(ctx, SignalInvoke)
	ticks := 0

	var inv generation.Invocation
	if pending != nil {
		inv = *pending
	} else {
		invCh.Receive(ctx, &inv)
	}

	for {
		// Run one chain to a stable state.
		for {
			var out StepResult
			if err := workflow.ExecuteActivity(ctx, ActivityStep, inv).Get(ctx, &out); err != nil {
				return err
			}
			ticks++
			if out.Done {
				break
			}
			inv = out.Next
			if shouldContinueAsNew(ctx, ticks, continueTickLimit, continueHistoryLimit) {
				return workflow.NewContinueAsNewError(ctx, Workflow, &inv)
			}
		}

		// Chain finished. Take the next control action if one is queued or
		// arrives shortly, otherwise complete; a later action signal-starts a
		// fresh execution under the same id.
		if !receiveWithin(ctx, invCh, idleWait, &inv) {
			return nil
		}
		if shouldContinueAsNew(ctx, ticks, continueTickLimit, continueHistoryLimit) {
			return workflow.NewContinueAsNewError(ctx, Workflow, &inv)
		}
	}
}

func receiveWithin(ctx workflow.Context, ch workflow.ReceiveChannel, maxWait time.Duration, out *generation.Invocation) bool {
	received := false
	timer := workflow.NewTimer(ctx, maxWait)
	sel := workflow.NewSelector(ctx)
	sel.AddReceive(ch, func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, out)
		received = true
	})
	sel.AddFuture(timer, func(f workflow.Future) {})
	sel.Select(ctx)
	return received
}

func shouldContinueAsNew(ctx workflow.Context, ticks int, maxTicks int, maxHistory int) bool {
	if maxTicks > 0 && ticks >= maxTicks {
		return true
	}
	info := workflow.GetInfo(ctx)
	if info == nil || maxHistory <= 0 {
		return false
	}
	return info.GetCurrentHistoryLength() >= maxHistory
}
