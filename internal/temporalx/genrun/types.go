package genrun

import (
	"strings"

	"github.com/google/uuid"

	"github.com/voyplan/voyplan-backend/internal/generation"
)

const (
	WorkflowName = "itinerary_generation"
	ActivityStep = "itinerary_generation_step"
	SignalInvoke = "generation_invoke"
)

// StepResult is the activity output for one orchestrator step. Next is the
// follow-up invocation; Done means the run reached a stable state.
type StepResult struct {
	Done bool                  `json:"done"`
	Next generation.Invocation `json:"next,omitempty"`
}

// WorkflowID returns the deterministic per-trip workflow id, which is what
// serializes all generation work for a trip.
func WorkflowID(tripID uuid.UUID) string {
	return "generation:" + strings.ToLower(tripID.String())
}
