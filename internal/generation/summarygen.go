package generation

import (
	"context"
	"fmt"

	"github.com/voyplan/voyplan-backend/internal/clients/openai"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/generation/prompts"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type SummarizeDeps struct {
	Log *logger.Logger
	AI  openai.Client
	Cfg Config
}

type SummarizeInput struct {
	Trip      *types.Trip
	Prefs     types.PreferenceSnapshot
	TotalDays int
}

// GenerateSummary produces the plan summary that seeds every day generation
// call: a trip title, an overview, one themed title per day, and a few
// accommodation suggestions.
func GenerateSummary(ctx context.Context, deps SummarizeDeps, in SummarizeInput) (*types.PlanSummary, openai.Usage, error) {
	usage := openai.Usage{}
	if deps.Log == nil || deps.AI == nil {
		return nil, usage, fmt.Errorf("generate_summary: missing deps")
	}
	if in.Trip == nil {
		return nil, usage, fmt.Errorf("generate_summary: missing trip")
	}
	if in.TotalDays <= 0 {
		in.TotalDays = in.Trip.TotalDays()
	}

	pin := promptInput(in.Trip, in.Prefs, in.TotalDays)
	pin.TripTitle = in.Trip.Title

	prompt, err := prompts.Build(prompts.PromptTripSummary, pin)
	if err != nil {
		return nil, usage, err
	}

	callCtx, cancel := context.WithTimeout(ctx, deps.Cfg.SummaryTimeout())
	defer cancel()

	out, usage, err := deps.AI.GenerateJSON(callCtx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		return nil, usage, err
	}

	summary, err := summaryFromOutput(out, in.TotalDays)
	if err != nil {
		return nil, usage, err
	}

	deps.Log.Info("Plan summary generated",
		"trip_id", in.Trip.ID,
		"title", summary.Title,
		"day_titles", len(summary.DayTitles),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens)
	return summary, usage, nil
}
