package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/voyplan/voyplan-backend/internal/clients/openai"
	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/generation/linking"
	"github.com/voyplan/voyplan-backend/internal/generation/prompts"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type DayDeps struct {
	Log     *logger.Logger
	AI      openai.Client
	Matcher *linking.Matcher
	Cfg     Config
}

type DayInput struct {
	Trip      *types.Trip
	Prefs     types.PreferenceSnapshot
	Summary   *types.PlanSummary
	Catalog   types.Catalog
	DayNumber int

	// PreviousDaySummary is a one-line recap of the day already generated
	// before this one, used to avoid repeats; empty for day 1.
	PreviousDaySummary string
}

// GenerateDay produces one itinerary day: a prompt seeded from the plan
// summary, a structured completion, and place linking over every timeline
// entry and meal. The returned row is ready to upsert; it is not persisted
// here.
func GenerateDay(ctx context.Context, deps DayDeps, in DayInput) (*types.ItineraryDay, openai.Usage, error) {
	usage := openai.Usage{}
	if deps.Log == nil || deps.AI == nil || deps.Matcher == nil {
		return nil, usage, fmt.Errorf("generate_day: missing deps")
	}
	if in.Trip == nil {
		return nil, usage, fmt.Errorf("generate_day: missing trip")
	}
	if in.Summary == nil {
		return nil, usage, fmt.Errorf("generate_day: missing plan summary")
	}
	if in.DayNumber <= 0 {
		return nil, usage, fmt.Errorf("generate_day: invalid day number %d", in.DayNumber)
	}

	totalDays := in.Trip.TotalDays()
	pin := promptInput(in.Trip, in.Prefs, totalDays)
	pin.TripTitle = in.Summary.Title
	pin.Overview = in.Summary.Overview
	pin.DayNumber = in.DayNumber
	pin.DayDate = in.Trip.DateForDay(in.DayNumber).Format(promptDateLayout)
	pin.DayTitle = dayTitleAt(in.Summary, in.DayNumber)
	pin.NextDayTitle = dayTitleAt(in.Summary, in.DayNumber+1)
	pin.PreviousDaySummary = in.PreviousDaySummary
	pin.PlacesCatalogJSON = catalogPromptJSON(in.Catalog)

	prompt, err := prompts.Build(prompts.PromptItineraryDay, pin)
	if err != nil {
		return nil, usage, err
	}

	callCtx, cancel := context.WithTimeout(ctx, deps.Cfg.DayTimeout())
	defer cancel()

	out, usage, err := deps.AI.GenerateJSON(callCtx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		return nil, usage, err
	}

	title, timeline, meals, notes, transport, overnight, err := dayFromOutput(out)
	if err != nil {
		return nil, usage, err
	}
	if title == "" {
		title = pin.DayTitle
	}

	for i := range timeline {
		res := deps.Matcher.Resolve(timeline[i].SuggestedPlaceID, timeline[i].Activity)
		timeline[i].MatchConfidence = res.Confidence
		if res.Entry != nil {
			timeline[i].PlaceID = res.Entry.ID
		}
	}
	for i := range meals {
		res := deps.Matcher.Resolve(meals[i].SuggestedPlaceID, meals[i].Name)
		meals[i].MatchConfidence = res.Confidence
		if res.Entry != nil {
			meals[i].PlaceID = res.Entry.ID
		}
	}

	day := &types.ItineraryDay{
		TripID:    in.Trip.ID,
		DayNumber: in.DayNumber,
		Date:      in.Trip.DateForDay(in.DayNumber),
		Title:     title,
		Timeline:  mustJSON(timeline),
		Meals:     mustJSON(meals),
		Notes:     notes,
		Transport: transport,
		Overnight: overnight,
	}

	deps.Log.Info("Itinerary day generated",
		"trip_id", in.Trip.ID,
		"day", in.DayNumber,
		"timeline_entries", len(timeline),
		"meals", len(meals),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens)
	return day, usage, nil
}

func dayTitleAt(summary *types.PlanSummary, dayNumber int) string {
	if summary == nil || dayNumber <= 0 || dayNumber > len(summary.DayTitles) {
		return ""
	}
	return strings.TrimSpace(summary.DayTitles[dayNumber-1])
}

// DayRecap builds the one-line recap handed to the next day's prompt.
func DayRecap(day *types.ItineraryDay) string {
	if day == nil {
		return ""
	}
	timeline := timelineFromJSON(day.Timeline)
	acts := make([]string, 0, len(timeline))
	for _, e := range timeline {
		if a := strings.TrimSpace(e.Activity); a != "" {
			acts = append(acts, a)
		}
		if len(acts) == 4 {
			break
		}
	}
	recap := strings.TrimSpace(day.Title)
	if len(acts) > 0 {
		if recap != "" {
			recap += ": "
		}
		recap += strings.Join(acts, "; ")
	}
	return recap
}
