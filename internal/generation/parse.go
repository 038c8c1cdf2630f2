package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/generation/linking"
)

func metricsFromJSON(raw datatypes.JSON) *linking.Metrics {
	out := linking.NewMetrics()
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, out)
	return out
}

func mustJSON(v any) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}

func stringFromAny(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func stringSliceFromAny(v any) []string {
	if v == nil {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		s := stringFromAny(v)
		if s == "" {
			return nil
		}
		return []string{s}
	}
	out := make([]string, 0, len(arr))
	for _, x := range arr {
		s := stringFromAny(x)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mapSliceFromAny(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, x := range arr {
		if m, ok := x.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func timelineFromJSON(raw datatypes.JSON) []types.TimelineEntry {
	var out []types.TimelineEntry
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func mealsFromJSON(raw datatypes.JSON) []types.MealSuggestion {
	var out []types.MealSuggestion
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// summaryFromOutput maps the trip_summary structured output onto PlanSummary.
func summaryFromOutput(out map[string]any, totalDays int) (*types.PlanSummary, error) {
	if out == nil {
		return nil, fmt.Errorf("%w: empty summary payload", ErrMalformedOutput)
	}
	s := &types.PlanSummary{
		Title:     stringFromAny(out["title"]),
		Overview:  stringFromAny(out["overview"]),
		DayTitles: stringSliceFromAny(out["day_titles"]),
	}
	if s.Title == "" {
		return nil, fmt.Errorf("%w: summary missing title", ErrMalformedOutput)
	}
	if len(s.DayTitles) == 0 {
		return nil, fmt.Errorf("%w: summary missing day titles", ErrMalformedOutput)
	}
	// The model occasionally over- or under-produces titles; clamp to the
	// trip length so downstream indexing stays safe.
	if totalDays > 0 && len(s.DayTitles) > totalDays {
		s.DayTitles = s.DayTitles[:totalDays]
	}
	for len(s.DayTitles) < totalDays {
		s.DayTitles = append(s.DayTitles, fmt.Sprintf("Day %d", len(s.DayTitles)+1))
	}
	for _, m := range mapSliceFromAny(out["accommodations"]) {
		acc := types.Accommodation{
			Name:     stringFromAny(m["name"]),
			Area:     stringFromAny(m["area"]),
			Style:    stringFromAny(m["style"]),
			Reason:   stringFromAny(m["reason"]),
			PriceTip: stringFromAny(m["price_tip"]),
		}
		if acc.Name != "" {
			s.Accommodations = append(s.Accommodations, acc)
		}
	}
	return s, nil
}

// dayFromOutput maps the itinerary_day structured output onto the timeline
// and meal shapes stored with a day. Place linking happens afterwards; here
// suggested_place_id is carried through verbatim.
func dayFromOutput(out map[string]any) (title string, timeline []types.TimelineEntry, meals []types.MealSuggestion, notes, transport, overnight string, err error) {
	if out == nil {
		err = fmt.Errorf("%w: empty day payload", ErrMalformedOutput)
		return
	}
	title = stringFromAny(out["title"])
	notes = stringFromAny(out["notes"])
	transport = stringFromAny(out["transport"])
	overnight = stringFromAny(out["overnight"])

	for _, m := range mapSliceFromAny(out["timeline"]) {
		entry := types.TimelineEntry{
			StartTime:        stringFromAny(m["start_time"]),
			EndTime:          stringFromAny(m["end_time"]),
			Activity:         stringFromAny(m["activity"]),
			Description:      stringFromAny(m["description"]),
			SuggestedPlaceID: stringFromAny(m["suggested_place_id"]),
		}
		if entry.Activity != "" {
			timeline = append(timeline, entry)
		}
	}
	if len(timeline) == 0 {
		err = fmt.Errorf("%w: day has no timeline entries", ErrMalformedOutput)
		return
	}

	for _, m := range mapSliceFromAny(out["meals"]) {
		meal := types.MealSuggestion{
			Meal:             strings.ToLower(stringFromAny(m["meal"])),
			Name:             stringFromAny(m["name"]),
			Description:      stringFromAny(m["description"]),
			SuggestedPlaceID: stringFromAny(m["suggested_place_id"]),
		}
		if meal.Name != "" {
			meals = append(meals, meal)
		}
	}
	return
}
