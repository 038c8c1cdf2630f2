package generation

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	types "github.com/voyplan/voyplan-backend/internal/domain"
	"github.com/voyplan/voyplan-backend/internal/generation/prompts"
)

const promptDateLayout = "2006-01-02"

// promptInput assembles the shared trip + preference fields every prompt
// starts from. Generators layer their own fields on top.
func promptInput(trip *types.Trip, prefs types.PreferenceSnapshot, totalDays int) prompts.Input {
	in := prompts.Input{
		Destination: trip.Destination,
		StartDate:   trip.StartDate.Format(promptDateLayout),
		EndDate:     trip.EndDate.Format(promptDateLayout),
		TotalDays:   totalDays,
		Travelers:   trip.Travelers,
		Pace:        prefs.Pace,
		BudgetLevel: prefs.BudgetLevel,
		Interests:   strings.Join(prefs.Interests, ", "),
		Dietary:     strings.Join(prefs.Dietary, ", "),
		Mobility:    prefs.Mobility,
		Notes:       prefs.Notes,
	}
	return in
}

// catalogPromptJSON renders the catalog as one compact JSON object per line,
// the shape the day prompt asks the model to pick suggested_place_id from.
func catalogPromptJSON(catalog types.Catalog) string {
	entries := catalog.All()
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		line, err := json.Marshal(map[string]any{
			"id":          e.ID,
			"name":        e.Name,
			"type":        e.Type,
			"rating":      e.Rating,
			"price_level": e.PriceLevel,
		})
		if err != nil {
			continue
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// Snapshot decoding for fields the generation record carries as JSON. Each
// helper tolerates empty or missing payloads so a partially populated record
// never aborts a run.

func prefsFromJSON(raw datatypes.JSON) types.PreferenceSnapshot {
	var out types.PreferenceSnapshot
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func catalogFromJSON(raw datatypes.JSON) types.Catalog {
	out := types.Catalog{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func planSummaryFromJSON(raw datatypes.JSON) *types.PlanSummary {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil
	}
	var out types.PlanSummary
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	if strings.TrimSpace(out.Title) == "" && len(out.DayTitles) == 0 {
		return nil
	}
	return &out
}
