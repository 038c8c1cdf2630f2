package prompts

import "fmt"

func init() {
	MustRegister(Spec{
		Name:       PromptTripSummary,
		Version:    2,
		SchemaName: "trip_summary",
		Schema:     TripSummarySchema,
		System: `You are a travel planner producing the high-level shape of a multi-day trip.
Return strictly valid JSON matching the schema. One day title per trip day, in order.
Day titles must be short (under 8 words) and describe the theme of the day, not a full schedule.`,
		User: `Plan the outline of a trip.

Destination: {{.Destination}}
Dates: {{.StartDate}} to {{.EndDate}} ({{.TotalDays}} days)
Travelers: {{.Travelers}}
Pace: {{.Pace}}
Budget: {{.BudgetLevel}}
Interests: {{.Interests}}
Dietary needs: {{.Dietary}}
Mobility: {{.Mobility}}
Notes: {{.Notes}}

Produce exactly {{.TotalDays}} day titles plus a trip title, a short overview,
and 2-3 accommodation suggestions for the destination.`,
		Validators: []Validator{
			func(in Input) error {
				if in.TotalDays <= 0 {
					return fmt.Errorf("total days required")
				}
				return nil
			},
		},
	})

	MustRegister(Spec{
		Name:       PromptItineraryDay,
		Version:    3,
		SchemaName: "itinerary_day",
		Schema:     ItineraryDaySchema,
		System: `You are a travel planner filling in one day of an itinerary.
Return strictly valid JSON matching the schema.
Timeline entries are ordered and non-overlapping, times in 24h HH:MM.
{{if .PlacesCatalogJSON}}When an activity or meal happens at one of the catalog places below, set
suggested_place_id to that place's id copied verbatim. If no catalog place fits,
set suggested_place_id to an empty string. Never invent identifiers.{{else}}Leave suggested_place_id empty everywhere.{{end}}`,
		User: `Trip: {{.TripTitle}} — {{.Destination}}, {{.TotalDays}} days, {{.Travelers}} travelers.
Overview: {{.Overview}}

Plan day {{.DayNumber}} ({{.DayDate}}): "{{.DayTitle}}"
{{if .PreviousDaySummary}}Previous day covered: {{.PreviousDaySummary}}{{end}}
{{if .NextDayTitle}}The next day will be: "{{.NextDayTitle}}" — avoid overlap.{{end}}

Pace: {{.Pace}}
Budget: {{.BudgetLevel}}
Interests: {{.Interests}}
Dietary needs: {{.Dietary}}
Mobility: {{.Mobility}}

{{if .PlacesCatalogJSON}}Catalog of real places (id, name, type, rating):
{{.PlacesCatalogJSON}}{{end}}`,
		Validators: []Validator{
			func(in Input) error {
				if in.DayNumber <= 0 {
					return fmt.Errorf("day number required")
				}
				return nil
			},
		},
	})
}
