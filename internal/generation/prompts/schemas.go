package prompts

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func stringSchema() map[string]any { return map[string]any{"type": "string"} }

func stringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func arraySchema(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func enumSchema(values ...string) map[string]any {
	arr := make([]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return map[string]any{"type": "string", "enum": arr}
}

// TripSummarySchema is the structured output contract of the summary step.
func TripSummarySchema() map[string]any {
	accommodation := objectSchema(map[string]any{
		"name":      stringSchema(),
		"area":      stringSchema(),
		"style":     stringSchema(),
		"reason":    stringSchema(),
		"price_tip": stringSchema(),
	}, []string{"name", "area", "style", "reason", "price_tip"})

	return objectSchema(map[string]any{
		"title":          stringSchema(),
		"overview":       stringSchema(),
		"day_titles":     stringArraySchema(),
		"accommodations": arraySchema(accommodation),
	}, []string{"title", "overview", "day_titles", "accommodations"})
}

// ItineraryDaySchema is the structured output contract of the day step.
// suggested_place_id must be copied verbatim from the supplied catalog or
// left empty; the linker repairs anything else afterwards.
func ItineraryDaySchema() map[string]any {
	timelineEntry := objectSchema(map[string]any{
		"start_time":         stringSchema(),
		"end_time":           stringSchema(),
		"activity":           stringSchema(),
		"description":        stringSchema(),
		"suggested_place_id": stringSchema(),
	}, []string{"start_time", "end_time", "activity", "description", "suggested_place_id"})

	meal := objectSchema(map[string]any{
		"meal":               enumSchema("breakfast", "lunch", "dinner"),
		"name":               stringSchema(),
		"description":        stringSchema(),
		"suggested_place_id": stringSchema(),
	}, []string{"meal", "name", "description", "suggested_place_id"})

	return objectSchema(map[string]any{
		"title":     stringSchema(),
		"timeline":  arraySchema(timelineEntry),
		"meals":     arraySchema(meal),
		"notes":     stringSchema(),
		"transport": stringSchema(),
		"overnight": stringSchema(),
	}, []string{"title", "timeline", "meals", "notes", "transport", "overnight"})
}
