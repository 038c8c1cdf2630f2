package generation

import (
	"errors"
	"testing"
)

func TestSummaryFromOutputClampsAndPadsDayTitles(t *testing.T) {
	out := map[string]any{
		"title":      "Five days in Kyoto",
		"overview":   "Temples and tea.",
		"day_titles": []any{"Arrival", "Arashiyama", "Fushimi", "Gion", "Nara", "Extra", "Extra 2"},
	}
	s, err := summaryFromOutput(out, 5)
	if err != nil {
		t.Fatalf("summaryFromOutput: %v", err)
	}
	if len(s.DayTitles) != 5 {
		t.Fatalf("day titles = %v, want clamped to 5", s.DayTitles)
	}

	out["day_titles"] = []any{"Arrival", "Arashiyama"}
	s, err = summaryFromOutput(out, 5)
	if err != nil {
		t.Fatalf("summaryFromOutput: %v", err)
	}
	if len(s.DayTitles) != 5 {
		t.Fatalf("day titles = %v, want padded to 5", s.DayTitles)
	}
	if s.DayTitles[4] != "Day 5" {
		t.Fatalf("padded title = %q, want \"Day 5\"", s.DayTitles[4])
	}
}

func TestSummaryFromOutputRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		out  map[string]any
	}{
		{"nil payload", nil},
		{"missing title", map[string]any{"day_titles": []any{"One"}}},
		{"missing day titles", map[string]any{"title": "A trip"}},
		{"blank title", map[string]any{"title": "   ", "day_titles": []any{"One"}}},
	}
	for _, tc := range cases {
		if _, err := summaryFromOutput(tc.out, 1); !errors.Is(err, ErrMalformedOutput) {
			t.Fatalf("%s: err = %v, want ErrMalformedOutput", tc.name, err)
		}
	}
}

func TestDayFromOutputDropsBlankEntriesButKeepsTheRest(t *testing.T) {
	out := map[string]any{
		"title": "Market day",
		"timeline": []any{
			map[string]any{"activity": "  "},
			map[string]any{"start_time": "10:00", "activity": "Mercado da Ribeira", "suggested_place_id": "x"},
			"not an object",
		},
		"meals": []any{
			map[string]any{"meal": "Lunch", "name": "Time Out Market"},
			map[string]any{"meal": "dinner", "name": ""},
		},
		"transport": "metro",
	}
	title, timeline, meals, _, transport, _, err := dayFromOutput(out)
	if err != nil {
		t.Fatalf("dayFromOutput: %v", err)
	}
	if title != "Market day" || transport != "metro" {
		t.Fatalf("title=%q transport=%q", title, transport)
	}
	if len(timeline) != 1 || timeline[0].Activity != "Mercado da Ribeira" {
		t.Fatalf("timeline = %+v, want the one non-blank entry", timeline)
	}
	if len(meals) != 1 || meals[0].Meal != "lunch" {
		t.Fatalf("meals = %+v, want lowercased lunch only", meals)
	}
}

func TestDayFromOutputRequiresTimeline(t *testing.T) {
	for _, out := range []map[string]any{
		nil,
		{"title": "Empty"},
		{"title": "Empty", "timeline": []any{}},
		{"title": "Empty", "timeline": []any{map[string]any{"activity": ""}}},
	} {
		if _, _, _, _, _, _, err := dayFromOutput(out); !errors.Is(err, ErrMalformedOutput) {
			t.Fatalf("out=%v: err = %v, want ErrMalformedOutput", out, err)
		}
	}
}

func TestDaySetHelpers(t *testing.T) {
	if got := FullDaySet(3); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("FullDaySet(3) = %v", got)
	}
	if got := FullDaySet(0); len(got) != 0 {
		t.Fatalf("FullDaySet(0) = %v, want empty", got)
	}

	set := []int{1, 3}
	set = AddDay(set, 2)
	if len(set) != 3 || set[1] != 2 {
		t.Fatalf("AddDay out of order: %v", set)
	}
	if got := AddDay(set, 2); len(got) != 3 {
		t.Fatalf("AddDay duplicated: %v", got)
	}
	if got := removeDay(set, 2); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("removeDay = %v", got)
	}
	if got := removeDay(set, 9); len(got) != 3 {
		t.Fatalf("removeDay dropped a day it should not have: %v", got)
	}
}
