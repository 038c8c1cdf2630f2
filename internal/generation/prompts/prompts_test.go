package prompts

import (
	"strings"
	"testing"
)

func TestBuildTripSummaryRendersTripFacts(t *testing.T) {
	p, err := Build(PromptTripSummary, Input{
		Destination: "Lisbon",
		StartDate:   "2026-05-01",
		EndDate:     "2026-05-03",
		TotalDays:   3,
		Travelers:   2,
		Pace:        "relaxed",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.SchemaName != "trip_summary" {
		t.Fatalf("schema name = %q", p.SchemaName)
	}
	if p.Schema == nil {
		t.Fatalf("schema payload missing")
	}
	for _, want := range []string{"Lisbon", "2026-05-01 to 2026-05-03", "(3 days)", "exactly 3 day titles"} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, p.User)
		}
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	if _, err := Build(PromptTripSummary, Input{Destination: "Lisbon"}); err == nil {
		t.Fatalf("expected validation error for zero total days")
	}
	if _, err := Build(PromptItineraryDay, Input{TotalDays: 3}); err == nil {
		t.Fatalf("expected validation error for zero day number")
	}
	if _, err := Build(PromptName("nope"), Input{}); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}

func TestDayPromptCatalogIsConditional(t *testing.T) {
	withCatalog, err := Build(PromptItineraryDay, Input{
		DayNumber:         1,
		DayDate:           "2026-05-01",
		DayTitle:          "Alfama",
		PlacesCatalogJSON: `{"id":"abc","name":"Castelo"}`,
	})
	if err != nil {
		t.Fatalf("Build with catalog: %v", err)
	}
	if !strings.Contains(withCatalog.User, `"id":"abc"`) {
		t.Fatalf("catalog not rendered:\n%s", withCatalog.User)
	}
	if !strings.Contains(withCatalog.System, "copied verbatim") {
		t.Fatalf("system prompt should instruct verbatim ids when a catalog exists")
	}

	without, err := Build(PromptItineraryDay, Input{DayNumber: 1, DayTitle: "Alfama"})
	if err != nil {
		t.Fatalf("Build without catalog: %v", err)
	}
	if !strings.Contains(without.System, "Leave suggested_place_id empty") {
		t.Fatalf("system prompt should disable ids without a catalog:\n%s", without.System)
	}
	if strings.Contains(without.User, "Catalog of real places") {
		t.Fatalf("empty catalog should not render a catalog section")
	}
}

func TestFingerprintTracksRenderedContent(t *testing.T) {
	a, err := Build(PromptItineraryDay, Input{DayNumber: 1, DayTitle: "Alfama"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(PromptItineraryDay, Input{DayNumber: 2, DayTitle: "Belem"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Fingerprint() != a.Fingerprint() {
		t.Fatalf("fingerprint not stable")
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("different renders share a fingerprint")
	}
}
