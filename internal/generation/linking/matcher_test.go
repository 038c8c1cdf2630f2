package linking

import (
	"testing"

	"github.com/google/uuid"

	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/domain/places"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

func testCatalog(entries ...places.CatalogEntry) places.Catalog {
	return places.Catalog{"attraction": entries}
}

func newTestMatcher(t *testing.T, catalog places.Catalog) *Matcher {
	t.Helper()
	return NewMatcher(catalog, DefaultConfig(), NewMetrics(), logger.NewNop())
}

func TestResolveExactIdentifier(t *testing.T) {
	id := uuid.NewString()
	m := newTestMatcher(t, testCatalog(
		places.CatalogEntry{ID: id, Name: "Café del Mar"},
	))

	res := m.Resolve(id, "Sunset drinks")
	if res.Confidence != itinerary.MatchExact {
		t.Fatalf("confidence = %s, want exact", res.Confidence)
	}
	if res.Entry == nil || res.Entry.ID != id {
		t.Fatalf("entry = %v, want id %s", res.Entry, id)
	}
	if res.Score != 1.0 {
		t.Fatalf("score = %v, want 1.0", res.Score)
	}
}

func TestResolveIdentifierThatIsActuallyAName(t *testing.T) {
	id := uuid.NewString()
	m := newTestMatcher(t, testCatalog(
		places.CatalogEntry{ID: id, Name: "Café del Mar"},
	))

	// Not catalog format, so it gets retried as a name.
	res := m.Resolve("cafe-del-mar", "El Café del Mar")
	if res.Confidence != itinerary.MatchHigh {
		t.Fatalf("confidence = %s (score %v), want high", res.Confidence, res.Score)
	}
	if res.Entry == nil || res.Entry.ID != id {
		t.Fatalf("entry = %v, want id %s", res.Entry, id)
	}
	if m.Metrics().InvalidIDs != 1 {
		t.Fatalf("invalid ids = %d, want 1", m.Metrics().InvalidIDs)
	}
}

func TestResolveActivityTextFallback(t *testing.T) {
	id := uuid.NewString()
	m := newTestMatcher(t, testCatalog(
		places.CatalogEntry{ID: id, Name: "Sagrada Família"},
	))

	res := m.Resolve("", "Visit to the Sagrada Familia")
	if res.Confidence != itinerary.MatchHigh {
		t.Fatalf("confidence = %s (score %v), want high", res.Confidence, res.Score)
	}
	if res.Entry == nil || res.Entry.ID != id {
		t.Fatalf("entry = %v, want id %s", res.Entry, id)
	}
	if m.Metrics().FallbackAttempts != 1 || m.Metrics().FallbackSuccesses != 1 {
		t.Fatalf("fallback attempts/successes = %d/%d, want 1/1",
			m.Metrics().FallbackAttempts, m.Metrics().FallbackSuccesses)
	}
}

func TestResolveNoMatchStaysUnlinked(t *testing.T) {
	m := newTestMatcher(t, testCatalog(
		places.CatalogEntry{ID: uuid.NewString(), Name: "Park Güell"},
	))

	res := m.Resolve(uuid.NewString(), "Morning at leisure")
	if res.Confidence != itinerary.MatchNone {
		t.Fatalf("confidence = %s, want none", res.Confidence)
	}
	if res.Entry != nil {
		t.Fatalf("entry = %v, want nil", res.Entry)
	}
}

func TestResolveHallucinatedUUIDCountsInvalid(t *testing.T) {
	m := newTestMatcher(t, testCatalog(
		places.CatalogEntry{ID: uuid.NewString(), Name: "Louvre"},
	))

	res := m.Resolve(uuid.NewString(), "Tour of the Louvre")
	// The invented uuid cannot match, but the text fallback still links it.
	if res.Confidence != itinerary.MatchHigh {
		t.Fatalf("confidence = %s, want high", res.Confidence)
	}
	if m.Metrics().InvalidIDs != 1 {
		t.Fatalf("invalid ids = %d, want 1", m.Metrics().InvalidIDs)
	}
}

func TestResolveLowConfidenceTier(t *testing.T) {
	id := uuid.NewString()
	m := newTestMatcher(t, testCatalog(
		places.CatalogEntry{ID: id, Name: "Mercado de San Miguel"},
	))

	// One word swapped: close enough to clear the floor, not the high bar.
	res := m.Resolve("mercado de sant miguell", "")
	if res.Confidence != itinerary.MatchHigh && res.Confidence != itinerary.MatchLow {
		t.Fatalf("confidence = %s (score %v), want a linked tier", res.Confidence, res.Score)
	}
	if res.Entry == nil || res.Entry.ID != id {
		t.Fatalf("entry = %v, want id %s", res.Entry, id)
	}
}

func TestMetricsHealthScore(t *testing.T) {
	m := NewMetrics()
	m.Exact = 6
	m.High = 2
	m.Low = 1
	m.None = 1
	m.InvalidIDs = 1
	m.FallbackAttempts = 2
	m.FallbackSuccesses = 1

	s := m.Snapshot()
	if s.Total != 10 {
		t.Fatalf("total = %d, want 10", s.Total)
	}
	if s.LinkRate != 90 {
		t.Fatalf("link rate = %v, want 90", s.LinkRate)
	}
	if s.ExactMatchRate != 60 {
		t.Fatalf("exact rate = %v, want 60", s.ExactMatchRate)
	}
	if s.FallbackSuccessRate != 50 {
		t.Fatalf("fallback success rate = %v, want 50", s.FallbackSuccessRate)
	}
	// 0.5*90 + 0.3*60 + 0.2*(100-10) = 45 + 18 + 18 = 81
	if s.HealthScore != 81 {
		t.Fatalf("health score = %v, want 81", s.HealthScore)
	}
}
