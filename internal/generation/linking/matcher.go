package linking

import (
	"strings"

	"github.com/google/uuid"

	"github.com/voyplan/voyplan-backend/internal/domain/itinerary"
	"github.com/voyplan/voyplan-backend/internal/domain/places"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

// Config carries the acceptance thresholds of the matcher.
type Config struct {
	// HighScore is the score at or above which a name match is tier "high".
	HighScore float64 `yaml:"high_score"`
	// IDNameMinScore is the acceptance floor when a non-catalog-format
	// identifier is retried as a name.
	IDNameMinScore float64 `yaml:"id_name_min_score"`
	// TextMinScore is the acceptance floor for the activity-text fallback.
	TextMinScore float64 `yaml:"text_min_score"`
}

func DefaultConfig() Config {
	return Config{
		HighScore:      0.90,
		IDNameMinScore: 0.75,
		TextMinScore:   0.80,
	}
}

// Result is one linking decision. Entry is nil when Confidence is "none".
type Result struct {
	Entry      *places.CatalogEntry
	Confidence string
	Score      float64
}

// Matcher resolves AI-suggested place references against one trip's catalog.
// It tolerates invented identifiers, identifiers that are actually names, and
// near-miss names; it never raises and never fabricates a link.
type Matcher struct {
	catalog places.Catalog
	entries []places.CatalogEntry
	cfg     Config
	metrics *Metrics
	log     *logger.Logger
}

func NewMatcher(catalog places.Catalog, cfg Config, metrics *Metrics, log *logger.Logger) *Matcher {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Matcher{
		catalog: catalog,
		entries: catalog.All(),
		cfg:     cfg,
		metrics: metrics,
		log:     log.With("component", "PlaceMatcher"),
	}
}

func (m *Matcher) Metrics() *Metrics { return m.metrics }

// IsCatalogID reports whether s has the catalog's identifier format.
func IsCatalogID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// Resolve links one place reference. suggestedID is whatever the model put in
// suggested_place_id (possibly empty); activityText is the human-readable
// activity or meal text used as the last-resort fallback.
func (m *Matcher) Resolve(suggestedID, activityText string) Result {
	suggestedID = strings.TrimSpace(suggestedID)

	// 1. Exact identifier match.
	if suggestedID != "" {
		if entry := m.catalog.ByID(suggestedID); entry != nil {
			return m.record(Result{Entry: entry, Confidence: itinerary.MatchExact, Score: 1.0}, false)
		}
		m.metrics.InvalidIDs++

		// 2. An identifier that is not in catalog format is usually a name
		// the model put in the wrong field. Retry it as one.
		if !IsCatalogID(suggestedID) {
			if res, ok := m.matchName(suggestedID, m.cfg.IDNameMinScore); ok {
				return m.record(res, false)
			}
		}
	}

	// 3. Fall back to the activity text itself.
	text := StripActivityPrefix(activityText)
	if text != "" {
		m.metrics.FallbackAttempts++
		if res, ok := m.matchName(text, m.cfg.TextMinScore); ok {
			m.metrics.FallbackSuccesses++
			return m.record(res, true)
		}
	}

	return m.record(Result{Confidence: itinerary.MatchNone}, false)
}

func (m *Matcher) matchName(name string, minScore float64) (Result, bool) {
	target := Normalize(name)
	if target == "" {
		return Result{}, false
	}

	var best *places.CatalogEntry
	bestScore := 0.0
	for i := range m.entries {
		score := similarity(target, Normalize(m.entries[i].Name))
		if score > bestScore {
			bestScore = score
			best = &m.entries[i]
		}
	}
	if best == nil || bestScore < minScore {
		return Result{}, false
	}

	confidence := itinerary.MatchLow
	if bestScore >= m.cfg.HighScore {
		confidence = itinerary.MatchHigh
	}
	return Result{Entry: best, Confidence: confidence, Score: bestScore}, true
}

func (m *Matcher) record(res Result, viaFallback bool) Result {
	m.metrics.Observe(res.Confidence)
	if res.Confidence == itinerary.MatchNone {
		m.log.Debug("Place reference left unlinked")
	} else if viaFallback {
		m.log.Debug("Place linked via text fallback",
			"place_id", res.Entry.ID, "confidence", res.Confidence, "score", res.Score)
	}
	return res
}
