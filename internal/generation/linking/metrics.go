package linking

import "github.com/voyplan/voyplan-backend/internal/domain/itinerary"

// Metrics accumulates linking decisions over one generation run. It is
// observability only; nothing in the pipeline branches on it. Counters are
// JSON-tagged so a run spanning several invocations can persist and re-load
// its running totals.
type Metrics struct {
	Exact int `json:"exact"`
	High  int `json:"high"`
	Low   int `json:"low"`
	None  int `json:"none"`

	FallbackAttempts  int `json:"fallback_attempts"`
	FallbackSuccesses int `json:"fallback_successes"`
	InvalidIDs        int `json:"invalid_ids"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Add folds another batch of counters into m.
func (m *Metrics) Add(other Metrics) {
	m.Exact += other.Exact
	m.High += other.High
	m.Low += other.Low
	m.None += other.None
	m.FallbackAttempts += other.FallbackAttempts
	m.FallbackSuccesses += other.FallbackSuccesses
	m.InvalidIDs += other.InvalidIDs
}

func (m *Metrics) Observe(confidence string) {
	switch confidence {
	case itinerary.MatchExact:
		m.Exact++
	case itinerary.MatchHigh:
		m.High++
	case itinerary.MatchLow:
		m.Low++
	default:
		m.None++
	}
}

func (m *Metrics) Total() int {
	return m.Exact + m.High + m.Low + m.None
}

// Snapshot holds the derived rates, all expressed as 0-100 percentages.
type Snapshot struct {
	Total               int     `json:"total"`
	Exact               int     `json:"exact"`
	High                int     `json:"high"`
	Low                 int     `json:"low"`
	None                int     `json:"none"`
	LinkRate            float64 `json:"link_rate"`
	ExactMatchRate      float64 `json:"exact_match_rate"`
	FallbackSuccessRate float64 `json:"fallback_success_rate"`
	InvalidIDRate       float64 `json:"invalid_id_rate"`
	HealthScore         float64 `json:"health_score"`
}

// HealthWarnThreshold is the score below which linking health is surfaced as
// a warning to operators.
const HealthWarnThreshold = 70.0

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Total: m.Total(),
		Exact: m.Exact,
		High:  m.High,
		Low:   m.Low,
		None:  m.None,
	}
	if s.Total > 0 {
		linked := m.Exact + m.High + m.Low
		s.LinkRate = 100 * float64(linked) / float64(s.Total)
		s.ExactMatchRate = 100 * float64(m.Exact) / float64(s.Total)
		s.InvalidIDRate = 100 * float64(m.InvalidIDs) / float64(s.Total)
	}
	if m.FallbackAttempts > 0 {
		s.FallbackSuccessRate = 100 * float64(m.FallbackSuccesses) / float64(m.FallbackAttempts)
	}

	idPenalty := 100 - s.InvalidIDRate
	if idPenalty < 0 {
		idPenalty = 0
	}
	s.HealthScore = 0.5*s.LinkRate + 0.3*s.ExactMatchRate + 0.2*idPenalty
	return s
}
