package linking

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Café del Mar", "cafe del mar"},
		{"cafe-del-mar", "cafe del mar"},
		{"The  British   Museum", "british museum"},
		{"La Sagrada Família", "sagrada familia"},
		{"MUSÉE D'ORSAY", "musee d orsay"},
		{"  ", ""},
		{"A", "a"}, // lone article is kept, nothing left to strip it from
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizedEqualityScoresOne(t *testing.T) {
	// Case, accents, and a leading article must not cost any score.
	pairs := [][2]string{
		{"CAFÉ DEL MAR", "cafe del mar"},
		{"El Café del Mar", "Cafe del Mar"},
		{"the louvre", "Louvre"},
	}
	for _, p := range pairs {
		if got := similarity(Normalize(p[0]), Normalize(p[1])); got != 1.0 {
			t.Fatalf("similarity(%q, %q) = %v, want 1.0", p[0], p[1], got)
		}
	}
}

func TestStripActivityPrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Visit to the Prado", "Prado"},
		{"Tour of Alhambra", "Alhambra"},
		{"Dinner at Botín", "Botín"},
		{"Prado Museum", "Prado Museum"},
	}
	for _, c := range cases {
		if got := StripActivityPrefix(c.in); got != c.want {
			t.Fatalf("StripActivityPrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"museo", "museu", 1},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Fatalf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSimilarityContainmentBoost(t *testing.T) {
	got := similarity("cafe del mar", "cafe del mar beach club")
	if got < 0.85 || got > 0.95 {
		t.Fatalf("containment score = %v, want within [0.85, 0.95]", got)
	}
}
