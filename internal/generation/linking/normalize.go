package linking

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// leading articles dropped during normalization, across the languages the
// catalog actually contains.
var leadingArticles = map[string]bool{
	"the": true, "a": true, "an": true,
	"el": true, "la": true, "los": true, "las": true,
	"le": true, "les": true, "il": true, "lo": true,
	"der": true, "die": true, "das": true,
}

// leading phrases stripped from activity text before fallback name matching.
var activityPrefixes = []string{
	"visit to the", "visit to", "visit",
	"tour of the", "tour of", "tour",
	"trip to the", "trip to",
	"explore the", "explore",
	"walk through the", "walk through",
	"see the", "see",
	"dinner at", "lunch at", "breakfast at", "drinks at", "coffee at",
	"stop by", "stroll through",
}

// Normalize lower-cases, strips diacritics, drops a leading article, removes
// punctuation, and collapses whitespace. Two place names that normalize to
// the same string are considered identical.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) > 1 && leadingArticles[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// StripActivityPrefix removes a leading descriptive phrase ("visit to",
// "tour of", ...) so the remaining text can be matched as a place name.
func StripActivityPrefix(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, p := range activityPrefixes {
		if strings.HasPrefix(t, p+" ") {
			return strings.TrimSpace(s[len(p)+1:])
		}
	}
	return strings.TrimSpace(s)
}
