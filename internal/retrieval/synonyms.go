package retrieval

import "strings"

// synonymGroups is the fixed synonym table used for query expansion. Each
// group maps a canonical term to its equivalents; membership is symmetric,
// so a query token matching any member pulls in the whole group.
var synonymGroups = map[string][]string{
	"appointment":  {"booking", "meeting", "reservation", "visit", "session"},
	"cancel":       {"cancellation", "cancelled", "canceling", "reschedule", "refund"},
	"schedule":     {"availability", "available", "slot", "time", "calendar"},
	"hours":        {"open", "opening", "closing", "closed", "weekend"},
	"price":        {"cost", "fee", "rate", "pricing", "charge", "payment"},
	"location":     {"address", "directions", "parking", "office"},
	"policy":       {"policies", "rule", "rules", "terms", "conditions"},
	"insurance":    {"coverage", "insurer", "claim", "copay"},
	"doctor":       {"physician", "practitioner", "provider", "specialist", "staff"},
	"contact":      {"phone", "email", "reach", "call"},
	"service":      {"services", "treatment", "offering", "consultation"},
	"late":         {"delay", "delayed", "miss", "missed", "noshow"},
}

// minTokenLength filters stop-word noise: tokens this short or shorter are
// ignored during expansion.
const minTokenLength = 2

// ExpandTerms lower-cases the query, splits it into whitespace-delimited
// tokens longer than minTokenLength, and expands each token against the
// synonym table. A token matching a group's canonical term or any of its
// synonyms adds the canonical term and the full synonym list to the result.
// The returned set is deduplicated and includes the original tokens.
func ExpandTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	for _, token := range strings.Fields(strings.ToLower(query)) {
		token = strings.Trim(token, ".,!?;:\"'()")
		if len(token) <= minTokenLength {
			continue
		}
		add(token)

		for canonical, synonyms := range synonymGroups {
			if !matchesGroup(token, canonical, synonyms) {
				continue
			}
			add(canonical)
			for _, s := range synonyms {
				add(s)
			}
		}
	}

	return terms
}

// matchesGroup reports whether token belongs to the group, by canonical term
// or by synonym.
func matchesGroup(token, canonical string, synonyms []string) bool {
	if token == canonical {
		return true
	}
	for _, s := range synonyms {
		if token == s {
			return true
		}
	}
	return false
}
