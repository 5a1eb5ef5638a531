// Package filter applies user-defined keyword and price criteria to postings.
package filter

import (
	"strconv"
	"strings"

	"github.com/andrii-d/autoapply/internal/types"
)

// Criteria holds the matching rules for a single pipeline run. Keyword matching
// is case-insensitive substring matching over title plus description.
type Criteria struct {
	IncludeKeywords []string
	ExcludeKeywords []string
	MinPrice        float64
}

// ParsePrice extracts a numeric value from a marketplace price display string
// by stripping everything except digits and dots. It returns nil when nothing
// parsable remains; such postings are treated as satisfying any price criterion.
func ParsePrice(raw string) *float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Apply returns the postings matching the criteria, preserving input order.
// The input slice and its postings are not mutated, and the function is
// deterministic and idempotent.
//
// A posting is kept when its price is unknown or at least MinPrice, no exclude
// keyword matches, and either the include list is empty or at least one include
// keyword matches. An exclude match always wins over an include match.
func Apply(postings []types.Posting, criteria Criteria) []types.Posting {
	var matched []types.Posting
	for _, p := range postings {
		if price := ParsePrice(p.Price); price != nil && *price < criteria.MinPrice {
			continue
		}

		text := strings.ToLower(p.Title + " " + p.Description)

		if anyKeywordIn(text, criteria.ExcludeKeywords) {
			continue
		}
		if len(criteria.IncludeKeywords) == 0 || anyKeywordIn(text, criteria.IncludeKeywords) {
			matched = append(matched, p)
		}
	}
	return matched
}

func anyKeywordIn(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
