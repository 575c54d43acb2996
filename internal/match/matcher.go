package match

import (
	"github.com/finwell-app/finwell/internal/model"
)

// RuleMatch is the result of matching a transaction against a rule list.
type RuleMatch struct {
	Rule       *model.ClassificationRule
	Confidence float64
	Fuzzy      bool
}

// MatchUserRules runs the two-pass exact/fuzzy algorithm against a user's
// rule list. Rules must already be in priority order (match count
// descending, user rules before global rules); the first exact hit wins with
// confidence 1.0. Only when no exact pattern matches does the fuzzy pass run
// over the direction/range-filtered subset, queried with the extracted
// vendor token. Returns nil when nothing matches.
func MatchUserRules(cleanedDesc, vendor string, amount float64, rules []model.ClassificationRule) *RuleMatch {
	// Direction and range gate first; a rule whose sign contradicts the
	// transaction never reaches pattern comparison.
	eligible := make([]int, 0, len(rules))
	for i := range rules {
		if !rules[i].IsActive {
			continue
		}
		if !AmountMatches(rules[i], amount) {
			continue
		}
		eligible = append(eligible, i)
	}

	// First pass: exact pattern-type matching in priority order.
	for _, i := range eligible {
		rule := &rules[i]
		if rule.PatternType.Matches(cleanedDesc, rule.Pattern) {
			return &RuleMatch{Rule: rule, Confidence: 1.0}
		}
	}

	// Second pass: fuzzy lookup keyed on pattern and vendor name.
	keys := make([]indexEntry, 0, len(eligible)*2)
	for _, i := range eligible {
		keys = append(keys, indexEntry{key: rules[i].Pattern, pos: i})
		if rules[i].VendorName != "" {
			keys = append(keys, indexEntry{key: rules[i].VendorName, pos: i})
		}
	}

	pos, score, ok := newFuzzyIndex(keys).lookup(vendor)
	if !ok || score >= FuzzyThreshold {
		return nil
	}

	return &RuleMatch{
		Rule:       &rules[pos],
		Confidence: 0.85 * (1 - score),
		Fuzzy:      true,
	}
}
