// Package match implements the rule-matching layers of the classification
// pipeline: amount gating, exact and fuzzy matching against user rules, and
// the built-in vendor table.
package match

import (
	"math"

	"github.com/finwell-app/finwell/internal/model"
)

// AmountMatches reports whether a transaction's signed amount satisfies a
// rule's declared direction and min/max bounds. It gates every rule lookup
// before any pattern comparison, so a rule never matches a transaction whose
// sign contradicts its direction even on an exact text match.
func AmountMatches(rule model.ClassificationRule, amount float64) bool {
	abs := math.Abs(amount)

	if rule.AmountMin != nil && abs < *rule.AmountMin {
		return false
	}
	if rule.AmountMax != nil && abs > *rule.AmountMax {
		return false
	}

	switch rule.AmountDirection {
	case model.DirectionAny, "":
		return true
	default:
		return rule.AmountDirection == model.DirectionForAmount(amount)
	}
}
