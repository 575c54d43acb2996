package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/llm"
	"github.com/finwell-app/finwell/internal/model"
)

// ruleLearnThreshold is the minimum AI confidence for a result to seed a
// new rule.
const ruleLearnThreshold = 0.75

// ambiguousVendors are merchants whose category depends on what was bought,
// so a single learned rule would misclassify future transactions. They never
// get auto-created rules regardless of confidence.
var ambiguousVendors = map[string]bool{
	"WALMART":        true,
	"WAL-MART":       true,
	"TARGET":         true,
	"AMAZON":         true,
	"AMZN":           true,
	"COSTCO":         true,
	"SAMS CLUB":      true,
	"SAM'S CLUB":     true,
	"WALGREENS":      true,
	"CVS":            true,
	"DOLLAR GENERAL": true,
	"DOLLAR TREE":    true,
	"7-ELEVEN":       true,
	"CIRCLE K":       true,
	"KROGER":         true,
	"SAFEWAY":        true,
	"SHELL":          true,
	"CHEVRON":        true,
	"BP":             true,
	"EXXON":          true,
}

// learnRules synthesizes user rules from high-confidence AI results.
// Candidates are deduplicated by (upper-cased vendor, sign-derived
// direction) keeping the highest-confidence entry, so an expense rule and an
// income rule for the same vendor can coexist. The existence check before
// insert keeps (userID, pattern, direction) unique; the storage layer backs
// it with a unique index and reports a lost race as ErrDuplicateEntry, which
// is skipped without counting. Returns the number of rules created.
func (e *ClassificationEngine) learnRules(ctx context.Context, userID string, accepted []llm.Result, byID map[string]model.Transaction) int {
	type candidate struct {
		result    llm.Result
		direction model.AmountDirection
	}

	best := make(map[string]candidate)
	for _, res := range accepted {
		if res.Confidence < ruleLearnThreshold {
			continue
		}
		vendor := strings.ToUpper(strings.TrimSpace(res.Vendor))
		if vendor == "" {
			continue
		}
		if ambiguousVendors[vendor] {
			continue
		}

		txn, ok := byID[res.ID]
		if !ok {
			continue
		}
		direction := model.DirectionForAmount(txn.Amount)

		key := vendor + "|" + string(direction)
		if existing, ok := best[key]; ok && existing.result.Confidence >= res.Confidence {
			continue
		}
		best[key] = candidate{result: res, direction: direction}
	}

	created := 0
	for _, c := range best {
		pattern := strings.ToUpper(strings.TrimSpace(c.result.Vendor))

		existing, err := e.store.FindRule(ctx, userID, pattern, c.direction)
		if err != nil {
			slog.Warn("Failed to check for existing rule",
				"pattern", pattern, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		rule := &model.ClassificationRule{
			ID:              uuid.NewString(),
			UserID:          userID,
			Pattern:         pattern,
			PatternType:     model.PatternContains,
			VendorName:      pattern,
			Category:        c.result.Category,
			Subcategory:     c.result.Subcategory,
			Confidence:      c.result.Confidence,
			AmountDirection: c.direction,
			Source:          model.RuleSourceAI,
			IsActive:        true,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := e.store.UpsertRule(ctx, rule); err != nil {
			if errors.Is(err, common.ErrDuplicateEntry) {
				// A concurrent run inserted the same tuple first.
				continue
			}
			slog.Warn("Failed to create learned rule",
				"pattern", pattern, "error", err)
			continue
		}

		slog.Info("Created rule from AI classification",
			"pattern", pattern,
			"category", rule.Category,
			"direction", rule.AmountDirection,
			"confidence", rule.Confidence)
		created++
	}

	if created > 0 {
		e.store.InvalidateRules(userID)
	}

	return created
}
