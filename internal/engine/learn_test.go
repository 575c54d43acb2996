package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/llm"
	"github.com/finwell-app/finwell/internal/model"
)

func TestLearnRulesCreatesRuleFromHighConfidenceResult(t *testing.T) {
	store := &mockStore{}
	eng := New(store, nil)

	byID := map[string]model.Transaction{
		"t1": txn("t1", "ACME OFFICE SUPPLY 42", -150),
	}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategoryOfficeExpenses, Subcategory: "Software", Vendor: "Acme", Confidence: 0.8},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Equal(t, 1, created)

	rules := store.upsertedRules()
	require.Len(t, rules, 1)
	rule := rules[0]
	assert.Equal(t, "ACME", rule.Pattern)
	assert.Equal(t, "ACME", rule.VendorName)
	assert.Equal(t, model.PatternContains, rule.PatternType)
	assert.Equal(t, model.DirectionNegative, rule.AmountDirection)
	assert.Equal(t, model.CategoryOfficeExpenses, rule.Category)
	assert.Equal(t, model.RuleSourceAI, rule.Source)
	assert.Equal(t, 0.8, rule.Confidence)
	assert.True(t, rule.IsActive)
	assert.NotEmpty(t, rule.ID)

	assert.Equal(t, 1, store.invalidations, "rule cache invalidated after creation")
}

func TestLearnRulesSameVendorBothDirections(t *testing.T) {
	// An expense from Acme and a payment from Acme are different rules,
	// keyed by direction; neither overwrites the other.
	store := &mockStore{}
	eng := New(store, nil)

	byID := map[string]model.Transaction{
		"t1": txn("t1", "ACME INVOICE", -150),
		"t2": txn("t2", "ACME PAYOUT", 300),
	}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategoryOfficeExpenses, Vendor: "Acme", Confidence: 0.8},
		{ID: "t2", Category: model.CategoryOtherIncome, Vendor: "Acme", Confidence: 0.9},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Equal(t, 2, created)

	rules := store.upsertedRules()
	require.Len(t, rules, 2)

	directions := map[model.AmountDirection]string{}
	for _, r := range rules {
		assert.Equal(t, "ACME", r.Pattern)
		directions[r.AmountDirection] = r.Category
	}
	assert.Equal(t, model.CategoryOfficeExpenses, directions[model.DirectionNegative])
	assert.Equal(t, model.CategoryOtherIncome, directions[model.DirectionPositive])
}

func TestLearnRulesExcludesAmbiguousVendors(t *testing.T) {
	store := &mockStore{}
	eng := New(store, nil)

	byID := map[string]model.Transaction{
		"t1": txn("t1", "WALMART SUPERCENTER", -60),
		"t2": txn("t2", "AMAZON MKTPL", -25),
	}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategorySupplies, Vendor: "Walmart", Confidence: 0.9},
		{ID: "t2", Category: model.CategorySupplies, Vendor: "AMAZON", Confidence: 0.95},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Zero(t, created)
	assert.Empty(t, store.upsertedRules())
	assert.Zero(t, store.invalidations)
}

func TestLearnRulesConfidenceThreshold(t *testing.T) {
	store := &mockStore{}
	eng := New(store, nil)

	byID := map[string]model.Transaction{
		"t1": txn("t1", "ACME", -10),
		"t2": txn("t2", "ZENITH", -10),
	}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategorySupplies, Vendor: "Acme", Confidence: 0.74},
		{ID: "t2", Category: model.CategorySupplies, Vendor: "Zenith", Confidence: 0.75},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Equal(t, 1, created)

	rules := store.upsertedRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "ZENITH", rules[0].Pattern)
}

func TestLearnRulesDeduplicatesKeepingHighestConfidence(t *testing.T) {
	store := &mockStore{}
	eng := New(store, nil)

	byID := map[string]model.Transaction{
		"t1": txn("t1", "ACME STORE 1", -10),
		"t2": txn("t2", "ACME STORE 2", -20),
	}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategorySupplies, Vendor: "Acme", Confidence: 0.8},
		{ID: "t2", Category: model.CategoryOfficeExpenses, Vendor: "ACME", Confidence: 0.92},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Equal(t, 1, created)

	rules := store.upsertedRules()
	require.Len(t, rules, 1)
	assert.Equal(t, model.CategoryOfficeExpenses, rules[0].Category)
	assert.Equal(t, 0.92, rules[0].Confidence)
}

func TestLearnRulesSkipsExistingRule(t *testing.T) {
	store := &mockStore{
		userRules: []model.ClassificationRule{{
			ID:              "existing",
			UserID:          "user-1",
			Pattern:         "ACME",
			AmountDirection: model.DirectionNegative,
			Category:        model.CategorySupplies,
			IsActive:        true,
		}},
	}
	eng := New(store, nil)

	byID := map[string]model.Transaction{"t1": txn("t1", "ACME", -10)}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategorySupplies, Vendor: "Acme", Confidence: 0.9},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Zero(t, created)
	assert.Empty(t, store.upsertedRules())
}

func TestLearnRulesDuplicateInsertNotCounted(t *testing.T) {
	// A concurrent run can insert the same (user, pattern, direction)
	// tuple between the existence check and the insert; that lost race
	// must not inflate the created count or invalidate the cache.
	store := &mockStore{upsertErr: common.ErrDuplicateEntry}
	eng := New(store, nil)

	byID := map[string]model.Transaction{"t1": txn("t1", "ACME", -10)}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategorySupplies, Vendor: "Acme", Confidence: 0.9},
	}

	created := eng.learnRules(context.Background(), "user-1", accepted, byID)
	assert.Zero(t, created)
	assert.Zero(t, store.invalidations)
}

func TestLearnRulesSkipsBlankVendor(t *testing.T) {
	store := &mockStore{}
	eng := New(store, nil)

	byID := map[string]model.Transaction{"t1": txn("t1", "SOMETHING", -10)}
	accepted := []llm.Result{
		{ID: "t1", Category: model.CategorySupplies, Vendor: "   ", Confidence: 0.9},
	}

	assert.Zero(t, eng.learnRules(context.Background(), "user-1", accepted, byID))
}

func TestRuleLearningThroughBatchRun(t *testing.T) {
	store := &mockStore{}
	ai := &MockAIClient{Responses: []llm.BatchResponse{{
		Success: true,
		Results: []llm.Result{
			{ID: "t0", Category: model.CategoryOfficeExpenses, Vendor: "Acme", Confidence: 0.85},
			{ID: "t1", Category: model.CategorySupplies, Vendor: "WALMART", Confidence: 0.95},
		},
	}}}
	eng := New(store, ai)

	eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(2), true)

	rules := store.upsertedRules()
	require.Len(t, rules, 1, "Walmart is excluded, Acme learned")
	assert.Equal(t, "ACME", rules[0].Pattern)
	assert.Equal(t, 1, eng.Progress().RulesCreated)
}
