// Package engine implements the core classification engine for categorizing transactions.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/llm"
	"github.com/finwell-app/finwell/internal/match"
	"github.com/finwell-app/finwell/internal/model"
	"github.com/finwell-app/finwell/internal/normalize"
	"github.com/finwell-app/finwell/internal/service"
)

// Config holds configuration options for the classification engine.
type Config struct {
	BatchSize  int
	BatchDelay time.Duration
}

// DefaultConfig returns the default configuration: 200-transaction batches
// paced 4.5 seconds apart to stay inside the AI service's rate limit.
func DefaultConfig() Config {
	return Config{
		BatchSize:  200,
		BatchDelay: 4500 * time.Millisecond,
	}
}

// Options configures a single classification run.
type Options struct {
	SkipAI    bool
	SaveRules bool
}

// ClassifiedTransaction pairs a transaction with its classification result.
type ClassifiedTransaction struct {
	Transaction model.Transaction
	Result      model.ClassificationResult
}

// Result is the outcome of one classification run.
type Result struct {
	Results           []ClassifiedTransaction
	NeedsManualReview []model.Transaction
	Stats             service.ClassificationStats
}

// ClassificationEngine orchestrates the three-layer fallback pipeline:
// user rules, then the built-in vendor table, then the batched AI service.
type ClassificationEngine struct {
	store      service.RuleStore
	ai         llm.Client
	sleep      func(ctx context.Context, d time.Duration) error
	batchSize  int
	batchDelay time.Duration

	progressMu sync.Mutex
	progress   model.BatchProgress
	cancelled  atomic.Bool
}

// New creates a classification engine with default configuration.
func New(store service.RuleStore, ai llm.Client) *ClassificationEngine {
	return NewWithConfig(store, ai, DefaultConfig())
}

// NewWithConfig creates a classification engine with custom configuration.
func NewWithConfig(store service.RuleStore, ai llm.Client, cfg Config) *ClassificationEngine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	return &ClassificationEngine{
		store:      store,
		ai:         ai,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
		sleep:      sleepContext,
	}
}

// Classify runs the full pipeline over the given transactions. Missing user
// id or an empty transaction list fail fast; everything past input
// validation degrades per-item or per-batch instead of aborting the run.
func (e *ClassificationEngine) Classify(ctx context.Context, transactions []model.Transaction, userID string, opts Options) (*Result, error) {
	if userID == "" {
		return nil, common.ErrMissingUser
	}
	if len(transactions) == 0 {
		return nil, common.ErrNoTransactions
	}

	rules, err := e.resolveRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rules: %w", err)
	}

	slog.Info("Starting classification",
		"user_id", userID,
		"transactions", len(transactions),
		"rules", len(rules))

	result := &Result{Results: make([]ClassifiedTransaction, len(transactions))}

	var unclassified []model.Transaction
	for i, txn := range transactions {
		res := e.classifyWithRules(ctx, txn, rules)
		result.Results[i] = ClassifiedTransaction{Transaction: txn, Result: res}
		if !res.Classified() {
			unclassified = append(unclassified, txn)
		}
	}

	if !opts.SkipAI && len(unclassified) > 0 {
		aiResults := e.classifyBatchesWithAI(ctx, userID, unclassified, opts.SaveRules)
		for i := range result.Results {
			if result.Results[i].Result.Classified() {
				continue
			}
			if res, ok := aiResults[result.Results[i].Transaction.ID]; ok {
				result.Results[i].Result = res
			}
		}
	}

	for _, ct := range result.Results {
		switch ct.Result.Source {
		case model.SourceUserRule:
			result.Stats.ClassifiedByUserRules++
		case model.SourceDefaultVendor:
			result.Stats.ClassifiedByDefaultVendors++
		case model.SourceAI:
			result.Stats.ClassifiedByAI++
		default:
			result.Stats.Unclassified++
			result.NeedsManualReview = append(result.NeedsManualReview, ct.Transaction)
		}
	}

	slog.Info("Classification complete",
		"user_id", userID,
		"by_user_rules", result.Stats.ClassifiedByUserRules,
		"by_default_vendors", result.Stats.ClassifiedByDefaultVendors,
		"by_ai", result.Stats.ClassifiedByAI,
		"unclassified", result.Stats.Unclassified)

	return result, nil
}

// classifyWithRules runs the rule layers for one transaction: user and
// global rules first, then the built-in vendor table.
func (e *ClassificationEngine) classifyWithRules(ctx context.Context, txn model.Transaction, rules []model.ClassificationRule) model.ClassificationResult {
	// An empty description has nothing to match on; it goes straight to
	// manual review without running any matcher.
	if txn.Description == "" {
		return model.ClassificationResult{
			Source:      model.SourceUnclassified,
			NeedsReview: true,
		}
	}

	cleaned := normalize.Clean(txn.Description)
	vendor := normalize.ExtractVendor(txn.Description)

	if m := match.MatchUserRules(cleaned, vendor, txn.Amount, rules); m != nil {
		if err := e.store.IncrementRuleMatchCount(ctx, m.Rule.ID); err != nil {
			slog.Warn("Failed to increment rule match count",
				"rule_id", m.Rule.ID, "error", err)
		}
		resultVendor := m.Rule.VendorName
		if resultVendor == "" {
			resultVendor = vendor
		}
		return model.ClassificationResult{
			Category:    m.Rule.Category,
			Subcategory: m.Rule.Subcategory,
			Vendor:      resultVendor,
			Source:      model.SourceUserRule,
			Confidence:  m.Confidence,
			IsTransfer:  model.IsNeutralCategory(m.Rule.Category),
		}
	}

	if m := match.MatchDefaultVendors(cleaned, vendor, txn.Amount); m != nil {
		return model.ClassificationResult{
			Category:    m.Vendor.Category,
			Subcategory: m.Vendor.Subcategory,
			Vendor:      m.Vendor.Pattern,
			Source:      model.SourceDefaultVendor,
			Confidence:  m.Confidence,
			IsTransfer:  model.IsNeutralCategory(m.Vendor.Category),
		}
	}

	return model.ClassificationResult{
		Vendor:      vendor,
		Source:      model.SourceUnclassified,
		NeedsReview: true,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
