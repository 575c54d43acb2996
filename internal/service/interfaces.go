// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/finwell-app/finwell/internal/model"
)

// TransactionUpdate carries the classification fields written back onto a
// transaction record after a successful AI result.
type TransactionUpdate struct {
	Category    string
	Subcategory string
	Vendor      string
	Source      model.ClassificationSource
	Confidence  float64
	IsTransfer  bool
}

// RuleStore defines the persistence contract for classification rules,
// global-rule settings, and transaction write-back. It is consumed, not
// owned, by the classification pipeline.
type RuleStore interface {
	// Rule operations
	ListUserRules(ctx context.Context, userID string) ([]model.ClassificationRule, error)
	ListGlobalRules(ctx context.Context) ([]model.ClassificationRule, error)
	FindRule(ctx context.Context, userID, pattern string, direction model.AmountDirection) (*model.ClassificationRule, error)
	// UpsertRule inserts or updates a rule. An insert that collides with an
	// existing (user, pattern, direction) tuple returns
	// common.ErrDuplicateEntry.
	UpsertRule(ctx context.Context, rule *model.ClassificationRule) error
	IncrementRuleMatchCount(ctx context.Context, ruleID string) error

	// Global rule settings
	GetGlobalSettings(ctx context.Context, userID string) (model.GlobalRuleSettings, error)
	SetGlobalSettings(ctx context.Context, settings model.GlobalRuleSettings) error
	ListDisabledGlobalRuleIDs(ctx context.Context, userID string) (map[string]bool, error)
	SetGlobalRuleDisabled(ctx context.Context, userID, ruleID string, disabled bool) error

	// Transaction operations
	SaveTransactions(ctx context.Context, userID string, transactions []model.Transaction) error
	ListUnclassifiedTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) error

	// Cache management
	InvalidateRules(userID string)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ClassificationStats aggregates how a classification run resolved each
// transaction.
type ClassificationStats struct {
	ClassifiedByUserRules      int
	ClassifiedByDefaultVendors int
	ClassifiedByAI             int
	Unclassified               int
}

// Total returns the number of transactions the stats cover.
func (s ClassificationStats) Total() int {
	return s.ClassifiedByUserRules + s.ClassifiedByDefaultVendors + s.ClassifiedByAI + s.Unclassified
}
