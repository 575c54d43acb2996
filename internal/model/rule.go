// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// PatternType determines how a rule's pattern is compared against a cleaned
// transaction description.
type PatternType string

// Pattern type constants.
const (
	PatternExact      PatternType = "exact"
	PatternContains   PatternType = "contains"
	PatternStartsWith PatternType = "starts_with"
)

// patternMatchers is the closed dispatch table for pattern comparison. Both
// arguments are expected to be upper-cased already.
var patternMatchers = map[PatternType]func(description, pattern string) bool{
	PatternExact:      func(d, p string) bool { return d == p },
	PatternContains:   strings.Contains,
	PatternStartsWith: strings.HasPrefix,
}

// Matches reports whether the cleaned description satisfies this pattern
// type for the given pattern. Unknown pattern types never match.
func (pt PatternType) Matches(description, pattern string) bool {
	match, ok := patternMatchers[pt]
	if !ok {
		return false
	}
	return match(description, pattern)
}

// Valid reports whether pt is one of the known pattern types.
func (pt PatternType) Valid() bool {
	_, ok := patternMatchers[pt]
	return ok
}

// AmountDirection constrains a rule to income-like or expense-like
// transactions, or leaves it unconstrained.
type AmountDirection string

// Amount direction constants.
const (
	DirectionAny      AmountDirection = "any"
	DirectionPositive AmountDirection = "positive"
	DirectionNegative AmountDirection = "negative"
)

// DirectionForAmount maps a signed amount to its direction. Zero is treated
// as positive.
func DirectionForAmount(amount float64) AmountDirection {
	if amount < 0 {
		return DirectionNegative
	}
	return DirectionPositive
}

// RuleSource indicates how a classification rule was created.
type RuleSource string

const (
	// RuleSourceManual indicates the user saved the rule themselves.
	RuleSourceManual RuleSource = "manual"
	// RuleSourceAI indicates the rule was learned from a high-confidence
	// AI classification.
	RuleSourceAI RuleSource = "gemini_api"
	// RuleSourceSystem indicates the rule was seeded from the built-in
	// vendor table.
	RuleSourceSystem RuleSource = "system"
)

// ClassificationRule is a stored pattern-to-category mapping, either private
// to a user or shared globally. Patterns are always upper-cased before
// storage and comparison; the tuple (UserID, Pattern, AmountDirection) is
// unique per user.
type ClassificationRule struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AmountMin       *float64
	AmountMax       *float64
	ID              string
	UserID          string
	Pattern         string
	VendorName      string
	Category        string
	Subcategory     string
	PatternType     PatternType
	AmountDirection AmountDirection
	Source          RuleSource
	Confidence      float64
	GlobalVoteCount int
	MatchCount      int
	IsActive        bool
	IsGlobal        bool
}

// Normalize upper-cases the pattern and vendor name and defaults the
// direction to any. Called before a rule is stored or compared.
func (r *ClassificationRule) Normalize() {
	r.Pattern = strings.ToUpper(strings.TrimSpace(r.Pattern))
	r.VendorName = strings.ToUpper(strings.TrimSpace(r.VendorName))
	if r.AmountDirection == "" {
		r.AmountDirection = DirectionAny
	}
}

// GlobalRuleSettings holds a user's master toggle for community-shared
// rules. The toggle defaults to enabled.
type GlobalRuleSettings struct {
	UserID         string
	UseGlobalRules bool
}
