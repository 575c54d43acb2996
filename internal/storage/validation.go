package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finwell-app/finwell/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
	ErrNilRule     = errors.New("rule cannot be nil")
	ErrInvalidRule = errors.New("invalid rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRule checks the invariants a rule must satisfy before storage.
func validateRule(rule *model.ClassificationRule) error {
	if rule == nil {
		return ErrNilRule
	}
	if rule.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRule)
	}
	if rule.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidRule)
	}
	if rule.Pattern == "" {
		return fmt.Errorf("%w: missing pattern", ErrInvalidRule)
	}
	if !rule.PatternType.Valid() {
		return fmt.Errorf("%w: unknown pattern type %q", ErrInvalidRule, rule.PatternType)
	}
	if rule.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	if _, ok := model.LookupCategory(rule.Category); !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRule, rule.Category)
	}
	if rule.Confidence < 0 || rule.Confidence > 1 {
		return fmt.Errorf("%w: confidence %f out of range", ErrInvalidRule, rule.Confidence)
	}
	if rule.AmountMin != nil && *rule.AmountMin < 0 {
		return fmt.Errorf("%w: negative amount min", ErrInvalidRule)
	}
	if rule.AmountMax != nil && *rule.AmountMax < 0 {
		return fmt.Errorf("%w: negative amount max", ErrInvalidRule)
	}
	if rule.AmountMin != nil && rule.AmountMax != nil && *rule.AmountMin > *rule.AmountMax {
		return fmt.Errorf("%w: amount min exceeds max", ErrInvalidRule)
	}
	return nil
}
