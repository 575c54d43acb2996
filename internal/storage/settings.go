package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finwell-app/finwell/internal/model"
)

// GetGlobalSettings returns a user's global-rule toggle. Users without a
// stored row get the default: global rules enabled.
func (s *SQLiteStore) GetGlobalSettings(ctx context.Context, userID string) (model.GlobalRuleSettings, error) {
	settings := model.GlobalRuleSettings{UserID: userID, UseGlobalRules: true}

	if err := validateContext(ctx); err != nil {
		return settings, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return settings, err
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT use_global_rules FROM global_rule_settings WHERE user_id = ?
	`, userID).Scan(&settings.UseGlobalRules)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to get global settings: %w", err)
	}
	return settings, nil
}

// SetGlobalSettings stores a user's global-rule toggle and invalidates
// their cached rules.
func (s *SQLiteStore) SetGlobalSettings(ctx context.Context, settings model.GlobalRuleSettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(settings.UserID, "userID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO global_rule_settings (user_id, use_global_rules, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			use_global_rules = excluded.use_global_rules,
			updated_at = excluded.updated_at
	`, settings.UserID, settings.UseGlobalRules)
	if err != nil {
		return fmt.Errorf("failed to set global settings: %w", err)
	}

	s.InvalidateRules(settings.UserID)
	return nil
}

// ListDisabledGlobalRuleIDs returns the set of global rule ids the user has
// opted out of. The set is independent of each rule's is_active flag.
func (s *SQLiteStore) ListDisabledGlobalRuleIDs(ctx context.Context, userID string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id FROM disabled_global_rules WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list disabled global rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	disabled := make(map[string]bool)
	for rows.Next() {
		var ruleID string
		if err := rows.Scan(&ruleID); err != nil {
			return nil, fmt.Errorf("failed to scan disabled rule id: %w", err)
		}
		disabled[ruleID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate disabled rule ids: %w", err)
	}
	return disabled, nil
}

// SetGlobalRuleDisabled records or clears a per-rule opt-out for a user.
func (s *SQLiteStore) SetGlobalRuleDisabled(ctx context.Context, userID, ruleID string, disabled bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(ruleID, "ruleID"); err != nil {
		return err
	}

	var err error
	if disabled {
		_, err = s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO disabled_global_rules (user_id, rule_id)
			VALUES (?, ?)
		`, userID, ruleID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM disabled_global_rules WHERE user_id = ? AND rule_id = ?
		`, userID, ruleID)
	}
	if err != nil {
		return fmt.Errorf("failed to update global rule opt-out: %w", err)
	}

	s.InvalidateRules(userID)
	return nil
}
