package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/model"
)

const ruleColumns = `id, user_id, pattern, pattern_type, vendor_name, category,
	subcategory, confidence, amount_direction, amount_min, amount_max,
	source, is_active, is_global, global_vote_count, match_count,
	created_at, updated_at`

// ListUserRules returns a user's own rules ordered by match count
// descending, the matcher's priority order. Results are served from the
// per-user read-through cache until InvalidateRules is called.
func (s *SQLiteStore) ListUserRules(ctx context.Context, userID string) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	if rules, ok := s.cachedRules(userID); ok {
		return rules, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE user_id = ?
		ORDER BY match_count DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules, err := scanRules(rows)
	if err != nil {
		return nil, err
	}

	s.cacheRules(userID, rules)
	return rules, nil
}

// ListGlobalRules returns all active globally-shared rules ordered by vote
// count descending.
func (s *SQLiteStore) ListGlobalRules(ctx context.Context) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE is_global = 1 AND is_active = 1
		ORDER BY global_vote_count DESC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list global rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRules(rows)
}

// FindRule looks up a rule by its uniqueness tuple. Returns nil without an
// error when no rule exists.
func (s *SQLiteStore) FindRule(ctx context.Context, userID, pattern string, direction model.AmountDirection) (*model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE user_id = ? AND pattern = UPPER(?) AND amount_direction = ?
	`, userID, pattern, string(direction))

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	return rule, nil
}

// UpsertRule inserts a rule or updates it by id. An insert that collides
// with another rule's (user_id, pattern, amount_direction) tuple returns
// common.ErrDuplicateEntry and writes nothing: the unique index makes the
// check-then-insert pattern safe under concurrent runs, and callers can
// tell a real insert from a lost race. The user's rule cache is
// invalidated on success.
func (s *SQLiteStore) UpsertRule(ctx context.Context, rule *model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	rule.Normalize()
	if err := validateRule(rule); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	rule.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (
			id, user_id, pattern, pattern_type, vendor_name, category,
			subcategory, confidence, amount_direction, amount_min, amount_max,
			source, is_active, is_global, global_vote_count, match_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pattern = excluded.pattern,
			pattern_type = excluded.pattern_type,
			vendor_name = excluded.vendor_name,
			category = excluded.category,
			subcategory = excluded.subcategory,
			confidence = excluded.confidence,
			amount_direction = excluded.amount_direction,
			amount_min = excluded.amount_min,
			amount_max = excluded.amount_max,
			source = excluded.source,
			is_active = excluded.is_active,
			is_global = excluded.is_global,
			global_vote_count = excluded.global_vote_count,
			updated_at = excluded.updated_at
	`,
		rule.ID, rule.UserID, rule.Pattern, string(rule.PatternType),
		rule.VendorName, rule.Category, rule.Subcategory, rule.Confidence,
		string(rule.AmountDirection), rule.AmountMin, rule.AmountMax,
		string(rule.Source), rule.IsActive, rule.IsGlobal,
		rule.GlobalVoteCount, rule.MatchCount,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			slog.Debug("Rule already exists, skipping insert",
				"user_id", rule.UserID,
				"pattern", rule.Pattern,
				"direction", rule.AmountDirection)
			return fmt.Errorf("rule for %s/%s: %w",
				rule.Pattern, rule.AmountDirection, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to upsert rule: %w", err)
	}

	s.InvalidateRules(rule.UserID)
	return nil
}

// IncrementRuleMatchCount bumps a rule's usage counter. The cached list is
// left alone; priority drift is reconciled on the next invalidation.
func (s *SQLiteStore) IncrementRuleMatchCount(ctx context.Context, ruleID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(ruleID, "ruleID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE rules SET match_count = match_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to increment match count: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*model.ClassificationRule, error) {
	var rule model.ClassificationRule
	var vendorName, subcategory sql.NullString
	var amountMin, amountMax sql.NullFloat64

	err := row.Scan(
		&rule.ID, &rule.UserID, &rule.Pattern, &rule.PatternType,
		&vendorName, &rule.Category, &subcategory, &rule.Confidence,
		&rule.AmountDirection, &amountMin, &amountMax,
		&rule.Source, &rule.IsActive, &rule.IsGlobal,
		&rule.GlobalVoteCount, &rule.MatchCount,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.VendorName = vendorName.String
	rule.Subcategory = subcategory.String
	if amountMin.Valid {
		rule.AmountMin = &amountMin.Float64
	}
	if amountMax.Valid {
		rule.AmountMax = &amountMax.Float64
	}
	return &rule, nil
}

func scanRules(rows *sql.Rows) ([]model.ClassificationRule, error) {
	var rules []model.ClassificationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}
