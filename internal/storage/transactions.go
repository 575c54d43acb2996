package storage

import (
	"context"
	"fmt"

	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/model"
	"github.com/finwell-app/finwell/internal/service"
)

// SaveTransactions stores transaction records for a user. Existing records
// with the same id are replaced.
func (s *SQLiteStore) SaveTransactions(ctx context.Context, userID string, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO transactions (id, user_id, date, description, payee, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.ID == "" {
			return fmt.Errorf("transaction missing id")
		}
		if _, err := stmt.ExecContext(ctx, txn.ID, userID, txn.Date, txn.Description, txn.Payee, txn.Amount); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// ListUnclassifiedTransactions returns a user's transactions that have no
// category yet, oldest first.
func (s *SQLiteStore) ListUnclassifiedTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, COALESCE(payee, ''), amount
		FROM transactions
		WHERE user_id = ? AND (category IS NULL OR category = '')
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Description, &txn.Payee, &txn.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction writes classification fields back onto a transaction
// record.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id string, update service.TransactionUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category = ?, subcategory = ?, vendor = ?, source = ?,
			confidence = ?, is_transfer = ?
		WHERE id = ?
	`, update.Category, update.Subcategory, update.Vendor,
		string(update.Source), update.Confidence, update.IsTransfer, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}
