package model

import "time"

// TransactionType labels the flow direction of a transaction for the AI
// service. It is inferred from the amount sign when the source did not
// already tag it.
type TransactionType string

const (
	// TypeIncome marks money entering the account.
	TypeIncome TransactionType = "income"
	// TypeExpense marks money leaving the account.
	TypeExpense TransactionType = "expense"
)

// Transaction represents a single bank or credit-card transaction handed to
// the classifier by the ingestion layer. Amounts are signed: negative means
// an expense, positive means income.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Payee       string
	Type        TransactionType
	Amount      float64
}

// InferredType returns the transaction's declared type, falling back to the
// sign of the amount. Zero amounts are treated as income.
func (t Transaction) InferredType() TransactionType {
	if t.Type == TypeIncome || t.Type == TypeExpense {
		return t.Type
	}
	if t.Amount < 0 {
		return TypeExpense
	}
	return TypeIncome
}
