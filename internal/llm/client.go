package llm

import (
	"context"

	"github.com/finwell-app/finwell/internal/model"
)

// BatchTransaction is one transaction in a classification request.
type BatchTransaction struct {
	ID          string                `json:"id"`
	Description string                `json:"description"`
	Type        model.TransactionType `json:"type"`
	Amount      float64               `json:"amount"`
}

// BatchRequest asks the AI service to classify a batch of transactions for
// one user.
type BatchRequest struct {
	UserID       string             `json:"userId"`
	Transactions []BatchTransaction `json:"transactions"`
}

// Result is one classification returned by the AI service. Category is
// validated against the canonical taxonomy before it is trusted.
type Result struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Vendor      string  `json:"vendor,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// BatchResponse is the AI service's answer. The service may legally return
// fewer results than requested; unclassifiable transactions are simply
// absent.
type BatchResponse struct {
	Results []Result `json:"results"`
	Success bool     `json:"success"`
}

// Client defines the contract for AI classification providers.
type Client interface {
	ClassifyTransactions(ctx context.Context, req BatchRequest) (BatchResponse, error)
}
