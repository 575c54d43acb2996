package engine

import (
	"context"
	"log/slog"

	"github.com/finwell-app/finwell/internal/llm"
	"github.com/finwell-app/finwell/internal/model"
	"github.com/finwell-app/finwell/internal/service"
)

// classifyBatchesWithAI sends unclassified transactions to the AI service in
// fixed-size batches, strictly sequentially, pacing batches with a fixed
// delay to respect the service's rate limit. A failed batch marks its
// transactions failed and the run continues; nothing short of context
// cancellation aborts the whole run.
func (e *ClassificationEngine) classifyBatchesWithAI(ctx context.Context, userID string, transactions []model.Transaction, saveRules bool) map[string]model.ClassificationResult {
	totalBatches := (len(transactions) + e.batchSize - 1) / e.batchSize

	e.cancelled.Store(false)
	e.setProgress(model.BatchProgress{IsRunning: true, TotalBatches: totalBatches})
	defer e.updateProgress(func(p *model.BatchProgress) { p.IsRunning = false })

	results := make(map[string]model.ClassificationResult)

	for i := 0; i < totalBatches; i++ {
		// Cancellation is cooperative and coarse: it only prevents the
		// next batch from starting, never aborts one in flight.
		if e.cancelled.Load() || ctx.Err() != nil {
			slog.Info("Batch classification cancelled",
				"completed_batches", i, "total_batches", totalBatches)
			break
		}

		e.updateProgress(func(p *model.BatchProgress) { p.CurrentBatch = i + 1 })

		end := (i + 1) * e.batchSize
		if end > len(transactions) {
			end = len(transactions)
		}
		batch := transactions[i*e.batchSize : end]

		e.processBatch(ctx, userID, batch, results, saveRules)

		if i < totalBatches-1 {
			if err := e.sleep(ctx, e.batchDelay); err != nil {
				break
			}
		}
	}

	return results
}

// processBatch sends one batch to the AI service, validates the returned
// categories, and writes accepted results back to the transaction store.
func (e *ClassificationEngine) processBatch(ctx context.Context, userID string, batch []model.Transaction, results map[string]model.ClassificationResult, saveRules bool) {
	req := llm.BatchRequest{UserID: userID}
	byID := make(map[string]model.Transaction, len(batch))
	for _, txn := range batch {
		byID[txn.ID] = txn
		req.Transactions = append(req.Transactions, llm.BatchTransaction{
			ID:          txn.ID,
			Description: txn.Description,
			Amount:      txn.Amount,
			Type:        txn.InferredType(),
		})
	}

	resp, err := e.ai.ClassifyTransactions(ctx, req)
	if err != nil || !resp.Success {
		e.updateProgress(func(p *model.BatchProgress) { p.Failed += len(batch) })
		slog.Warn("AI batch failed, continuing with next batch",
			"batch_size", len(batch), "error", err)
		return
	}

	var accepted []llm.Result
	dropped := 0

	for _, res := range resp.Results {
		txn, ok := byID[res.ID]
		if !ok {
			continue
		}

		category, valid := model.LookupCategory(res.Category)
		if !valid {
			// Unknown categories are dropped silently and counted,
			// never retried.
			dropped++
			continue
		}

		isTransfer := category.Type == model.CategoryTypeNeutral

		update := service.TransactionUpdate{
			Category:    category.Key,
			Subcategory: res.Subcategory,
			Vendor:      res.Vendor,
			Source:      model.SourceAI,
			Confidence:  res.Confidence,
			IsTransfer:  isTransfer,
		}
		if err := e.store.UpdateTransaction(ctx, txn.ID, update); err != nil {
			e.updateProgress(func(p *model.BatchProgress) { p.Failed++ })
			slog.Warn("Failed to write classification back",
				"transaction_id", txn.ID, "error", err)
			continue
		}

		res.Category = category.Key
		accepted = append(accepted, res)
		results[txn.ID] = model.ClassificationResult{
			Category:    category.Key,
			Subcategory: res.Subcategory,
			Vendor:      res.Vendor,
			Source:      model.SourceAI,
			Confidence:  res.Confidence,
			IsTransfer:  isTransfer,
		}
		e.updateProgress(func(p *model.BatchProgress) { p.Classified++ })
	}

	if dropped > 0 {
		slog.Warn("Dropped AI results with unrecognized categories",
			"dropped", dropped)
	}

	if saveRules {
		created := e.learnRules(ctx, userID, accepted, byID)
		if created > 0 {
			e.updateProgress(func(p *model.BatchProgress) { p.RulesCreated += created })
		}
	}
}

// Cancel stops the run before the next batch starts. In-flight requests
// cannot be aborted.
func (e *ClassificationEngine) Cancel() {
	e.cancelled.Store(true)
}

// Progress returns an immutable snapshot of the current run.
func (e *ClassificationEngine) Progress() model.BatchProgress {
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	return e.progress
}

func (e *ClassificationEngine) setProgress(p model.BatchProgress) {
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.progress = p
}

func (e *ClassificationEngine) updateProgress(fn func(*model.BatchProgress)) {
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	fn(&e.progress)
}
