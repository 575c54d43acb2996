package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwell-app/finwell/internal/llm"
	"github.com/finwell-app/finwell/internal/model"
)

func makeTransactions(n int) []model.Transaction {
	out := make([]model.Transaction, n)
	for i := range out {
		out[i] = txn(fmt.Sprintf("t%d", i), fmt.Sprintf("MERCHANT %d", i), -float64(i+1))
	}
	return out
}

// countingSleep replaces the engine's pacing sleep and records each call.
type countingSleep struct {
	calls int
}

func (c *countingSleep) sleep(_ context.Context, _ time.Duration) error {
	c.calls++
	return nil
}

func classifyAll(req llm.BatchRequest) llm.BatchResponse {
	resp := llm.BatchResponse{Success: true}
	for _, bt := range req.Transactions {
		resp.Results = append(resp.Results, llm.Result{
			ID:         bt.ID,
			Category:   model.CategoryOtherExpenses,
			Vendor:     "VENDOR " + bt.ID,
			Confidence: 0.6,
		})
	}
	return resp
}

func TestBatchMathAndDelays(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		wantBatches int
	}{
		{name: "exact multiple", count: 1000, wantBatches: 5},
		{name: "remainder batch", count: 401, wantBatches: 3},
		{name: "single short batch", count: 7, wantBatches: 1},
		{name: "exactly one batch", count: 200, wantBatches: 1},
		{name: "one over", count: 201, wantBatches: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
				return classifyAll(req), nil
			}}
			sleeper := &countingSleep{}

			eng := New(&mockStore{}, ai)
			eng.sleep = sleeper.sleep

			results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(tt.count), false)

			assert.Equal(t, tt.wantBatches, ai.CallCount())
			assert.Equal(t, tt.wantBatches-1, sleeper.calls, "one fewer delay than batches")
			assert.Len(t, results, tt.count)

			progress := eng.Progress()
			assert.False(t, progress.IsRunning)
			assert.Equal(t, tt.wantBatches, progress.TotalBatches)
			assert.Equal(t, tt.wantBatches, progress.CurrentBatch)
			assert.Equal(t, tt.count, progress.Classified)
		})
	}
}

func TestBatchSizesAreCapped(t *testing.T) {
	ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
		return classifyAll(req), nil
	}}
	eng := New(&mockStore{}, ai)
	eng.sleep = (&countingSleep{}).sleep

	eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(450), false)

	reqs := ai.Requests()
	require.Len(t, reqs, 3)
	assert.Len(t, reqs[0].Transactions, 200)
	assert.Len(t, reqs[1].Transactions, 200)
	assert.Len(t, reqs[2].Transactions, 50)
}

func TestFailedBatchContinues(t *testing.T) {
	calls := 0
	ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
		calls++
		if calls == 1 {
			return llm.BatchResponse{}, errors.New("rate limited")
		}
		return classifyAll(req), nil
	}}
	eng := New(&mockStore{}, ai)
	eng.sleep = (&countingSleep{}).sleep

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(400), false)

	// First 200 failed, second 200 classified; the run never aborted.
	assert.Equal(t, 2, ai.CallCount())
	assert.Len(t, results, 200)

	progress := eng.Progress()
	assert.Equal(t, 200, progress.Failed)
	assert.Equal(t, 200, progress.Classified)
}

func TestUnsuccessfulResponseCountsAsFailure(t *testing.T) {
	ai := &MockAIClient{Responses: []llm.BatchResponse{{Success: false}}}
	eng := New(&mockStore{}, ai)

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(5), false)

	assert.Empty(t, results)
	assert.Equal(t, 5, eng.Progress().Failed)
}

func TestUnknownCategoriesAreDropped(t *testing.T) {
	store := &mockStore{}
	ai := &MockAIClient{Responses: []llm.BatchResponse{{
		Success: true,
		Results: []llm.Result{
			{ID: "t0", Category: "GROCERIES", Confidence: 0.9},
			{ID: "t1", Category: model.CategorySupplies, Confidence: 0.9, Vendor: "ACE HARDWARE"},
		},
	}}}
	eng := New(store, ai)

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(2), false)

	require.Len(t, results, 1)
	_, ok := results["t1"]
	assert.True(t, ok)
	assert.NotContains(t, store.updates, "t0", "unknown category must not be written back")
}

func TestDisplayCategoryNamesAreCanonicalized(t *testing.T) {
	store := &mockStore{}
	ai := &MockAIClient{Responses: []llm.BatchResponse{{
		Success: true,
		Results: []llm.Result{
			{ID: "t0", Category: "Office Expenses", Confidence: 0.9, Vendor: "STAPLES INC"},
		},
	}}}
	eng := New(store, ai)

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(1), false)

	require.Contains(t, results, "t0")
	assert.Equal(t, model.CategoryOfficeExpenses, results["t0"].Category)
	assert.Equal(t, model.CategoryOfficeExpenses, store.updates["t0"].Category)
}

func TestNeutralCategoryMarksTransfer(t *testing.T) {
	store := &mockStore{}
	ai := &MockAIClient{Responses: []llm.BatchResponse{{
		Success: true,
		Results: []llm.Result{
			{ID: "t0", Category: model.CategoryTransfer, Confidence: 0.95},
		},
	}}}
	eng := New(store, ai)

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(1), false)

	require.Contains(t, results, "t0")
	assert.True(t, results["t0"].IsTransfer)
	assert.True(t, store.updates["t0"].IsTransfer)
}

func TestWriteBackFailureSkipsTransaction(t *testing.T) {
	store := &mockStore{updateErr: errors.New("disk full")}
	ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
		return classifyAll(req), nil
	}}
	eng := New(store, ai)

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(3), false)

	assert.Empty(t, results)
	progress := eng.Progress()
	assert.Equal(t, 3, progress.Failed)
	assert.Zero(t, progress.Classified)
}

func TestCancelStopsBeforeNextBatch(t *testing.T) {
	ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
		return classifyAll(req), nil
	}}
	eng := New(&mockStore{}, ai)

	// Cancel as soon as the first inter-batch delay starts: the batch in
	// flight completed, the next one must not start.
	eng.sleep = func(_ context.Context, _ time.Duration) error {
		eng.Cancel()
		return nil
	}

	results := eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(600), false)

	assert.Equal(t, 1, ai.CallCount())
	assert.Len(t, results, 200, "the completed batch's results are kept")
	assert.False(t, eng.Progress().IsRunning)
}

func TestContextCancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
		cancel()
		return classifyAll(req), nil
	}}
	eng := New(&mockStore{}, ai)
	eng.sleep = (&countingSleep{}).sleep

	results := eng.classifyBatchesWithAI(ctx, "user-1", makeTransactions(600), false)

	assert.Equal(t, 1, ai.CallCount())
	assert.Len(t, results, 200)
}

func TestProgressSnapshotDuringRun(t *testing.T) {
	var observed []model.BatchProgress
	eng := New(&mockStore{}, nil)

	ai := &MockAIClient{ClassifyFunc: func(_ context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
		observed = append(observed, eng.Progress())
		return classifyAll(req), nil
	}}
	eng.ai = ai
	eng.sleep = (&countingSleep{}).sleep

	eng.classifyBatchesWithAI(context.Background(), "user-1", makeTransactions(500), false)

	require.Len(t, observed, 3)
	for i, p := range observed {
		assert.True(t, p.IsRunning)
		assert.Equal(t, i+1, p.CurrentBatch)
		assert.Equal(t, 3, p.TotalBatches)
	}
}
