package model

// BatchProgress is a snapshot of one AI classification run. Snapshots are
// immutable values; the batch classifier hands out copies and the caller
// re-renders from them.
type BatchProgress struct {
	IsRunning    bool
	CurrentBatch int
	TotalBatches int
	Classified   int
	Failed       int
	RulesCreated int
}
