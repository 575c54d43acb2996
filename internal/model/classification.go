package model

// ClassificationSource indicates which layer of the pipeline produced a
// classification result.
type ClassificationSource string

// Classification source constants.
const (
	SourceUserRule      ClassificationSource = "user_rule"
	SourceDefaultVendor ClassificationSource = "default_vendor"
	SourceAI            ClassificationSource = "gemini_api"
	SourceManual        ClassificationSource = "manual"
	SourceUnclassified  ClassificationSource = "unclassified"
)

// ClassificationResult is the outcome of classifying one transaction. It is
// derived data: the only persistence is the category fields written back
// onto the transaction record.
type ClassificationResult struct {
	Category    string
	Subcategory string
	Vendor      string
	Source      ClassificationSource
	Confidence  float64
	NeedsReview bool
	IsTransfer  bool
}

// Classified reports whether any layer produced a category.
func (r ClassificationResult) Classified() bool {
	return r.Source != SourceUnclassified && r.Category != ""
}
