package domain

import "time"

// Run identifies one batch analysis over a workbook.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// PairResult is a FactorResult bound to the sample and profile pair it was
// computed for, as persisted by the result repository.
type PairResult struct {
	RunID     string
	SampleID  string
	Reference string
	Test      string
	Result    FactorResult
	CreatedAt time.Time
}
