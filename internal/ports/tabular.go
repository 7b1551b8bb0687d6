package ports

import "context"

// Cell is one resolved numeric cell. Valid is false for cells the
// collaborator could not resolve; those are missing data points, not
// errors.
type Cell struct {
	Float64 float64
	Valid   bool
}

// Range is an inclusive zero-based index range.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices the range spans.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// ProfileBlock locates one formulation's replicate columns within a sample
// block. Kind is "R" or "T"; Number pairs references with tests. Columns
// need not be contiguous: generated replicates land after the measured
// blocks and are grouped back by header name.
type ProfileBlock struct {
	Name   string
	Kind   string
	Number int
	Cols   []int
}

// SampleBlock describes where one sample's data sits in the tabular
// document: the time-grid column, the data rows, and the profile column
// blocks. Discovery is the collaborator's job; the core only consumes the
// coordinates.
type SampleBlock struct {
	SampleID string
	TimeCol  int
	DataRows Range
	Profiles []ProfileBlock
}

// SampleSource lists the sample blocks present in the document.
type SampleSource interface {
	Samples(ctx context.Context) ([]SampleBlock, error)
}

// TabularReader reads a fully resolved snapshot of numeric values. The core
// never interprets formulas; the collaborator resolves everything before
// the snapshot is taken.
type TabularReader interface {
	Read(ctx context.Context, sampleID string, rows, cols Range) ([][]Cell, error)
}

// TabularWriter buffers plain values into the document. Nothing written is
// visible to readers until Commit; after Commit, readers observe a fresh
// snapshot including the written values. This is the two-phase
// commit-then-refetch contract between the core and the collaborator.
type TabularWriter interface {
	Write(ctx context.Context, sampleID string, row, col int, value float64) error
	WriteString(ctx context.Context, sampleID string, row, col int, value string) error
	Commit(ctx context.Context) error
}
