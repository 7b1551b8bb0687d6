package domain

// ProfileKind distinguishes the reference formulation from the test formulation.
type ProfileKind string

const (
	Reference ProfileKind = "R"
	Test      ProfileKind = "T"
)

// TargetReplicateCount is the pharmacopeial target number of dosage units
// per profile.
const TargetReplicateCount = 12

// TimeGrid is the strictly increasing sequence of sampling times in minutes,
// shared by all replicates of one sample.
type TimeGrid []float64

// Replicate is one dosage unit's cumulative release percentages, aligned to
// the TimeGrid by index. It may be shorter than the grid when fewer points
// were recorded for that unit.
type Replicate []float64

// Profile is one formulation instance within a sample: its kind (R or T),
// its number, a display name, and the measured replicates on a shared grid.
type Profile struct {
	Kind       ProfileKind
	Number     int
	Name       string
	Grid       TimeGrid
	Replicates []Replicate
}

// ValuesAt collects the values of every replicate that has data at grid
// index i.
func (p *Profile) ValuesAt(i int) []float64 {
	if i < 0 {
		return nil
	}
	var vals []float64
	for _, r := range p.Replicates {
		if i < len(r) {
			vals = append(vals, r[i])
		}
	}
	return vals
}

// MeanSeries returns the per-index mean across replicates, one entry per
// grid index that has at least one recorded value.
func (p *Profile) MeanSeries() []float64 {
	var series []float64
	for i := range p.Grid {
		vals := p.ValuesAt(i)
		if len(vals) == 0 {
			break
		}
		series = append(series, Mean(vals))
	}
	return series
}

// ValueSets returns the cross-replicate value set at every grid index,
// aligned with MeanSeries.
func (p *Profile) ValueSets() [][]float64 {
	var sets [][]float64
	for i := range p.Grid {
		vals := p.ValuesAt(i)
		if len(vals) == 0 {
			break
		}
		sets = append(sets, vals)
	}
	return sets
}
