package domain

// FactorResult carries the outcome of one R–T profile comparison. Factors
// that could not be computed stay nil; Message explains why, or carries a
// dispersion advisory when computation succeeded anyway.
type FactorResult struct {
	F1All      *float64
	F1Selected *float64
	F2         *float64
	Points     []int
	Message    string
}

// Computed reports whether at least one factor was produced.
func (r *FactorResult) Computed() bool {
	return r.F1All != nil || r.F1Selected != nil || r.F2 != nil
}
