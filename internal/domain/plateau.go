package domain

// PlateauResult locates the grid index at which replicate dispersion
// stabilized, together with the mean and standard deviation of the
// cross-replicate values at that index.
type PlateauResult struct {
	Index  int
	Mean   float64
	StdDev float64
}

// NoPlateau is the sentinel for "no plateau found": the index points one
// past the end of the grid. Downstream code treats it as an ordinary
// result, not an error.
func NoPlateau(gridLen int) PlateauResult {
	return PlateauResult{Index: gridLen}
}

// Found reports whether the result denotes an actual plateau on a grid of
// the given length.
func (r PlateauResult) Found(gridLen int) bool {
	return r.Index < gridLen
}
