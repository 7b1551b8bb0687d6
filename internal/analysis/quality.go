package analysis

import "github.com/emiliopalmerini/dissolvo/internal/domain"

// DefaultFactorRSDLimit is the dispersion limit (%) above which a point
// triggers an advisory during factor point selection.
const DefaultFactorRSDLimit = 20.0

// DefaultRSDTolerance is the stricter advisory dispersion threshold (%)
// applied by the pipeline outside factor calculation.
const DefaultRSDTolerance = 2.0

// CheckDispersion computes the relative standard deviation of the two value
// sets. The check is advisory only: callers attach a warning when a limit is
// exceeded but never abort. A single-element set always yields 0.
func CheckDispersion(rValues, tValues []float64) (rsdR, rsdT float64) {
	return domain.RSD(rValues), domain.RSD(tValues)
}
