package analysis

import (
	"math"

	"github.com/emiliopalmerini/dissolvo/internal/domain"
)

// DefaultPlateauThreshold is the default bound on the change in RSD between
// consecutive time points below which the release is considered flattened.
const DefaultPlateauThreshold = 0.05

// minReplicatesForRSD is the smallest cross-replicate set for which a
// dispersion comparison is meaningful.
const minReplicatesForRSD = 3

// DetectPlateau scans the grid for the first index at which replicate
// dispersion stops changing: |RSD(i) - RSD(i-1)| < threshold. It returns
// the sentinel domain.NoPlateau when no index qualifies; callers treat the
// sentinel as "no plateau", not as an error.
func DetectPlateau(grid domain.TimeGrid, replicates []domain.Replicate, threshold float64) domain.PlateauResult {
	for i := 1; i < len(grid); i++ {
		cur := valuesAt(replicates, i)
		if len(cur) < minReplicatesForRSD {
			continue
		}
		prev := valuesAt(replicates, i-1)
		if len(prev) < minReplicatesForRSD {
			continue
		}

		if math.Abs(domain.RSD(cur)-domain.RSD(prev)) < threshold {
			return domain.PlateauResult{
				Index:  i,
				Mean:   domain.Mean(cur),
				StdDev: domain.StdDev(cur),
			}
		}
	}
	return domain.NoPlateau(len(grid))
}

func valuesAt(replicates []domain.Replicate, i int) []float64 {
	var vals []float64
	for _, r := range replicates {
		if i < len(r) {
			vals = append(vals, r[i])
		}
	}
	return vals
}
