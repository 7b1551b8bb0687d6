package analysis

import (
	"fmt"
	"math"

	"github.com/emiliopalmerini/dissolvo/internal/domain"
)

// earlyExitTime is the time point (minutes) at which >85% release on both
// profiles makes them similar by convention, without computing f2.
const (
	earlyExitTime    = 15.0
	earlyExitRelease = 85.0
	minFactorPoints  = 3
)

// MsgInsufficientPoints is attached to results when fewer than three usable
// points remain after selection.
const MsgInsufficientPoints = "insufficient points for factor calculation"

// FactorInput bundles one R–T comparison. R and T are the mean release
// series aligned to TimePoints. RSets and TSets optionally carry the
// cross-replicate value sets per index; when absent, per-point dispersion
// degrades to single-element sets, which always pass. ManualPoints, when
// set, overrides automatic point selection.
type FactorInput struct {
	TimePoints []float64
	R          []float64
	T          []float64
	RSets      [][]float64
	TSets      [][]float64

	ManualPoints []int
}

// Calculator computes the f1 difference and f2 similarity factors.
type Calculator struct {
	rsdLimit float64
}

// NewCalculator creates a Calculator flagging points whose replicate RSD
// exceeds rsdLimit percent.
func NewCalculator(rsdLimit float64) *Calculator {
	return &Calculator{rsdLimit: rsdLimit}
}

// Compute evaluates the regulatory comparison: early exit at the 15-minute
// point, point selection, then f2 and both f1 variants. Failures are
// reported through the result message, never as an error; every division
// is guarded.
func (c *Calculator) Compute(in FactorInput) domain.FactorResult {
	if msg, ok := c.earlyExit(in); ok {
		return domain.FactorResult{Message: msg}
	}

	points, advisory, ok := c.selectPoints(in)
	if !ok {
		return domain.FactorResult{Message: MsgInsufficientPoints}
	}

	res := domain.FactorResult{Points: points, Message: advisory}

	// f2: 50*log10(100/sqrt(1 + sumSq/n)), undefined for identical curves.
	sumSq := 0.0
	for _, p := range points {
		d := in.R[p] - in.T[p]
		sumSq += d * d
	}
	if sumSq > 0 {
		f2 := 50 * math.Log10(100/math.Sqrt(1+sumSq/float64(len(points))))
		res.F2 = &f2
	}

	overlap := min(len(in.R), len(in.T))
	all := make([]int, 0, overlap)
	for i := 0; i < overlap; i++ {
		all = append(all, i)
	}
	res.F1All = f1(in.R, in.T, all)
	res.F1Selected = f1(in.R, in.T, points)

	return res
}

// earlyExit reports whether both profiles release more than 85% within 15
// minutes, in which case they are considered similar without calculation.
func (c *Calculator) earlyExit(in FactorInput) (string, bool) {
	for i, tp := range in.TimePoints {
		if tp != earlyExitTime || i >= len(in.R) || i >= len(in.T) {
			continue
		}
		if in.R[i] > earlyExitRelease && in.T[i] > earlyExitRelease {
			return fmt.Sprintf("both profiles release more than %.0f%% within %.0f minutes; considered similar without f2", earlyExitRelease, earlyExitTime), true
		}
	}
	return "", false
}

func (c *Calculator) selectPoints(in FactorInput) (points []int, advisory string, ok bool) {
	overlap := min(len(in.R), len(in.T))

	if in.ManualPoints != nil {
		for _, p := range in.ManualPoints {
			if p >= 0 && p < overlap {
				points = append(points, p)
			}
		}
		if len(points) < minFactorPoints {
			return nil, "", false
		}
		return points, "", true
	}

	start := 0
	if len(in.R) > 0 {
		start = 1
	}
	for i := start; i < overlap; i++ {
		points = append(points, i)
		rsdR, rsdT := CheckDispersion(c.setAt(in.RSets, in.R, i), c.setAt(in.TSets, in.T, i))
		if rsdR > c.rsdLimit || rsdT > c.rsdLimit {
			// Later offending points overwrite earlier warnings.
			label := fmt.Sprintf("index %d", i)
			if i < len(in.TimePoints) {
				label = fmt.Sprintf("t=%v min", in.TimePoints[i])
			}
			advisory = fmt.Sprintf("RSD above %.0f%% at %s", c.rsdLimit, label)
		}
	}
	if len(points) < minFactorPoints {
		return nil, "", false
	}
	return points, advisory, true
}

// setAt prefers the cross-replicate set at index i and falls back to the
// single mean value, which always yields RSD 0.
func (c *Calculator) setAt(sets [][]float64, series []float64, i int) []float64 {
	if i < len(sets) && len(sets[i]) > 0 {
		return sets[i]
	}
	return []float64{series[i]}
}

// f1 is sum|R-T| / sumR * 100 over the given points, nil when sumR is not
// positive. Normalized by R only, so f1(r,t) != f1(t,r) in general.
func f1(r, t []float64, points []int) *float64 {
	sumAbs, sumR := 0.0, 0.0
	for _, p := range points {
		sumAbs += math.Abs(r[p] - t[p])
		sumR += r[p]
	}
	if sumR <= 0 {
		return nil
	}
	v := sumAbs / sumR * 100
	return &v
}
