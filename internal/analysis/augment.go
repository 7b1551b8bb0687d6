package analysis

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emiliopalmerini/dissolvo/internal/domain"
)

// DefaultRoundingPrecision is the number of decimal places generated values
// are rounded to before being handed to storage.
const DefaultRoundingPrecision = 4

// monotonicIncrementShare bounds the uniform increment used to keep a
// generated pre-plateau curve increasing: 0 to 5% of the time-t mean.
const monotonicIncrementShare = 0.05

// Augmentor generates synthetic replicates so a profile reaches the target
// replicate count. The random source is injected so tests can fix the seed.
type Augmentor struct {
	precision int
	threshold float64
	src       rand.Source
}

// NewAugmentor creates an Augmentor rounding to the given number of decimal
// places and detecting the plateau with the given RSD-change threshold.
func NewAugmentor(precision int, plateauThreshold float64, src rand.Source) *Augmentor {
	return &Augmentor{
		precision: precision,
		threshold: plateauThreshold,
		src:       src,
	}
}

// Augment appends numNew synthetic replicates to the profile and returns it.
// With numNew <= 0 the profile is returned unchanged. Before the plateau
// index each value is drawn from Normal(mean(t), std(t)) of the measured
// replicates, clamped to >= 0 and forced to exceed the previous generated
// value; at and after the plateau values are drawn around the plateau mean
// with no monotonicity constraint. Every grid index must have at least one
// measured value.
func (a *Augmentor) Augment(p *domain.Profile, numNew int) (*domain.Profile, error) {
	if numNew <= 0 {
		return p, nil
	}

	plateau := DetectPlateau(p.Grid, p.Replicates, a.threshold)

	// Parameters come from the measured replicates only, so they are
	// computed once rather than per generated replicate.
	means := make([]float64, len(p.Grid))
	stds := make([]float64, len(p.Grid))
	for t := range p.Grid {
		vals := p.ValuesAt(t)
		if len(vals) == 0 {
			return nil, fmt.Errorf("no measured value at time %v min (index %d)", p.Grid[t], t)
		}
		means[t] = domain.Mean(vals)
		stds[t] = domain.StdDev(vals)
	}

	for n := 0; n < numNew; n++ {
		generated := make(domain.Replicate, len(p.Grid))
		prev := 0.0
		for t := range p.Grid {
			var v float64
			if t < plateau.Index {
				v = a.normal(means[t], stds[t])
				if v < 0 {
					v = 0
				}
				if t > 0 && v <= prev {
					v = prev + a.uniform(monotonicIncrementShare*means[t])
				}
				v = round(v, a.precision)
				// Rounding can collapse a tiny increment back onto the
				// previous value; keep the curve strictly increasing at
				// the configured precision.
				if t > 0 && v <= prev {
					v = round(prev+math.Pow10(-a.precision), a.precision)
				}
			} else {
				v = a.normal(plateau.Mean, plateau.StdDev)
				if v < 0 {
					v = 0
				}
				v = round(v, a.precision)
			}
			generated[t] = v
			prev = v
		}
		p.Replicates = append(p.Replicates, generated)
	}

	return p, nil
}

func (a *Augmentor) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: a.src}.Rand()
}

func (a *Augmentor) uniform(max float64) float64 {
	if max <= 0 {
		return 0
	}
	return distuv.Uniform{Min: 0, Max: max, Src: a.src}.Rand()
}

func round(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Round(v*scale) / scale
}
