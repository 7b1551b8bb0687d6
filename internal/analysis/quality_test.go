package analysis

import (
	"math"
	"testing"
)

func TestCheckDispersion(t *testing.T) {
	tests := []struct {
		name    string
		rValues []float64
		tValues []float64
		wantR   float64
		wantT   float64
	}{
		{
			name:    "cross-replicate sets",
			rValues: []float64{10, 12, 14},
			tValues: []float64{20, 20, 20},
			wantR:   2.0 / 12.0 * 100,
			wantT:   0,
		},
		{
			// Legacy call shape: a single-element set carries no
			// dispersion and always yields 0.
			name:    "single-element sets",
			rValues: []float64{61},
			tValues: []float64{58},
			wantR:   0,
			wantT:   0,
		},
		{
			name:    "empty sets",
			rValues: nil,
			tValues: nil,
			wantR:   0,
			wantT:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotR, gotT := CheckDispersion(tt.rValues, tt.tValues)
			if math.Abs(gotR-tt.wantR) > 1e-9 || math.Abs(gotT-tt.wantT) > 1e-9 {
				t.Errorf("CheckDispersion = (%v, %v), want (%v, %v)", gotR, gotT, tt.wantR, tt.wantT)
			}
		})
	}
}

func TestCheckDispersionFlagsHighRSD(t *testing.T) {
	// Mean 10, std ≈ 10.8: RSD well above the 20% limit.
	rsdR, _ := CheckDispersion([]float64{0, 10, 5, 25}, []float64{10, 10, 10})
	if rsdR <= DefaultFactorRSDLimit {
		t.Errorf("rsdR = %v, expected above %v", rsdR, DefaultFactorRSDLimit)
	}
}
