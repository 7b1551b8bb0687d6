package domain

import (
	"math"
	"testing"
)

func TestRSD(t *testing.T) {
	tests := []struct {
		name     string
		vals     []float64
		expected float64
	}{
		{
			name:     "normal case",
			vals:     []float64{10, 12, 14},
			expected: 2.0 / 12.0 * 100, // std 2, mean 12
		},
		{
			name:     "single element — no dispersion",
			vals:     []float64{42},
			expected: 0,
		},
		{
			name:     "empty set",
			vals:     nil,
			expected: 0,
		},
		{
			name:     "zero mean — division guarded",
			vals:     []float64{-1, 0, 1},
			expected: 0,
		},
		{
			name:     "constant values",
			vals:     []float64{5, 5, 5, 5},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSD(tt.vals)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("RSD(%v) = %v, want %v", tt.vals, got, tt.expected)
			}
		})
	}
}

func TestStdDevUnbiased(t *testing.T) {
	// Sample std of {2, 4, 4, 4, 5, 5, 7, 9} with n-1 is sqrt(32/7).
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("StdDev = %v, want %v", got, want)
	}
}

func TestProfileValuesAt(t *testing.T) {
	p := &Profile{
		Kind: Reference,
		Grid: TimeGrid{5, 10, 15},
		Replicates: []Replicate{
			{10, 20, 30},
			{11, 21},
			{12, 22, 32},
		},
	}

	if got := p.ValuesAt(1); len(got) != 3 {
		t.Errorf("ValuesAt(1) returned %d values, want 3", len(got))
	}
	// The short replicate has no value at index 2.
	if got := p.ValuesAt(2); len(got) != 2 {
		t.Errorf("ValuesAt(2) returned %d values, want 2", len(got))
	}
	if got := p.ValuesAt(5); got != nil {
		t.Errorf("ValuesAt(5) = %v, want nil", got)
	}
}

func TestProfileMeanSeries(t *testing.T) {
	p := &Profile{
		Grid: TimeGrid{5, 10},
		Replicates: []Replicate{
			{10, 20},
			{20, 40},
		},
	}
	series := p.MeanSeries()
	if len(series) != 2 || series[0] != 15 || series[1] != 30 {
		t.Errorf("MeanSeries = %v, want [15 30]", series)
	}
}

func TestNoPlateauSentinel(t *testing.T) {
	r := NoPlateau(8)
	if r.Index != 8 || r.Mean != 0 || r.StdDev != 0 {
		t.Errorf("NoPlateau(8) = %+v", r)
	}
	if r.Found(8) {
		t.Error("sentinel must not report a plateau")
	}
	if !(PlateauResult{Index: 3}).Found(8) {
		t.Error("index inside the grid must report a plateau")
	}
}
