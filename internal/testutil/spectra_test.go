package testutil

import "testing"

func TestBuilder(t *testing.T) {
	s := NewBuilder(10, 0.5, 5).Linear(2, 1).Scale(10.4, 11.1, 0.5).Error(0.1).Build()

	RequireSliceNearlyEqual(t, s.Wavelength, []float64{10, 10.5, 11, 11.5, 12}, 0)
	RequireSliceNearlyEqual(t, s.Flux, []float64{21, 11, 11.5, 24, 25}, 1e-12)
	RequireSliceNearlyEqual(t, s.Error, []float64{0.1, 0.1, 0.1, 0.1, 0.1}, 0)
}

func TestBuilderNoiseDeterministic(t *testing.T) {
	a := NewBuilder(0, 1, 16).Noise(7, 0.1).Build()
	b := NewBuilder(0, 1, 16).Noise(7, 0.1).Build()
	RequireSliceNearlyEqual(t, a.Flux, b.Flux, 0)

	c := NewBuilder(0, 1, 16).Noise(8, 0.1).Build()
	if MaxAbsDiff(a.Flux, c.Flux) == 0 {
		t.Fatal("different seeds produced identical noise")
	}
}
