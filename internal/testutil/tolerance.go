package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance). NaN matches NaN.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !NearlyEqual(got[i], want[i], eps) {
			t.Fatalf("index %d: got %v, want %v (eps %v)", i, got[i], want[i], eps)
		}
	}
}

// RequireNearlyEqual fails t if got and want differ by more than eps.
func RequireNearlyEqual(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if !NearlyEqual(got, want, eps) {
		t.Fatalf("%s: got %v, want %v (diff %v > eps %v)", name, got, want, math.Abs(got-want), eps)
	}
}

// RequireFinite fails t if any measurement in data is NaN or Inf.
func RequireFinite(t *testing.T, name string, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s[%d] = %v, want a finite value", name, i, v)
		}
	}
}

// RequireAllNaN fails t unless every element is NaN.
func RequireAllNaN(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if !math.IsNaN(v) {
			t.Fatalf("index %d: got %v, want NaN", i, v)
		}
	}
}

// NearlyEqual reports whether a and b differ by at most eps. Two NaNs
// compare equal.
func NearlyEqual(a, b, eps float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= eps
}

// MaxAbsDiff returns the largest absolute difference between two
// measurement rows. Positions where both are NaN agree; a NaN facing a
// number, or rows of different length, give +Inf.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	worst := 0.0

	for i := range a {
		switch na, nb := math.IsNaN(a[i]), math.IsNaN(b[i]); {
		case na && nb:
			continue
		case na || nb:
			return math.Inf(1)
		}

		worst = max(worst, math.Abs(a[i]-b[i]))
	}

	return worst
}
