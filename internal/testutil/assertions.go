package testutil

import (
	"math"
	"testing"
)

// AssertClose checks two floats agree within a relative tolerance
func AssertClose(t *testing.T, actual, expected, tolerance float64, context string) {
	t.Helper()
	if expected == 0 {
		if math.Abs(actual) > tolerance {
			t.Errorf("%s: expected ~0, got %g", context, actual)
		}
		return
	}
	if math.Abs(actual-expected)/math.Abs(expected) > tolerance {
		t.Errorf("%s: expected %g, got %g", context, expected, actual)
	}
}
