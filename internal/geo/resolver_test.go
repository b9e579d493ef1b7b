package geo

import (
	"math"
	"testing"
)

func TestHaversineMiles(t *testing.T) {
	t.Parallel()

	if got := HaversineMiles(40.7128, -74.0060, 40.7128, -74.0060); got != 0 {
		t.Fatalf("distance to self = %v, want 0", got)
	}

	// One degree of latitude is about 69 miles.
	got := HaversineMiles(40.0, -74.0, 41.0, -74.0)
	if math.Abs(got-69.1) > 0.5 {
		t.Fatalf("one degree latitude = %v miles, want ~69.1", got)
	}

	// NYC to LA is roughly 2,450 miles great circle.
	got = HaversineMiles(40.7128, -74.0060, 34.0522, -118.2437)
	if got < 2400 || got > 2500 {
		t.Fatalf("NYC-LA = %v miles, want ~2450", got)
	}
}
