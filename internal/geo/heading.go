package geo

import (
	"math"
	"time"
)

// headingFilter damps camera rotation jitter from noisy compass data.
// A heading is accepted only when it differs from the last accepted
// heading by more than delta degrees AND at least debounce has elapsed
// since the last acceptance. The first sample only establishes the
// baseline.
type headingFilter struct {
	delta    float64
	debounce time.Duration

	primed     bool
	last       float64
	acceptedAt time.Time
}

func newHeadingFilter(delta float64, debounce time.Duration) *headingFilter {
	return &headingFilter{delta: delta, debounce: debounce}
}

func (f *headingFilter) accept(heading float64, at time.Time) (float64, bool) {
	if !f.primed {
		f.primed = true
		f.last = heading
		f.acceptedAt = at
		return 0, false
	}

	if angularDiff(heading, f.last) <= f.delta {
		return 0, false
	}

	if at.Sub(f.acceptedAt) < f.debounce {
		return 0, false
	}

	f.last = heading
	f.acceptedAt = at
	return heading, true
}

// angularDiff returns the smallest angle between two compass bearings.
func angularDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
