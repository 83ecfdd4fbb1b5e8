package geo

import (
	"context"
	"math"
	"sync"
	"time"

	"karsdrive/internal/domain"
)

// Simulator is a Provider that replays a scripted path. It stands in
// for the device GPS on development machines; heading is derived from
// consecutive points.
type Simulator struct {
	mu     sync.Mutex
	path   []domain.Coordinate
	pos    int
	denied bool
}

// NewSimulator creates a Simulator walking the given path. An empty
// path parks the simulator at the origin.
func NewSimulator(path []domain.Coordinate) *Simulator {
	if len(path) == 0 {
		path = []domain.Coordinate{{}}
	}
	return &Simulator{path: path}
}

// Deny makes every subsequent call fail with ErrPermissionDenied.
func (s *Simulator) Deny() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied = true
}

var _ Provider = (*Simulator)(nil)

// Current returns the sample at the simulator's present path position.
func (s *Simulator) Current(ctx context.Context) (domain.LocationSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.denied {
		return domain.LocationSample{}, ErrPermissionDenied
	}

	return s.sampleLocked(time.Now()), nil
}

// Watch advances along the path one point per tick.
func (s *Simulator) Watch(ctx context.Context, interval time.Duration, fn func(domain.LocationSample)) (func(), error) {
	s.mu.Lock()
	denied := s.denied
	s.mu.Unlock()

	if denied {
		return nil, ErrPermissionDenied
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.mu.Lock()
				sample := s.sampleLocked(now)
				if s.pos < len(s.path)-1 {
					s.pos++
				}
				s.mu.Unlock()
				fn(sample)
			}
		}
	}()

	return cancel, nil
}

func (s *Simulator) sampleLocked(now time.Time) domain.LocationSample {
	cur := s.path[s.pos]
	heading := 0.0
	if s.pos < len(s.path)-1 {
		heading = bearing(cur, s.path[s.pos+1])
	}
	return domain.LocationSample{
		Coordinate: cur,
		Heading:    heading,
		Timestamp:  now,
	}
}

// bearing returns the initial compass bearing from a to b in degrees.
func bearing(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
