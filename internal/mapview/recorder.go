package mapview

import (
	"sync"

	"karsdrive/internal/domain"
)

// Recorder is a Map that records every command. It backs the headless
// console renderer and stands in for the platform map in tests.
type Recorder struct {
	mu         sync.Mutex
	route      []domain.Coordinate
	waypoints  []domain.Coordinate
	user       domain.LocationSample
	cameras    []Camera
	fitCalls   int
	panHandler func()
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

var _ Map = (*Recorder)(nil)

// SetRoute replaces the rendered route polyline.
func (r *Recorder) SetRoute(points []domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = points
}

// SetWaypoints replaces the rendered waypoint markers.
func (r *Recorder) SetWaypoints(points []domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waypoints = points
}

// SetUserLocation moves the live user marker.
func (r *Recorder) SetUserLocation(sample domain.LocationSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user = sample
}

// AnimateCamera records a camera animation.
func (r *Recorder) AnimateCamera(camera Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameras = append(r.cameras, camera)
}

// FitBounds records a fit-to-bounds command.
func (r *Recorder) FitBounds(points []domain.Coordinate, padding float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fitCalls++
}

// OnPan registers the pan handler.
func (r *Recorder) OnPan(handler func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panHandler = handler
}

// Pan simulates the user dragging the map.
func (r *Recorder) Pan() {
	r.mu.Lock()
	handler := r.panHandler
	r.mu.Unlock()
	if handler != nil {
		handler()
	}
}

// Route returns the current route polyline.
func (r *Recorder) Route() []domain.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Coordinate(nil), r.route...)
}

// Waypoints returns the current waypoint markers.
func (r *Recorder) Waypoints() []domain.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Coordinate(nil), r.waypoints...)
}

// UserLocation returns the last user marker position.
func (r *Recorder) UserLocation() domain.LocationSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user
}

// Cameras returns every camera animation issued so far.
func (r *Recorder) Cameras() []Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Camera(nil), r.cameras...)
}

// LastCamera returns the most recent camera animation.
func (r *Recorder) LastCamera() (Camera, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cameras) == 0 {
		return Camera{}, false
	}
	return r.cameras[len(r.cameras)-1], true
}

// FitCalls returns how many fit-to-bounds commands were issued.
func (r *Recorder) FitCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fitCalls
}
