// Package mapview is the command surface of the map renderer. Tile
// drawing and gestures live in the platform layer; this package only
// defines the commands the trip controller issues and the pan events it
// receives back.
package mapview

import "karsdrive/internal/domain"

// Camera is one camera animation command.
type Camera struct {
	Center  domain.Coordinate
	Heading float64
}

// Map is the set of commands the controller can issue to the renderer.
type Map interface {
	// SetRoute replaces the rendered route polyline. Nil clears it.
	SetRoute(points []domain.Coordinate)

	// SetWaypoints replaces the rendered waypoint markers. Nil
	// clears them.
	SetWaypoints(points []domain.Coordinate)

	// SetUserLocation moves the live user marker.
	SetUserLocation(sample domain.LocationSample)

	// AnimateCamera recenters and rotates the camera.
	AnimateCamera(camera Camera)

	// FitBounds zooms the camera so all points are visible with the
	// given padding.
	FitBounds(points []domain.Coordinate, padding float64)

	// OnPan registers the handler invoked when the user drags the
	// map. The controller uses it to leave follow mode.
	OnPan(handler func())
}
