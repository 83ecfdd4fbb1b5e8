package trip

import "errors"

var (
	// ErrInvalidTransition is returned when an action has no edge
	// from the current status. The order is left untouched.
	ErrInvalidTransition = errors.New("action not allowed in current status")

	// ErrNotLoaded is returned when an action arrives before the
	// order has been fetched.
	ErrNotLoaded = errors.New("order not loaded")

	// ErrPartialUpdate is returned when exactly one of the two
	// concurrent transition updates failed. The local order did not
	// advance; the surviving side was compensated on a best-effort
	// basis.
	ErrPartialUpdate = errors.New("transition partially applied on server")

	// ErrNoPosition is reported when a leg should be routed but no
	// device position is known yet.
	ErrNoPosition = errors.New("device position unknown")

	// ErrClosed is returned when the controller has been torn down.
	ErrClosed = errors.New("controller closed")
)
