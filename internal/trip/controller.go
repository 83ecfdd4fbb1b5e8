// Package trip owns the client-side order lifecycle: the status state
// machine, leg routing, live position following, and the map commands
// that keep the screen in sync with all three.
package trip

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"karsdrive/internal/api"
	"karsdrive/internal/domain"
	"karsdrive/internal/geo"
	"karsdrive/internal/mapview"
)

// fitPadding is the camera padding used when framing a new route.
const fitPadding = 50

// RouteBuilder resolves addresses and builds driving routes.
type RouteBuilder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinate, error)
	Route(ctx context.Context, origin domain.Coordinate, destinations ...domain.Coordinate) (*domain.RouteResult, error)
}

// State is a copy of the controller state for the presentation layer.
type State struct {
	Order   *domain.Order
	Route   *domain.RouteResult
	Follow  bool
	Actions []Action
	// Fault is the latest user-surfaced failure message, empty when
	// the last operation succeeded.
	Fault string
}

type eventKind int

const (
	evAction eventKind = iota
	evPosition
	evHeading
	evPan
	evFollowOn
	evLegResult
)

type event struct {
	kind    eventKind
	action  Action
	sample  domain.LocationSample
	heading float64

	// leg build result
	epoch uint64
	route *domain.RouteResult
	dest  domain.Coordinate
	err   error

	reply chan error
}

// Controller drives one order-detail screen.
type Controller struct {
	orders   api.OrderRepository
	users    api.UserRepository
	tracker  *geo.Tracker
	router   RouteBuilder
	view     mapview.Map
	driverID string
	logger   *log.Logger

	loopCtx context.Context
	stop    context.CancelFunc
	events  chan event
	done    chan struct{}

	// Loop-owned state. Only the event loop goroutine touches these.
	order    *domain.Order
	driver   *domain.User
	position *domain.LocationSample
	heading  float64
	route    *domain.RouteResult
	legBuilt bool
	building bool
	centered bool
	epoch    uint64
	follow   bool
	fault    string

	mu       sync.RWMutex
	snapshot State
}

// NewController creates a Controller for the given driver. Call Open to
// load an order and start the event loop.
func NewController(orders api.OrderRepository, users api.UserRepository, tracker *geo.Tracker, router RouteBuilder, view mapview.Map, driverID string, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		orders:   orders,
		users:    users,
		tracker:  tracker,
		router:   router,
		view:     view,
		driverID: driverID,
		logger:   logger,
		loopCtx:  ctx,
		stop:     cancel,
		events:   make(chan event, 32),
		done:     make(chan struct{}),
		follow:   true,
	}
}

// Open fetches the order, starts the event loop and the position
// stream. The sheet must only be presented after Open returns nil.
func (c *Controller) Open(ctx context.Context, orderID string) error {
	order, err := c.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	c.order = order

	c.view.OnPan(func() { c.post(event{kind: evPan}) })

	if err := c.startWatch(); err != nil {
		c.logger.Printf("trip: location watch unavailable: %v", err)
		c.setFault(err)
	}
	c.publish()

	go c.run()

	return nil
}

// Do performs a driver action. It returns only after the server
// updates completed (or failed); on failure the local state is
// unchanged.
func (c *Controller) Do(ctx context.Context, action Action) error {
	ev := event{kind: evAction, action: action, reply: make(chan error, 1)}
	select {
	case c.events <- ev:
	case <-c.loopCtx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-ev.reply:
		return err
	case <-c.loopCtx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnableFollow re-enters follow mode after the user panned away.
func (c *Controller) EnableFollow() {
	c.post(event{kind: evFollowOn})
}

// State returns a copy of the current controller state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Close tears the screen down: the position stream is cancelled and
// the event loop exits. In-flight leg builds are discarded.
func (c *Controller) Close() {
	c.stop()
	c.tracker.Stop()
	<-c.done
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.loopCtx.Done():
	}
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.loopCtx.Done():
			return
		case ev := <-c.events:
			c.dispatch(ev)
			c.publish()
		}
	}
}

// dispatch is the single place state changes. Every input — user
// actions, position samples, accepted headings, pan gestures, and leg
// build results — arrives here in order.
func (c *Controller) dispatch(ev event) {
	switch ev.kind {
	case evAction:
		c.fault = ""
		err := c.transition(ev.action)
		if err != nil {
			c.setFault(err)
		}
		// Publish before replying so Do's caller reads the new state.
		c.publish()
		if ev.reply != nil {
			ev.reply <- err
		}

	case evPosition:
		sample := ev.sample
		c.position = &sample
		c.view.SetUserLocation(sample)
		if c.follow {
			c.view.AnimateCamera(mapview.Camera{Center: sample.Coordinate, Heading: c.heading})
		}
		c.maybeBuildLeg()

	case evHeading:
		c.heading = ev.heading
		if c.follow && c.position != nil {
			c.view.AnimateCamera(mapview.Camera{Center: c.position.Coordinate, Heading: c.heading})
		}

	case evPan:
		// The user took manual control: stop auto-centering and
		// release the position stream until follow is re-enabled.
		if c.follow {
			c.follow = false
			c.tracker.Stop()
		}

	case evFollowOn:
		if !c.follow {
			c.follow = true
			if err := c.startWatch(); err != nil {
				c.setFault(err)
				return
			}
			if c.position != nil {
				c.view.AnimateCamera(mapview.Camera{Center: c.position.Coordinate, Heading: c.heading})
			}
		}

	case evLegResult:
		c.applyLegResult(ev)
	}
}

// transition runs one edge of the state machine: server first, local
// state only after the server confirmed.
func (c *Controller) transition(action Action) error {
	if c.order == nil {
		return ErrNotLoaded
	}

	to, ok := nextStatus(c.order.Status, action)
	if !ok {
		return ErrInvalidTransition
	}

	ctx := c.loopCtx

	var (
		updated *domain.Order
		driver  *domain.User
		err     error
	)

	switch action {
	case ActionAccept:
		updated, driver, err = c.patchBoth(ctx,
			api.OrderPatch{Status: &to, IsActive: boolPtr(true)},
			api.UserPatch{OnOrder: strPtr(c.order.ID)},
			// Compensations revert the side that succeeded alone.
			api.OrderPatch{Status: statusPtr(domain.OrderStatusPending), IsActive: boolPtr(false)},
			api.UserPatch{OnOrder: strPtr("")},
		)
	case ActionEnd:
		updated, driver, err = c.patchBoth(ctx,
			api.OrderPatch{Status: &to, IsActive: boolPtr(false)},
			api.UserPatch{OnOrder: strPtr("")},
			api.OrderPatch{Status: statusPtr(domain.OrderStatusStarted), IsActive: boolPtr(true)},
			api.UserPatch{OnOrder: strPtr(c.order.ID)},
		)
	default:
		updated, err = c.orders.Patch(ctx, c.order.ID, api.OrderPatch{Status: &to})
	}
	if err != nil {
		return err
	}

	// The server's representation wins over a local echo.
	c.order = updated
	if driver != nil {
		c.driver = driver
	}
	c.applyStatus()
	return nil
}

// patchBoth issues the order and driver updates concurrently. Both
// must succeed; when exactly one fails the other is compensated once
// and the transition reports ErrPartialUpdate.
func (c *Controller) patchBoth(ctx context.Context, op api.OrderPatch, up api.UserPatch, compOrder api.OrderPatch, compUser api.UserPatch) (*domain.Order, *domain.User, error) {
	type orderResult struct {
		order *domain.Order
		err   error
	}
	type userResult struct {
		user *domain.User
		err  error
	}

	orderCh := make(chan orderResult, 1)
	userCh := make(chan userResult, 1)

	go func() {
		o, err := c.orders.Patch(ctx, c.order.ID, op)
		orderCh <- orderResult{o, err}
	}()
	go func() {
		u, err := c.users.Patch(ctx, c.driverID, up)
		userCh <- userResult{u, err}
	}()

	or := <-orderCh
	ur := <-userCh

	switch {
	case or.err == nil && ur.err == nil:
		return or.order, ur.user, nil

	case or.err != nil && ur.err != nil:
		return nil, nil, or.err

	case or.err == nil:
		// Order advanced but the driver association did not.
		if _, cerr := c.orders.Patch(ctx, c.order.ID, compOrder); cerr != nil {
			c.logger.Printf("trip: compensating order update failed: %v", cerr)
		}
		return nil, nil, fmt.Errorf("%w: driver update: %v", ErrPartialUpdate, ur.err)

	default:
		if _, cerr := c.users.Patch(ctx, c.driverID, compUser); cerr != nil {
			c.logger.Printf("trip: compensating driver update failed: %v", cerr)
		}
		return nil, nil, fmt.Errorf("%w: order update: %v", ErrPartialUpdate, or.err)
	}
}

// applyStatus reacts to a confirmed status change. Any in-flight leg
// build belongs to the previous epoch and will be discarded on arrival.
func (c *Controller) applyStatus() {
	c.epoch++
	c.building = false
	c.legBuilt = false
	c.route = nil
	c.centered = false
	c.view.SetRoute(nil)
	c.view.SetWaypoints(nil)

	switch c.order.Status {
	case domain.OrderStatusActive, domain.OrderStatusStarted:
		c.maybeBuildLeg()
	default:
		// pending, arrived, ended: no leg to route; resume
		// following the driver.
		if !c.follow {
			c.follow = true
			if err := c.startWatch(); err != nil {
				c.setFault(err)
			}
		}
	}
}

// maybeBuildLeg starts routing the current leg when the status calls
// for one, the device position is known, and no build is already done
// or running for this leg.
func (c *Controller) maybeBuildLeg() {
	if c.order == nil || c.legBuilt || c.building {
		return
	}

	var address string
	switch c.order.Status {
	case domain.OrderStatusActive:
		address = c.order.From
	case domain.OrderStatusStarted:
		address = c.order.To
	default:
		return
	}

	if c.position == nil {
		c.setFault(ErrNoPosition)
		return
	}

	c.building = true
	go c.buildLeg(c.epoch, c.position.Coordinate, address)
}

// buildLeg runs off the event loop; the result is posted back with the
// epoch it was built for.
func (c *Controller) buildLeg(epoch uint64, origin domain.Coordinate, address string) {
	dest, err := c.router.Geocode(c.loopCtx, address)
	if err != nil {
		c.post(event{kind: evLegResult, epoch: epoch, err: err})
		return
	}

	route, err := c.router.Route(c.loopCtx, origin, dest)
	if err != nil {
		c.post(event{kind: evLegResult, epoch: epoch, err: err})
		return
	}

	c.post(event{kind: evLegResult, epoch: epoch, route: route, dest: dest})
}

func (c *Controller) applyLegResult(ev event) {
	if ev.epoch != c.epoch {
		// Built for a leg that no longer exists.
		c.logger.Printf("trip: discarding stale leg result (epoch %d, now %d)", ev.epoch, c.epoch)
		return
	}

	c.building = false

	if ev.err != nil {
		// Leave legBuilt false so the next position sample can
		// retry.
		c.setFault(ev.err)
		return
	}

	c.route = ev.route
	c.legBuilt = true
	c.fault = ""

	c.view.SetRoute(ev.route.Points)
	c.view.SetWaypoints([]domain.Coordinate{ev.dest})
	if !c.centered {
		c.view.FitBounds(ev.route.Points, fitPadding)
		c.centered = true
	}
	if len(ev.route.Points) > 0 {
		c.view.AnimateCamera(mapview.Camera{Center: ev.route.Points[0], Heading: c.heading})
	}
}

func (c *Controller) startWatch() error {
	_, err := c.tracker.Watch(c.loopCtx,
		func(sample domain.LocationSample) { c.post(event{kind: evPosition, sample: sample}) },
		func(heading float64) { c.post(event{kind: evHeading, heading: heading}) },
	)
	return err
}

func (c *Controller) setFault(err error) {
	if err == nil {
		c.fault = ""
		return
	}
	c.fault = err.Error()
	if !errors.Is(err, ErrInvalidTransition) {
		c.logger.Printf("trip: %v", err)
	}
}

// publish refreshes the snapshot read by the presentation layer.
func (c *Controller) publish() {
	var state State
	if c.order != nil {
		order := *c.order
		state.Order = &order
		state.Actions = ActionsFor(order.Status)
	}
	state.Route = c.route
	state.Follow = c.follow
	state.Fault = c.fault

	c.mu.Lock()
	c.snapshot = state
	c.mu.Unlock()
}

func boolPtr(v bool) *bool                           { return &v }
func strPtr(v string) *string                        { return &v }
func statusPtr(v domain.OrderStatus) *domain.OrderStatus { return &v }
