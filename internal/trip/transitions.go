package trip

import "karsdrive/internal/domain"

// Action is a driver-initiated lifecycle action.
type Action string

const (
	// ActionAccept takes the order (pending → active).
	ActionAccept Action = "accept"
	// ActionArrive marks arrival at the pickup point (active → arrived).
	ActionArrive Action = "arrive"
	// ActionStart begins the ride (arrived → started).
	ActionStart Action = "start"
	// ActionEnd completes the ride (started → ended).
	ActionEnd Action = "end"
	// ActionRate opens the rating flow on a finished order. It is a
	// presentation affordance only and never transitions the order.
	ActionRate Action = "rate"
)

// transition is a single allowed edge in the order state machine.
type transition struct {
	From   domain.OrderStatus
	Action Action
	To     domain.OrderStatus
}

var transitions = []transition{
	{From: domain.OrderStatusPending, Action: ActionAccept, To: domain.OrderStatusActive},
	{From: domain.OrderStatusActive, Action: ActionArrive, To: domain.OrderStatusArrived},
	{From: domain.OrderStatusArrived, Action: ActionStart, To: domain.OrderStatusStarted},
	{From: domain.OrderStatusStarted, Action: ActionEnd, To: domain.OrderStatusEnded},
}

// nextStatus returns the status the action leads to from the given
// state, and whether the edge exists.
func nextStatus(from domain.OrderStatus, action Action) (domain.OrderStatus, bool) {
	for _, t := range transitions {
		if t.From == from && t.Action == action {
			return t.To, true
		}
	}
	return from, false
}

// ActionsFor returns the actions the action bar should offer in the
// given state.
func ActionsFor(status domain.OrderStatus) []Action {
	switch status {
	case domain.OrderStatusPending:
		return []Action{ActionAccept}
	case domain.OrderStatusActive:
		return []Action{ActionArrive}
	case domain.OrderStatusArrived:
		return []Action{ActionStart}
	case domain.OrderStatusStarted:
		return []Action{ActionEnd}
	case domain.OrderStatusEnded:
		return []Action{ActionRate}
	default:
		return nil
	}
}
