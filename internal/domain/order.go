package domain

import "time"

// OrderStatus represents the current lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusActive  OrderStatus = "active"
	OrderStatusArrived OrderStatus = "arrived"
	OrderStatusStarted OrderStatus = "started"
	OrderStatusEnded   OrderStatus = "ended"
)

// InProgress reports whether the status counts as an active engagement
// for the driver. Order.IsActive must mirror this at all times.
func (s OrderStatus) InProgress() bool {
	return s == OrderStatusActive || s == OrderStatusArrived || s == OrderStatusStarted
}

// Order represents one ride request.
type Order struct {
	ID             string      `json:"id"`
	From           string      `json:"from"`
	To             string      `json:"to"`
	DepartureTime  time.Time   `json:"departureTime"`
	Comment        string      `json:"comment"`
	BaggageInfo    string      `json:"baggageInfo"`
	FullNameClient string      `json:"fullNameClient"`
	RatingClient   float64     `json:"ratingClient"`
	Avatar         string      `json:"avatar"`
	Status         OrderStatus `json:"status"`
	IsActive       bool        `json:"isActive"`
}
