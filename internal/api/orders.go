package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"karsdrive/internal/domain"
)

// OrderRepository defines the backend operations for orders.
type OrderRepository interface {
	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List retrieves the orders visible to a driver.
	List(ctx context.Context, driverID string) ([]*domain.Order, error)

	// Patch applies a partial update and returns the server's stored
	// representation.
	Patch(ctx context.Context, id string, patch OrderPatch) (*domain.Order, error)
}

// OrderPatch is a partial update of the mutable order fields. Nil
// fields are left untouched by the server.
type OrderPatch struct {
	Status   *domain.OrderStatus `json:"status,omitempty"`
	IsActive *bool               `json:"isActive,omitempty"`
}

// Orders is the HTTP implementation of OrderRepository.
type Orders struct {
	client *Client
}

// NewOrders creates an order repository over the given client.
func NewOrders(client *Client) *Orders {
	return &Orders{client: client}
}

var _ OrderRepository = (*Orders)(nil)

// GetByID retrieves an order by ID.
func (r *Orders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.client.doJSON(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// List retrieves the orders visible to a driver, soonest departure
// first.
func (r *Orders) List(ctx context.Context, driverID string) ([]*domain.Order, error) {
	q := url.Values{"driverId": {driverID}}

	var orders []*domain.Order
	if err := r.client.doJSON(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, &orders); err != nil {
		return nil, err
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].DepartureTime.Before(orders[j].DepartureTime)
	})

	return orders, nil
}

// Patch applies a partial update and returns the stored order.
func (r *Orders) Patch(ctx context.Context, id string, patch OrderPatch) (*domain.Order, error) {
	var order domain.Order
	if err := r.client.doJSON(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), patch, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FilterOrders returns the orders whose from or to address contains
// the query, case-insensitively. An empty query matches everything.
func FilterOrders(orders []*domain.Order, query string) []*domain.Order {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return orders
	}
	var matched []*domain.Order
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.From), query) || strings.Contains(strings.ToLower(o.To), query) {
			matched = append(matched, o)
		}
	}
	return matched
}

// SplitActive separates the driver's current active order from the
// upcoming ones. At most one order is active at a time.
func SplitActive(orders []*domain.Order) (active *domain.Order, upcoming []*domain.Order) {
	for _, o := range orders {
		if o.IsActive && active == nil {
			active = o
			continue
		}
		upcoming = append(upcoming, o)
	}
	return active, upcoming
}
