// Package devstore is the in-memory backing store of the development
// stub server. It mimics the hosted REST backend's CRUD semantics so
// the client can be exercised with zero infrastructure.
package devstore

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"karsdrive/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// OrderPatch is a partial order update. Nil fields are left untouched.
type OrderPatch struct {
	Status   *domain.OrderStatus `json:"status"`
	IsActive *bool               `json:"isActive"`
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	OnOrder  *string `json:"onOrder"`
	IsActive *bool   `json:"isActive"`
}

// Store holds users and orders in memory.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	orders map[string]*domain.Order
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:  make(map[string]*domain.User),
		orders: make(map[string]*domain.Order),
	}
}

// Seed loads a couple of demo orders and an approved driver account so
// a fresh devserver is immediately usable.
func (s *Store) Seed() {
	driver := &domain.User{
		ID:       uuid.New().String(),
		Login:    "driver",
		Password: "driver",
		FullName: "Demo Driver",
		Role:     domain.RoleDriver,
		Status:   domain.ApprovalApproved,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[driver.ID] = driver

	for i, leg := range []struct{ from, to string }{
		{"Cherkessk, Lenina 57", "Mineralnye Vody Airport"},
		{"Cherkessk, Kavkazskaya 19", "Pyatigorsk, Kalinina 2"},
	} {
		order := &domain.Order{
			ID:             uuid.New().String(),
			From:           leg.from,
			To:             leg.to,
			DepartureTime:  time.Now().Add(time.Duration(i+1) * time.Hour),
			FullNameClient: "Alexander",
			RatingClient:   5.0,
			Status:         domain.OrderStatusPending,
		}
		s.orders[order.ID] = order
	}
}

// CreateUser stores a new user, assigning an ID when absent.
func (s *Store) CreateUser(user *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	s.users[stored.ID] = &stored
	copied := stored
	return &copied
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// FindUsers returns users matching login and password.
func (s *Store) FindUsers(login, password string) []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.User
	for _, u := range s.users {
		if u.Login == login && u.Password == password {
			copied := *u
			matched = append(matched, &copied)
		}
	}
	return matched
}

// PatchUser applies a partial update and returns the stored user.
func (s *Store) PatchUser(id string, patch UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.OnOrder != nil {
		user.OnOrder = *patch.OnOrder
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	copied := *user
	return &copied, nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// CreateOrder stores a new order, assigning an ID when absent.
func (s *Store) CreateOrder(order *domain.Order) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	stored := *order
	s.orders[stored.ID] = &stored
	copied := stored
	return &copied
}

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *order
	return &copied, nil
}

// ListOrders returns all orders.
func (s *Store) ListOrders() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]*domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		copied := *o
		orders = append(orders, &copied)
	}
	return orders
}

// PatchOrder applies a partial update and returns the stored order.
func (s *Store) PatchOrder(id string, patch OrderPatch) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.IsActive != nil {
		order.IsActive = *patch.IsActive
	}
	copied := *order
	return &copied, nil
}
