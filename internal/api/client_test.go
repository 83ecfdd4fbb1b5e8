package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"karsdrive/internal/domain"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestOrders_GetByID(t *testing.T) {
	t.Parallel()

	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(domain.Order{ID: "order-1", From: "A", To: "B", Status: domain.OrderStatusPending})
	})

	order, err := NewOrders(client).GetByID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.From != "A" || order.Status != domain.OrderStatusPending {
		t.Errorf("unexpected order %+v", order)
	}

	if _, err := NewOrders(client).GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrders_PatchSendsIdempotencyKeyAndReturnsServerState(t *testing.T) {
	t.Parallel()

	status := domain.OrderStatusActive
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("expected an Idempotency-Key header on PATCH")
		}

		var patch OrderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Errorf("decode patch: %v", err)
		}
		if patch.Status == nil || *patch.Status != domain.OrderStatusActive {
			t.Errorf("unexpected patch %+v", patch)
		}
		if patch.IsActive == nil || !*patch.IsActive {
			t.Errorf("expected isActive true in patch")
		}

		// The server answers with its own representation, which may
		// carry more than the patch echoed back.
		json.NewEncoder(w).Encode(domain.Order{ID: "order-1", Status: domain.OrderStatusActive, IsActive: true, From: "server-knows-best"})
	})

	active := true
	order, err := NewOrders(client).Patch(context.Background(), "order-1", OrderPatch{Status: &status, IsActive: &active})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.From != "server-knows-best" {
		t.Error("local state must adopt the server representation")
	}
}

func TestOrders_ListSortedByDeparture(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("driverId") != "driver-1" {
			t.Errorf("expected driverId query, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]domain.Order{
			{ID: "late", DepartureTime: now.Add(2 * time.Hour)},
			{ID: "soon", DepartureTime: now.Add(time.Hour)},
		})
	})

	orders, err := NewOrders(client).List(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "soon" {
		t.Errorf("expected soonest first, got %+v", orders)
	}
}

func TestUsers_Login(t *testing.T) {
	t.Parallel()

	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		login := r.URL.Query().Get("login")
		switch login {
		case "ivan":
			json.NewEncoder(w).Encode([]domain.User{{ID: "user-1", Login: "ivan", Role: domain.RoleDriver, Status: domain.ApprovalApproved}})
		case "dispatcher":
			json.NewEncoder(w).Encode([]domain.User{{ID: "user-2", Login: "dispatcher", Role: domain.RoleDispatcher}})
		default:
			json.NewEncoder(w).Encode([]domain.User{})
		}
	})

	users := NewUsers(client)
	ctx := context.Background()

	user, err := users.Login(ctx, "ivan", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("unexpected user %+v", user)
	}

	if _, err := users.Login(ctx, "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := users.Login(ctx, "dispatcher", "x"); !errors.Is(err, ErrWrongRole) {
		t.Errorf("expected ErrWrongRole, got %v", err)
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Nothing is listening anymore.

	client := NewClient(srv.URL, time.Second, nil)
	_, err := NewOrders(client).GetByID(context.Background(), "order-1")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_ServerErrorIsNetworkFailure(t *testing.T) {
	t.Parallel()

	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewOrders(client).GetByID(context.Background(), "order-1")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestFilterOrders(t *testing.T) {
	t.Parallel()

	orders := []*domain.Order{
		{ID: "1", From: "Cherkessk", To: "Airport"},
		{ID: "2", From: "Pyatigorsk", To: "Cherkessk"},
		{ID: "3", From: "Nalchik", To: "Essentuki"},
	}

	if got := FilterOrders(orders, "cherkessk"); len(got) != 2 {
		t.Errorf("expected 2 matches, got %d", len(got))
	}
	if got := FilterOrders(orders, ""); len(got) != 3 {
		t.Errorf("empty query should match all, got %d", len(got))
	}
	if got := FilterOrders(orders, "moscow"); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestSplitActive(t *testing.T) {
	t.Parallel()

	orders := []*domain.Order{
		{ID: "1"},
		{ID: "2", IsActive: true},
		{ID: "3"},
	}

	active, upcoming := SplitActive(orders)
	if active == nil || active.ID != "2" {
		t.Fatalf("expected order 2 active, got %+v", active)
	}
	if len(upcoming) != 2 {
		t.Errorf("expected 2 upcoming, got %d", len(upcoming))
	}
}
