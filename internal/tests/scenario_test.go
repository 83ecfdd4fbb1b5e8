// Package tests exercises the whole stack end to end: the trip
// controller and API client on one side, the devserver HTTP surface on
// the other, with fake geocoding and routing providers in between.
package tests

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"karsdrive/internal/api"
	"karsdrive/internal/app"
	"karsdrive/internal/devstore"
	"karsdrive/internal/domain"
	"karsdrive/internal/geo"
	"karsdrive/internal/geocache"
	"karsdrive/internal/handler"
	"karsdrive/internal/mapview"
	"karsdrive/internal/routing"
	"karsdrive/internal/trip"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// newBackend starts a devserver with one approved driver and one
// pending order.
func newBackend(t *testing.T) (string, *devstore.Store) {
	t.Helper()

	store := devstore.NewStore()
	store.CreateUser(&domain.User{
		ID:       "driver-1",
		Login:    "driver",
		Password: "driver",
		FullName: "Demo Driver",
		Role:     domain.RoleDriver,
		Status:   domain.ApprovalApproved,
	})
	store.CreateOrder(&domain.Order{
		ID:             "order-1",
		From:           "Cherkessk, Lenina 57",
		To:             "Mineralnye Vody Airport",
		DepartureTime:  time.Now().Add(time.Hour),
		FullNameClient: "Alexander",
		RatingClient:   5,
		Status:         domain.OrderStatusPending,
	})

	router := app.NewRouter(app.RouterDeps{
		UserHandler:  handler.NewUserHandler(store),
		OrderHandler: handler.NewOrderHandler(store),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL, store
}

// newFakeGeocoder serves Nominatim-shaped responses from a fixed
// address table.
func newFakeGeocoder(t *testing.T, coords map[string][2]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pair, ok := coords[r.URL.Query().Get("q")]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			io.WriteString(w, `[]`)
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"lat": pair[0], "lon": pair[1]}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newFakeOSRM serves one fixed three-point route for every request.
func newFakeOSRM(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"routes":[{"distance":1500,"duration":180,"geometry":{"coordinates":[[42.04,44.20],[42.05,44.21],[42.06,44.22]]}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// ──────────────────────────────────────────────
// 1. FULL ORDER LIFECYCLE OVER HTTP
// ──────────────────────────────────────────────

func TestOrderLifecycle_EndToEnd(t *testing.T) {
	t.Parallel()

	backendURL, store := newBackend(t)
	geocoder := newFakeGeocoder(t, map[string][2]string{
		"Cherkessk, Lenina 57":    {"44.2233", "42.0578"},
		"Mineralnye Vody Airport": {"44.2251", "43.0819"},
	})
	osrm := newFakeOSRM(t)

	client := api.NewClient(backendURL, 2*time.Second, nil)
	orders := api.NewOrders(client)
	users := api.NewUsers(client)

	routes := routing.NewClient(geocoder.URL, "karsdrive-test", osrm.URL, geocache.NewMemory(), 2*time.Second, nil)

	sim := geo.NewSimulator([]domain.Coordinate{
		{Lat: 44.20, Lng: 42.04},
		{Lat: 44.21, Lng: 42.05},
		{Lat: 44.22, Lng: 42.06},
	})
	tracker := geo.NewTracker(sim, 10*time.Millisecond, 3, 0)
	view := mapview.NewRecorder()

	ctl := trip.NewController(orders, users, tracker, routes, view, "driver-1", log.New(io.Discard, "", 0))
	if err := ctl.Open(context.Background(), "order-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(ctl.Close)

	ctx := context.Background()

	// Accept: the order goes active on the server, the driver is bound
	// to it, and the pickup leg shows up on the map.
	if err := ctl.Do(ctx, trip.ActionAccept); err != nil {
		t.Fatalf("accept: %v", err)
	}
	order, err := store.GetOrder("order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != domain.OrderStatusActive || !order.IsActive {
		t.Errorf("expected active order on server, got %+v", order)
	}
	driver, err := store.GetUser("driver-1")
	if err != nil {
		t.Fatalf("get driver: %v", err)
	}
	if driver.OnOrder != "order-1" {
		t.Errorf("expected driver bound to order-1, got %q", driver.OnOrder)
	}

	waitFor(t, "pickup leg on map", func() bool {
		got := view.Waypoints()
		return len(got) == 1 && got[0] == (domain.Coordinate{Lat: 44.2233, Lng: 42.0578})
	})
	if got := view.Route(); len(got) != 3 {
		t.Errorf("expected the 3-point polyline, got %v", got)
	}

	// Arrive: the pickup leg is done with.
	if err := ctl.Do(ctx, trip.ActionArrive); err != nil {
		t.Fatalf("arrive: %v", err)
	}
	order, _ = store.GetOrder("order-1")
	if order.Status != domain.OrderStatusArrived {
		t.Errorf("expected arrived on server, got %s", order.Status)
	}
	if got := view.Route(); len(got) != 0 {
		t.Errorf("pickup leg must leave the map, got %v", got)
	}

	// Start: the dropoff leg replaces it.
	if err := ctl.Do(ctx, trip.ActionStart); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "dropoff leg on map", func() bool {
		got := view.Waypoints()
		return len(got) == 1 && got[0] == (domain.Coordinate{Lat: 44.2251, Lng: 43.0819})
	})

	// End: the order closes and the driver is released.
	if err := ctl.Do(ctx, trip.ActionEnd); err != nil {
		t.Fatalf("end: %v", err)
	}
	order, _ = store.GetOrder("order-1")
	if order.Status != domain.OrderStatusEnded || order.IsActive {
		t.Errorf("expected ended order on server, got %+v", order)
	}
	driver, _ = store.GetUser("driver-1")
	if driver.OnOrder != "" {
		t.Errorf("expected driver released, still on %q", driver.OnOrder)
	}

	state := ctl.State()
	if len(state.Actions) != 1 || state.Actions[0] != trip.ActionRate {
		t.Errorf("expected the rating affordance after end, got %v", state.Actions)
	}
}

// ──────────────────────────────────────────────
// 2. ACCOUNT FLOWS
// ──────────────────────────────────────────────

func TestLogin_AgainstDevserver(t *testing.T) {
	t.Parallel()

	backendURL, _ := newBackend(t)
	users := api.NewUsers(api.NewClient(backendURL, 2*time.Second, nil))

	user, err := users.Login(context.Background(), "driver", "driver")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "driver-1" || user.Role != domain.RoleDriver {
		t.Errorf("unexpected account %+v", user)
	}

	if _, err := users.Login(context.Background(), "driver", "wrong"); !errors.Is(err, api.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_NewDriverStartsPendingApproval(t *testing.T) {
	t.Parallel()

	backendURL, _ := newBackend(t)
	users := api.NewUsers(api.NewClient(backendURL, 2*time.Second, nil))
	ctx := context.Background()

	created, err := users.Register(ctx, &domain.User{
		Login:    "newdriver",
		Password: "secret",
		FullName: "New Driver",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an assigned ID")
	}
	if created.Role != domain.RoleDriver || created.Status != domain.ApprovalPending {
		t.Errorf("expected a pending driver account, got role=%s status=%s", created.Role, created.Status)
	}

	// The fresh account can log in right away; approval gates orders,
	// not authentication.
	if _, err := users.Login(ctx, "newdriver", "secret"); err != nil {
		t.Errorf("login after register: %v", err)
	}

	if err := users.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.GetByID(ctx, created.ID); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. IDEMPOTENT WRITES
// ──────────────────────────────────────────────

func TestIdempotency_RepeatedCreateIsReplayed(t *testing.T) {
	t.Parallel()

	backendURL, store := newBackend(t)
	before := len(store.ListOrders())

	send := func() string {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, backendURL+"/orders",
			strings.NewReader(`{"from":"Cherkessk, Lenina 57","to":"Pyatigorsk, Kalinina 2"}`))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "create-order-key-1")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("send request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return string(body)
	}

	first := send()
	second := send()

	if first != second {
		t.Errorf("replayed response differs:\n%s\n%s", first, second)
	}
	if got := len(store.ListOrders()); got != before+1 {
		t.Errorf("expected exactly one new order, got %d", got-before)
	}
}
