// driverapp is the headless driver client: login, order browsing, and
// the in-trip screen with live route building over a console map
// surface.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"karsdrive/internal/api"
	"karsdrive/internal/config"
	"karsdrive/internal/domain"
	"karsdrive/internal/geo"
	"karsdrive/internal/geocache"
	"karsdrive/internal/mapview"
	"karsdrive/internal/routing"
	"karsdrive/internal/session"
	"karsdrive/internal/trip"
)

func main() {
	cfg := config.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Initialize New Relic if configured; outbound HTTP is
	// instrumented through its RoundTripper.
	var transport http.RoundTripper
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err := newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			transport = newrelic.NewRoundTripper(nil)
			defer nrApp.Shutdown(0)
		}
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, transport)
	users := api.NewUsers(client)
	orders := api.NewOrders(client)
	store := session.NewStore(cfg.Session.Path)

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "login":
		err = cmdLogin(ctx, store, users, os.Args[2:])
	case "register":
		err = cmdRegister(ctx, store, users, os.Args[2:])
	case "logout":
		err = store.Clear()
	case "delete-account":
		err = cmdDeleteAccount(ctx, store, users)
	case "orders":
		err = cmdOrders(ctx, store, users, orders, os.Args[2:])
	case "order":
		err = cmdOrder(ctx, cfg, store, users, orders, transport, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  driverapp login <login> <password>
  driverapp register <login> <password> [full name]
  driverapp logout
  driverapp delete-account
  driverapp orders [search]
  driverapp order <id>`)
}

// bootstrap restores the saved session and verifies it against the
// backend. A session pointing at a missing or non-driver account is
// cleared, matching the app launch behavior.
func bootstrap(ctx context.Context, store *session.Store, users api.UserRepository) (*domain.User, error) {
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}

	if sess.Role != domain.RoleDriver {
		_ = store.Clear()
		return nil, session.ErrNoSession
	}

	user, err := users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			_ = store.Clear()
			return nil, session.ErrNoSession
		}
		return nil, err
	}

	if user.Role != domain.RoleDriver {
		_ = store.Clear()
		return nil, session.ErrNoSession
	}

	return user, nil
}

func cmdLogin(ctx context.Context, store *session.Store, users api.UserRepository, args []string) error {
	if len(args) != 2 {
		usage()
		os.Exit(2)
	}

	user, err := users.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if err := store.Save(session.Session{UserID: user.ID, Role: user.Role}); err != nil {
		return err
	}

	switch user.Status {
	case domain.ApprovalApproved:
		fmt.Printf("signed in as %s\n", user.Login)
	case domain.ApprovalRejected:
		fmt.Println("signed in: account rejected by moderation")
	default:
		fmt.Println("signed in: account pending moderation")
	}
	return nil
}

func cmdRegister(ctx context.Context, store *session.Store, users api.UserRepository, args []string) error {
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	user := &domain.User{
		Login:    args[0],
		Password: args[1],
		FullName: strings.Join(args[2:], " "),
		Role:     domain.RoleDriver,
		Status:   domain.ApprovalPending,
	}

	created, err := users.Register(ctx, user)
	if err != nil {
		return err
	}

	if err := store.Save(session.Session{UserID: created.ID, Role: created.Role}); err != nil {
		return err
	}

	fmt.Printf("registered %s, awaiting moderation\n", created.Login)
	return nil
}

func cmdDeleteAccount(ctx context.Context, store *session.Store, users api.UserRepository) error {
	user, err := bootstrap(ctx, store, users)
	if err != nil {
		return err
	}

	if err := users.Delete(ctx, user.ID); err != nil {
		return err
	}

	return store.Clear()
}

func cmdOrders(ctx context.Context, store *session.Store, users api.UserRepository, orders api.OrderRepository, args []string) error {
	user, err := bootstrap(ctx, store, users)
	if err != nil {
		return err
	}

	list, err := orders.List(ctx, user.ID)
	if err != nil {
		return err
	}

	active, upcoming := api.SplitActive(list)
	upcoming = api.FilterOrders(upcoming, strings.Join(args, " "))

	if active != nil {
		fmt.Printf("ACTIVE  %s  %s -> %s  [%s]\n", active.ID, active.From, active.To, active.Status)
	}
	for _, o := range upcoming {
		fmt.Printf("        %s  %s -> %s  departs %s\n", o.ID, o.From, o.To, o.DepartureTime.Format("02 Jan 15:04"))
	}
	if active == nil && len(upcoming) == 0 {
		fmt.Println("no more orders")
	}
	return nil
}

// cmdOrder runs the order-detail screen: live map commands go to a
// recorder surface and the sheet is rendered to the console.
func cmdOrder(ctx context.Context, cfg *config.Config, store *session.Store, users api.UserRepository, orders api.OrderRepository, transport http.RoundTripper, args []string) error {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}

	user, err := bootstrap(ctx, store, users)
	if err != nil {
		return err
	}

	var cache geocache.Cache
	if cfg.Redis.Addr != "" {
		cache = geocache.NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		cache = geocache.NewMemory()
	}

	router := routing.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Router.URL, cache, cfg.Router.Timeout, transport)

	// Without real GPS the provider replays a short drive around the
	// seeded pickup area.
	provider := geo.NewSimulator([]domain.Coordinate{
		{Lat: 44.2269, Lng: 42.0468},
		{Lat: 44.2281, Lng: 42.0501},
		{Lat: 44.2304, Lng: 42.0547},
		{Lat: 44.2330, Lng: 42.0590},
	})
	tracker := geo.NewTracker(provider, cfg.Geo.WatchInterval, cfg.Geo.HeadingDelta, cfg.Geo.HeadingDebounce)

	view := mapview.NewRecorder()

	controller := trip.NewController(orders, users, tracker, router, view, user.ID, log.Default())
	if err := controller.Open(ctx, args[0]); err != nil {
		return err
	}
	defer controller.Close()

	renderSheet(controller.State(), view)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "accept", "arrive", "start", "end":
			if err := controller.Do(ctx, trip.Action(cmd)); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		case "pan":
			view.Pan()
		case "follow":
			controller.EnableFollow()
		case "state", "":
			// Fall through to render below.
		case "quit", "exit":
			return nil
		default:
			fmt.Println("commands: accept arrive start end pan follow state quit")
		}
		renderSheet(controller.State(), view)
		fmt.Print("> ")
	}
	return scanner.Err()
}

// renderSheet is the console stand-in for the bottom sheet and action
// bar.
func renderSheet(state trip.State, view *mapview.Recorder) {
	if state.Order == nil {
		fmt.Println("loading order...")
		return
	}

	o := state.Order
	fmt.Printf("%s  ★ %.1f\n", o.FullNameClient, o.RatingClient)
	fmt.Printf("status: %s\n", o.Status)
	fmt.Printf("route:  %s -> %s\n", o.From, o.To)
	fmt.Printf("departs: %s\n", o.DepartureTime.Format("02 Jan 2006 15:04"))
	if o.Comment != "" {
		fmt.Printf("comment: %s\n", o.Comment)
	}
	if o.BaggageInfo != "" {
		fmt.Printf("baggage: %s\n", o.BaggageInfo)
	}

	if state.Route != nil {
		fmt.Printf("leg: %.1f km, %.0f min, %d points\n",
			state.Route.Distance/1000, state.Route.Duration/60, len(state.Route.Points))
	}
	if camera, ok := view.LastCamera(); ok {
		fmt.Printf("camera: %.4f,%.4f heading %.0f (follow=%v)\n",
			camera.Center.Lat, camera.Center.Lng, camera.Heading, state.Follow)
	}
	if state.Fault != "" {
		fmt.Printf("! %s\n", state.Fault)
	}

	actions := make([]string, 0, len(state.Actions))
	for _, a := range state.Actions {
		actions = append(actions, string(a))
	}
	if len(actions) > 0 {
		fmt.Printf("actions: %s\n", strings.Join(actions, " "))
	}
}
