// Package routing resolves addresses and builds driving routes against
// external providers.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"karsdrive/internal/domain"
	"karsdrive/internal/geocache"
)

var (
	// ErrAddressNotFound is returned when the geocoder has no result
	// for an address.
	ErrAddressNotFound = errors.New("address not found")

	// ErrNoRouteFound is returned when the router has no route
	// between the given points.
	ErrNoRouteFound = errors.New("no route found")

	// ErrProviderUnavailable is returned on transport-level provider
	// failures, kept distinct from the business-level negatives above.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
)

// Client talks to the geocoding and routing providers. Geocode results
// are served cache-first.
type Client struct {
	geocoderURL string
	userAgent   string
	routerURL   string
	cache       geocache.Cache
	http        *http.Client
}

// NewClient creates a Client. A nil transport uses
// http.DefaultTransport.
func NewClient(geocoderURL, userAgent, routerURL string, cache geocache.Cache, timeout time.Duration, transport http.RoundTripper) *Client {
	return &Client{
		geocoderURL: geocoderURL,
		userAgent:   userAgent,
		routerURL:   routerURL,
		cache:       cache,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// geocodeResult is one Nominatim search result. Coordinates arrive as
// strings on the wire.
type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-text address to a coordinate. Repeated
// lookups of the same normalized address hit the cache and perform no
// request.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	if coord, ok, err := c.cache.Get(ctx, address); err == nil && ok {
		return coord, nil
	}

	q := url.Values{
		"format": {"json"},
		"q":      {address},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocoderURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	var results []geocodeResult
	if err := c.getJSON(req, &results); err != nil {
		return domain.Coordinate{}, err
	}

	if len(results) == 0 {
		return domain.Coordinate{}, ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode result latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode result longitude: %w", err)
	}

	coord := domain.Coordinate{Lat: lat, Lng: lng}
	if err := c.cache.Set(ctx, address, coord); err != nil {
		// A dead cache only costs extra lookups.
		return coord, nil
	}

	return coord, nil
}

// routeResponse is the OSRM response envelope.
type routeResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route requests a driving route from origin through all destinations
// in order and returns the decoded polyline with total distance and
// duration.
func (c *Client) Route(ctx context.Context, origin domain.Coordinate, destinations ...domain.Coordinate) (*domain.RouteResult, error) {
	if len(destinations) == 0 {
		return nil, ErrNoRouteFound
	}

	// OSRM takes longitude,latitude pairs separated by semicolons.
	pairs := make([]string, 0, 1+len(destinations))
	for _, p := range append([]domain.Coordinate{origin}, destinations...) {
		pairs = append(pairs, fmt.Sprintf("%f,%f", p.Lng, p.Lat))
	}

	u := c.routerURL + "/" + strings.Join(pairs, ";") + "?overview=full&geometries=geojson"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build route request: %w", err)
	}

	var resp routeResponse
	if err := c.getJSON(req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Routes) == 0 {
		return nil, ErrNoRouteFound
	}

	route := resp.Routes[0]
	points := make([]domain.Coordinate, 0, len(route.Geometry.Coordinates))
	for _, pair := range route.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.Coordinate{Lat: pair[1], Lng: pair[0]})
	}

	return &domain.RouteResult{
		Points:   points,
		Distance: route.Distance,
		Duration: route.Duration,
	}, nil
}

func (c *Client) getJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return nil
}
