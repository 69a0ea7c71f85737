// Package maps wraps the Google Maps Directions/Geocoding APIs behind the
// small surface the scenario-build-time speed calibrator needs. Nothing in
// this package is reachable from the kernel's run loop; estimates are
// fetched before a run starts and folded into a speed table.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// RouteService fetches travel estimates for origin/destination pairs. The
// zero region bias asks the API to resolve addresses globally; a scenario
// calibrating against one metro area should set Region to its country code.
type RouteService struct {
	client *maps.Client

	Language string
	Region   string
}

// NewRouteService builds a RouteService authenticated with apiKey.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps: create client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Geocode resolves an address to a "lat,lng" string the Directions API
// accepts verbatim.
func (s *RouteService) Geocode(ctx context.Context, address string) (string, error) {
	r := &maps.GeocodingRequest{
		Address:  address,
		Language: s.Language,
		Region:   s.Region,
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return "", fmt.Errorf("maps: geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("maps: address not found: %s", address)
	}

	loc := results[0].Geometry.Location
	return FormatLatLng(loc.Lat, loc.Lng), nil
}

// GetTravelEstimate returns the driving duration and distance in meters
// from origin to destination. Endpoints may be addresses or "lat,lng"
// pairs; if the Directions API can't resolve them as given, both are
// geocoded once and the request retried.
func (s *RouteService) GetTravelEstimate(ctx context.Context, origin, destination string) (time.Duration, int, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    s.Language,
		Region:      s.Region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil || len(routes) == 0 {
		geoOrigin, err1 := s.Geocode(ctx, origin)
		geoDest, err2 := s.Geocode(ctx, destination)
		if err1 == nil && err2 == nil {
			r.Origin = geoOrigin
			r.Destination = geoDest
			routes, _, err = s.client.Directions(ctx, r)
		}
	}
	if err != nil {
		return 0, 0, fmt.Errorf("maps: directions %s -> %s: %w", origin, destination, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, fmt.Errorf("maps: no route found: %s -> %s", origin, destination)
	}

	var dur time.Duration
	var meters int
	for _, leg := range routes[0].Legs {
		dur += leg.Duration
		meters += leg.Distance.Meters
	}
	return dur, meters, nil
}

// FormatLatLng renders a coordinate pair the way the Directions and
// Geocoding APIs expect it.
func FormatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%f,%f", lat, lng)
}
