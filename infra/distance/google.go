// Package distance provides road-network distance providers backed by the
// Google Maps Directions API, with an optional Redis-backed cache decorator.
package distance

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	coredistance "github.com/Medic423/medport-sub003/core/distance"
	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/model"
)

const metersPerMile = 1609.344

// FacilitySource resolves facility records to coordinates. The registry
// satisfies it.
type FacilitySource interface {
	Facility(id string) (model.Facility, error)
}

// directionsClient is the slice of the Google Maps client the provider uses.
type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleProvider estimates ground travel using the Directions API. Air routes
// are out of its scope and reported as unavailable so callers fall back to
// great-circle estimates.
type GoogleProvider struct {
	client     directionsClient
	facilities FacilitySource
}

// NewGoogleProvider builds a provider with a fresh Maps client.
func NewGoogleProvider(apiKey string, facilities FacilitySource) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client, facilities: facilities}, nil
}

// NewGoogleProviderWithClient injects the Maps client, used by tests.
func NewGoogleProviderWithClient(client directionsClient, facilities FacilitySource) *GoogleProvider {
	return &GoogleProvider{client: client, facilities: facilities}
}

// Distance implements the core provider interface.
func (p *GoogleProvider) Distance(ctx context.Context, fromFacilityID, toFacilityID string, route coredistance.RouteType) (coredistance.Estimate, error) {
	if route == coredistance.RouteAir {
		return coredistance.Estimate{}, errs.Unavailable("google directions", fmt.Errorf("air routing not supported"))
	}
	origin, err := p.facilities.Facility(fromFacilityID)
	if err != nil {
		return coredistance.Estimate{}, err
	}
	dest, err := p.facilities.Facility(toFacilityID)
	if err != nil {
		return coredistance.Estimate{}, err
	}

	req := &maps.DirectionsRequest{
		Origin:      latLng(origin.Location),
		Destination: latLng(dest.Location),
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return coredistance.Estimate{}, errs.Unavailable("google directions", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return coredistance.Estimate{}, errs.Unavailable("google directions", fmt.Errorf("no route between %s and %s", fromFacilityID, toFacilityID))
	}

	var meters int
	var minutes float64
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		minutes += leg.Duration.Minutes()
	}
	return coredistance.Estimate{
		Miles:   float64(meters) / metersPerMile,
		Minutes: minutes,
	}, nil
}

func latLng(p model.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}
