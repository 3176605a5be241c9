// Package distance declares the distance provider boundary. The provider is
// an external collaborator: it may be slow or unavailable, and the matching
// engine must degrade to a fallback estimate rather than fail.
package distance

import (
	"context"
	"math"

	"github.com/Medic423/medport-sub003/core/model"
)

// RouteType selects the routing profile for an estimate.
type RouteType string

const (
	RouteGround RouteType = "ground"
	RouteAir    RouteType = "air"
)

// Estimate is a distance and travel-time pair between two facilities.
type Estimate struct {
	Miles   float64 `json:"miles"`
	Minutes float64 `json:"minutes"`
}

// Provider resolves travel estimates between two facilities.
type Provider interface {
	Distance(ctx context.Context, fromFacilityID, toFacilityID string, route RouteType) (Estimate, error)
}

const earthRadiusMiles = 3958.8

// Haversine returns the great-circle distance between two points in miles.
func Haversine(a, b model.GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
