package distance

import (
	"context"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/model"
)

// FacilityLocator resolves facility coordinates; the registry implements it.
type FacilityLocator interface {
	Facility(id string) (model.Facility, error)
}

// GeoProvider estimates distance from facility coordinates with a haversine
// great-circle and a configured average road speed. It is the default
// provider and the fallback when an external provider is unavailable.
type GeoProvider struct {
	locator FacilityLocator
	// groundMph and airMph convert miles to minutes per route type.
	groundMph float64
	airMph    float64
	// roadFactor inflates the great-circle distance to approximate road
	// mileage.
	roadFactor float64
}

// NewGeoProvider builds a GeoProvider. Non-positive speeds fall back to
// 45 mph ground and 150 mph air.
func NewGeoProvider(locator FacilityLocator, groundMph, airMph float64) *GeoProvider {
	if groundMph <= 0 {
		groundMph = 45
	}
	if airMph <= 0 {
		airMph = 150
	}
	return &GeoProvider{locator: locator, groundMph: groundMph, airMph: airMph, roadFactor: 1.3}
}

// Distance implements Provider.
func (p *GeoProvider) Distance(_ context.Context, fromID, toID string, route RouteType) (Estimate, error) {
	from, err := p.locator.Facility(fromID)
	if err != nil {
		return Estimate{}, err
	}
	to, err := p.locator.Facility(toID)
	if err != nil {
		return Estimate{}, err
	}
	miles := Haversine(from.Location, to.Location)
	mph := p.airMph
	if route != RouteAir {
		miles *= p.roadFactor
		mph = p.groundMph
	}
	if mph <= 0 {
		return Estimate{}, errs.Unavailable("distance provider", nil)
	}
	return Estimate{Miles: miles, Minutes: miles / mph * 60}, nil
}
