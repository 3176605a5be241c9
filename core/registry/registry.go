// Package registry holds the facility, agency and unit records the
// coordination core matches and dispatches against. The registry is the sole
// writer of unit status; the request store drives assignment and release
// through it and the matching engine only reads.
package registry

import (
	"sort"
	"sync"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/model"
)

// Registry is an in-memory store of facilities, agencies, units and agency
// matching preferences.
type Registry struct {
	mu         sync.RWMutex
	facilities map[string]model.Facility
	agencies   map[string]model.Agency
	prefs      map[string]model.AgencyPreferences
	units      map[string]model.Unit
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		facilities: make(map[string]model.Facility),
		agencies:   make(map[string]model.Agency),
		prefs:      make(map[string]model.AgencyPreferences),
		units:      make(map[string]model.Unit),
	}
}

// PutFacility creates or replaces a facility record.
func (r *Registry) PutFacility(f model.Facility) error {
	if f.ID == "" {
		return errs.Validationf("facility id required")
	}
	r.mu.Lock()
	r.facilities[f.ID] = f
	r.mu.Unlock()
	return nil
}

// Facility returns the facility with the given id.
func (r *Registry) Facility(id string) (model.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.facilities[id]
	if !ok {
		return model.Facility{}, errs.NotFound("facility", id)
	}
	return f, nil
}

// PutAgency creates or replaces an agency record.
func (r *Registry) PutAgency(a model.Agency) error {
	if a.ID == "" {
		return errs.Validationf("agency id required")
	}
	r.mu.Lock()
	r.agencies[a.ID] = a
	r.mu.Unlock()
	return nil
}

// Agency returns the agency with the given id.
func (r *Registry) Agency(id string) (model.Agency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agencies[id]
	if !ok {
		return model.Agency{}, errs.NotFound("agency", id)
	}
	return a, nil
}

// Agencies returns all agencies ordered by id.
func (r *Registry) Agencies() []model.Agency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Agency, 0, len(r.agencies))
	for _, a := range r.agencies {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetPreferences stores matching preferences for an existing agency.
func (r *Registry) SetPreferences(agencyID string, p model.AgencyPreferences) error {
	for _, lvl := range p.PreferredLevels {
		if !model.ValidTransportLevel(lvl) {
			return errs.Validationf("unknown transport level %q", lvl)
		}
	}
	if p.MaxDistanceMiles < 0 || p.RevenueThreshold < 0 {
		return errs.Validationf("preference distances and thresholds must be non-negative")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agencies[agencyID]; !ok {
		return errs.NotFound("agency", agencyID)
	}
	r.prefs[agencyID] = p
	return nil
}

// Preferences returns the agency's matching preferences, zero-valued when
// none were set.
func (r *Registry) Preferences(agencyID string) (model.AgencyPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.agencies[agencyID]; !ok {
		return model.AgencyPreferences{}, errs.NotFound("agency", agencyID)
	}
	return r.prefs[agencyID], nil
}

// PutUnit creates or replaces a unit record. The owning agency must exist
// and the level and status must be from the closed enumerations.
func (r *Registry) PutUnit(u model.Unit) error {
	if u.ID == "" {
		return errs.Validationf("unit id required")
	}
	if !model.ValidTransportLevel(u.Level) {
		return errs.Validationf("unknown transport level %q", u.Level)
	}
	if u.Status == "" {
		u.Status = model.UnitAvailable
	}
	if !model.ValidUnitStatus(u.Status) {
		return errs.Validationf("unknown unit status %q", u.Status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agencies[u.AgencyID]; !ok {
		return errs.NotFound("agency", u.AgencyID)
	}
	r.units[u.ID] = u
	return nil
}

// Unit returns the unit with the given id.
func (r *Registry) Unit(id string) (model.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	if !ok {
		return model.Unit{}, errs.NotFound("unit", id)
	}
	return u, nil
}

// UnitsByAgency returns the agency's units ordered by id.
func (r *Registry) UnitsByAgency(agencyID string) []model.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Unit
	for _, u := range r.units {
		if u.AgencyID == agencyID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AvailableUnits returns every AVAILABLE unit whose capability covers the
// required transport level, ordered by id.
func (r *Registry) AvailableUnits(level model.TransportLevel) []model.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Unit
	for _, u := range r.units {
		if u.Status == model.UnitAvailable && u.Level.Covers(level) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetUnitStatus mutates a unit's operational status.
func (r *Registry) SetUnitStatus(id string, status model.UnitStatus) error {
	if !model.ValidUnitStatus(status) {
		return errs.Validationf("unknown unit status %q", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return errs.NotFound("unit", id)
	}
	u.Status = status
	r.units[id] = u
	return nil
}

// Claim atomically re-validates that the unit is AVAILABLE and marks it
// IN_USE. It fails with a conflict when the unit was taken or withdrawn from
// service after the caller last observed it.
func (r *Registry) Claim(unitID string) (model.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[unitID]
	if !ok {
		return model.Unit{}, errs.NotFound("unit", unitID)
	}
	if u.Status != model.UnitAvailable {
		return model.Unit{}, errs.Conflictf("unit %s is %s, not AVAILABLE", unitID, u.Status)
	}
	u.Status = model.UnitInUse
	r.units[unitID] = u
	return u, nil
}

// Release returns a claimed unit to AVAILABLE. Releasing a unit that is not
// IN_USE is a no-op so cancel and complete paths stay idempotent.
func (r *Registry) Release(unitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[unitID]
	if !ok {
		return errs.NotFound("unit", unitID)
	}
	if u.Status != model.UnitInUse {
		return nil
	}
	u.Status = model.UnitAvailable
	r.units[unitID] = u
	return nil
}
