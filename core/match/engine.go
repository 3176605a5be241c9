// Package match ranks agency units against a transport request's clinical
// and logistical criteria. The engine is stateless: it reads the registry
// and the distance provider, scores each candidate with a weighted sum
// normalized to 0-100, and returns a deterministic ranking.
package match

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Medic423/medport-sub003/core/distance"
	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/events"
	"github.com/Medic423/medport-sub003/core/logger"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/registry"
	"github.com/Medic423/medport-sub003/internal/eventbus"
)

// Weights distribute the 100 score points across the four factors.
type Weights struct {
	Capability float64 `json:"capability"`
	Proximity  float64 `json:"proximity"`
	History    float64 `json:"history"`
	Revenue    float64 `json:"revenue"`
}

// DefaultWeights is the documented 30/30/20/20 split.
func DefaultWeights() Weights {
	return Weights{Capability: 30, Proximity: 30, History: 20, Revenue: 20}
}

// Config tunes the engine.
type Config struct {
	Weights Weights
	// DistanceTimeout bounds each distance provider call; on expiry the
	// candidate is scored with a fallback estimate instead of aborting
	// the match.
	DistanceTimeout time.Duration
	// MaxDistanceMiles is where the proximity score reaches zero.
	MaxDistanceMiles float64
	// FallbackDistanceMiles is assumed when neither the provider nor
	// facility coordinates can produce an estimate.
	FallbackDistanceMiles float64
	// AvgSpeedMph converts fallback miles to an ETA.
	AvgSpeedMph float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Weights:               DefaultWeights(),
		DistanceTimeout:       2 * time.Second,
		MaxDistanceMiles:      100,
		FallbackDistanceMiles: 50,
		AvgSpeedMph:           45,
	}
}

// reasonThreshold is the minimum contribution, in score points, for a
// factor to appear in the candidate's reasons list.
const reasonThreshold = 10

// AcceptanceSource reports an agency's historical acceptance signal. The
// bid ledger implements it.
type AcceptanceSource interface {
	AcceptanceRate(agencyID string) (float64, bool)
}

// Criteria is the matching input.
type Criteria struct {
	Level               model.TransportLevel `json:"level"`
	OriginID            string               `json:"origin_id"`
	DestinationID       string               `json:"destination_id"`
	Priority            model.Priority       `json:"priority,omitempty"`
	SpecialRequirements string               `json:"special_requirements,omitempty"`
	RevenuePotential    float64              `json:"revenue_potential,omitempty"`
	Window              *model.TimeWindow    `json:"window,omitempty"`
	Route               distance.RouteType   `json:"route,omitempty"`
}

// Engine scores and ranks candidates.
type Engine struct {
	reg    *registry.Registry
	dist   distance.Provider
	accept AcceptanceSource
	cfg    Config
	bus    eventbus.EventBus
	log    logger.Logger
	now    func() time.Time
}

// NewEngine wires an Engine. accept and bus may be nil.
func NewEngine(reg *registry.Registry, dist distance.Provider, accept AcceptanceSource, cfg Config, bus eventbus.EventBus, log logger.Logger) *Engine {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.DistanceTimeout <= 0 {
		cfg.DistanceTimeout = 2 * time.Second
	}
	if cfg.MaxDistanceMiles <= 0 {
		cfg.MaxDistanceMiles = 100
	}
	if cfg.FallbackDistanceMiles <= 0 {
		cfg.FallbackDistanceMiles = 50
	}
	if cfg.AvgSpeedMph <= 0 {
		cfg.AvgSpeedMph = 45
	}
	return &Engine{
		reg:    reg,
		dist:   dist,
		accept: accept,
		cfg:    cfg,
		bus:    bus,
		log:    log,
		now:    time.Now,
	}
}

// FindMatches returns ranked candidates for the criteria. An empty candidate
// set yields an empty list, never an error; only malformed criteria fail.
func (e *Engine) FindMatches(ctx context.Context, c Criteria) ([]model.MatchCandidate, error) {
	if !model.ValidTransportLevel(c.Level) {
		return nil, errs.Validationf("unknown transport level %q", c.Level)
	}
	if c.OriginID == "" {
		return nil, errs.Validationf("origin facility required")
	}
	start := e.now()

	required, ignored := parseRequirements(c.SpecialRequirements)
	units := e.reg.AvailableUnits(c.Level)

	// Group qualifying units per agency; one candidate, the agency's best
	// unit, per agency.
	byAgency := make(map[string][]model.Unit)
	for _, u := range units {
		if !unitQualifies(u, required, c.Window) {
			continue
		}
		byAgency[u.AgencyID] = append(byAgency[u.AgencyID], u)
	}

	degraded := false
	candidates := make([]model.MatchCandidate, 0, len(byAgency))
	for agencyID, agencyUnits := range byAgency {
		prefs, err := e.reg.Preferences(agencyID)
		if err != nil {
			continue
		}
		if !prefs.ServesFacility(c.OriginID) || !prefs.AcceptsLevel(c.Level) {
			continue
		}

		unit := pickBestUnit(agencyUnits, c.Level)
		est, fellBack := e.estimate(ctx, agencyID, unit, c)
		degraded = degraded || fellBack
		if prefs.MaxDistanceMiles > 0 && est.Miles > prefs.MaxDistanceMiles {
			continue
		}

		cand := e.score(unit, est, prefs, c)
		cand.IgnoredRequirements = ignored
		candidates = append(candidates, cand)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.EstimatedArrivalMin != b.EstimatedArrivalMin {
			return a.EstimatedArrivalMin < b.EstimatedArrivalMin
		}
		return a.AgencyID < b.AgencyID
	})

	if e.bus != nil {
		e.bus.Publish(events.MatchRanked{
			Level:      c.Level,
			OriginID:   c.OriginID,
			Candidates: len(candidates),
			Degraded:   degraded,
			Duration:   e.now().Sub(start),
		})
	}
	return candidates, nil
}

// estimate resolves the travel estimate from the candidate toward the origin
// facility, degrading to coordinates or the configured fallback when the
// provider is slow or unavailable.
func (e *Engine) estimate(ctx context.Context, agencyID string, sample model.Unit, c Criteria) (distance.Estimate, bool) {
	route := c.Route
	if route == "" {
		route = distance.RouteGround
	}

	// A unit reporting its own position beats any facility-pair estimate.
	if sample.Location != nil {
		if origin, err := e.reg.Facility(c.OriginID); err == nil {
			miles := distance.Haversine(*sample.Location, origin.Location)
			return distance.Estimate{Miles: miles, Minutes: miles / e.cfg.AvgSpeedMph * 60}, false
		}
	}

	agency, err := e.reg.Agency(agencyID)
	if err == nil && agency.HomeFacilityID != "" && e.dist != nil {
		dctx, cancel := context.WithTimeout(ctx, e.cfg.DistanceTimeout)
		est, derr := e.dist.Distance(dctx, agency.HomeFacilityID, c.OriginID, route)
		cancel()
		if derr == nil {
			return est, false
		}
		if e.log != nil {
			e.log.Warnf("distance provider for agency %s degraded: %v", agencyID, derr)
		}
		// Degrade to facility coordinates.
		if home, herr := e.reg.Facility(agency.HomeFacilityID); herr == nil {
			if origin, oerr := e.reg.Facility(c.OriginID); oerr == nil {
				miles := distance.Haversine(home.Location, origin.Location)
				return distance.Estimate{Miles: miles, Minutes: miles / e.cfg.AvgSpeedMph * 60}, true
			}
		}
	}
	miles := e.cfg.FallbackDistanceMiles
	return distance.Estimate{Miles: miles, Minutes: miles / e.cfg.AvgSpeedMph * 60}, true
}

// score computes the weighted sum for one candidate.
func (e *Engine) score(u model.Unit, est distance.Estimate, prefs model.AgencyPreferences, c Criteria) model.MatchCandidate {
	w := e.cfg.Weights
	var reasons []string

	capScore := capabilityScore(u.Level, c.Level) * w.Capability
	if capScore >= reasonThreshold {
		if u.Level == c.Level {
			reasons = append(reasons, fmt.Sprintf("exact %s capability", c.Level))
		} else {
			reasons = append(reasons, fmt.Sprintf("%s unit covers %s request", u.Level, c.Level))
		}
	}

	proxNorm := 1 - est.Miles/e.cfg.MaxDistanceMiles
	if proxNorm < 0 {
		proxNorm = 0
	}
	proxScore := proxNorm * w.Proximity
	if proxScore >= reasonThreshold {
		reasons = append(reasons, fmt.Sprintf("%.0f mi from origin", est.Miles))
	}

	histNorm := 0.5
	if e.accept != nil {
		if rate, ok := e.accept.AcceptanceRate(u.AgencyID); ok {
			histNorm = rate
		}
	}
	histScore := histNorm * w.History
	if histScore >= reasonThreshold {
		reasons = append(reasons, fmt.Sprintf("%.0f%% historical acceptance", histNorm*100))
	}

	revNorm := revenueFit(c.RevenuePotential, prefs.RevenueThreshold)
	revScore := revNorm * w.Revenue
	if revScore >= reasonThreshold {
		reasons = append(reasons, "revenue fits agency threshold")
	}

	return model.MatchCandidate{
		AgencyID:            u.AgencyID,
		UnitID:              u.ID,
		UnitStatus:          u.Status,
		Score:               capScore + proxScore + histScore + revScore,
		Reasons:             reasons,
		EstimatedArrivalMin: est.Minutes,
		EstimatedRevenue:    c.RevenuePotential,
	}
}

// capabilityScore is 1.0 for an exact level match and drops 0.3 per tier of
// overqualification, floored at 0.4.
func capabilityScore(unit, required model.TransportLevel) float64 {
	gap := unit.Rank() - required.Rank()
	if gap <= 0 {
		return 1
	}
	s := 1 - 0.3*float64(gap)
	if s < 0.4 {
		s = 0.4
	}
	return s
}

// revenueFit scores how close the transport's revenue estimate sits to the
// agency's threshold. Falling short is penalized twice as hard as
// overshooting. Missing data scores neutral.
func revenueFit(revenue, threshold float64) float64 {
	if revenue <= 0 || threshold <= 0 {
		return 0.5
	}
	diff := (revenue - threshold) / threshold
	if diff >= 0 {
		return 1 / (1 + diff)
	}
	return 1 / (1 - 2*diff)
}

// pickBestUnit prefers the exact-level unit, then the least overqualified.
func pickBestUnit(units []model.Unit, required model.TransportLevel) model.Unit {
	best := units[0]
	for _, u := range units[1:] {
		if levelGap(u.Level, required) < levelGap(best.Level, required) {
			best = u
		}
	}
	return best
}

func levelGap(unit, required model.TransportLevel) int {
	return unit.Rank() - required.Rank()
}

// unitQualifies gates a unit on required capability flags and, when the
// request carries a time window, on the unit's shift.
func unitQualifies(u model.Unit, required []model.Capability, window *model.TimeWindow) bool {
	for _, cap := range required {
		if !u.HasCapability(cap) {
			return false
		}
	}
	if window != nil && u.Shift != nil {
		if !u.Shift.Contains(window.Start) {
			return false
		}
	}
	return true
}

// parseRequirements splits free text into known capability flags and
// display-only leftovers. Unknown terms never influence scoring.
func parseRequirements(text string) ([]model.Capability, []string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var flags []model.Capability
	var ignored []string
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	}) {
		if cap, ok := model.ParseCapability(tok); ok {
			flags = append(flags, cap)
		} else {
			ignored = append(ignored, tok)
		}
	}
	return flags, ignored
}
