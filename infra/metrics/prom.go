package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/Medic423/medport-sub003/core/metrics"
)

// PromSink records coordination events in Prometheus metrics.
type PromSink struct {
	transitions *prometheus.CounterVec
	bids        *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	matchTime   prometheus.Histogram
	candidates  prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_request_transitions_total",
		Help: "Request state-machine edges taken",
	}, []string{"from", "to", "level"})
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_bids_total",
		Help: "Bids by resulting status",
	}, []string{"agency_id", "status"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_conflicts_total",
		Help: "Mutations that lost a per-request race",
	}, []string{"op"})
	matchTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_match_duration_seconds",
		Help:    "Time spent producing a candidate ranking",
		Buckets: prometheus.DefBuckets,
	})
	candidates := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transport_match_candidates",
		Help: "Candidate count of the most recent matching run",
	})

	if err := reg.Register(transitions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			transitions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bids); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bids = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(conflicts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			conflicts = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(matchTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			matchTime = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(candidates); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			candidates = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		transitions: transitions,
		bids:        bids,
		conflicts:   conflicts,
		matchTime:   matchTime,
		candidates:  candidates,
	}, nil
}

// RecordRequestTransition increments the edge counter.
func (s *PromSink) RecordRequestTransition(ev coremetrics.RequestTransitionEvent) error {
	s.transitions.WithLabelValues(string(ev.From), string(ev.To), string(ev.Level)).Inc()
	return nil
}

// RecordBid counts the bid under its current status.
func (s *PromSink) RecordBid(ev coremetrics.BidEvent) error {
	s.bids.WithLabelValues(ev.AgencyID, string(ev.Status)).Inc()
	return nil
}

// RecordConflict counts a lost race per operation.
func (s *PromSink) RecordConflict(ev coremetrics.ConflictEvent) error {
	s.conflicts.WithLabelValues(ev.Op).Inc()
	return nil
}

// RecordMatch observes the run duration and updates the candidate gauge.
func (s *PromSink) RecordMatch(ev coremetrics.MatchEvent) error {
	s.matchTime.Observe(ev.Duration.Seconds())
	s.candidates.Set(float64(ev.Candidates))
	return nil
}
