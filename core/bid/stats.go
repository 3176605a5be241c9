package bid

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/Medic423/medport-sub003/core/model"
)

// Stats summarizes bid outcomes for an agency or the whole ledger.
type Stats struct {
	Total    int                     `json:"total"`
	ByStatus map[model.BidStatus]int `json:"by_status"`
	// AcceptanceRate is accepted / resolved. Zero when nothing has been
	// resolved yet.
	AcceptanceRate float64 `json:"acceptance_rate"`
	// TotalAmount and AverageAmount cover only bids that quoted a price.
	TotalAmount   float64 `json:"total_amount"`
	AverageAmount float64 `json:"average_amount"`
}

// StatsFilter narrows the stats computation. Zero fields match everything.
type StatsFilter struct {
	AgencyID  string
	RequestID string
}

// Stats computes bid statistics over the ledger.
func (l *Ledger) Stats(_ context.Context, f StatsFilter) Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{ByStatus: make(map[model.BidStatus]int)}
	var amounts []float64
	resolved, accepted := 0, 0
	for _, b := range l.bids {
		if f.AgencyID != "" && b.AgencyID != f.AgencyID {
			continue
		}
		if f.RequestID != "" && b.RequestID != f.RequestID {
			continue
		}
		s.Total++
		s.ByStatus[b.Status]++
		if b.Amount > 0 {
			amounts = append(amounts, b.Amount)
		}
		if b.Status.Resolved() {
			resolved++
			if b.Status == model.BidAccepted {
				accepted++
			}
		}
	}
	if resolved > 0 {
		s.AcceptanceRate = float64(accepted) / float64(resolved)
	}
	if len(amounts) > 0 {
		s.AverageAmount = stat.Mean(amounts, nil)
		for _, a := range amounts {
			s.TotalAmount += a
		}
	}
	return s
}

// AcceptanceRate reports the agency's historical acceptance signal and
// whether any of its bids have been resolved yet. The matching engine
// consumes it.
func (l *Ledger) AcceptanceRate(agencyID string) (float64, bool) {
	s := l.Stats(context.Background(), StatsFilter{AgencyID: agencyID})
	resolved := 0
	for status, n := range s.ByStatus {
		if status.Resolved() {
			resolved += n
		}
	}
	if resolved == 0 {
		return 0, false
	}
	return s.AcceptanceRate, true
}
