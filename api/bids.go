package api

import (
	"net/http"

	"github.com/Medic423/medport-sub003/core/bid"
	"github.com/Medic423/medport-sub003/core/errs"
)

func (s *Server) submitBid(w http.ResponseWriter, r *http.Request) {
	var in bid.SubmitInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	in.RequestID = r.PathValue("id")
	b, err := s.ledger.Submit(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, b)
}

func (s *Server) listRequestBids(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.ledger.ListByRequest(r.Context(), id))
}

func (s *Server) getBid(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) acceptBid(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.Accept(r.Context(), id, actor(r)); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) rejectBid(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.Reject(r.Context(), id, body.Reason); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) withdrawBid(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	id := r.PathValue("id")
	if err := s.ledger.Withdraw(r.Context(), id, body.Reason); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) listAgencyBids(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.ListByAgency(r.Context(), r.PathValue("id")))
}

func (s *Server) bidStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := bid.StatsFilter{
		AgencyID:  q.Get("agency_id"),
		RequestID: q.Get("request_id"),
	}
	s.writeJSON(w, http.StatusOK, s.ledger.Stats(r.Context(), f))
}
