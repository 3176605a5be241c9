package api

import (
	"net/http"
	"time"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/request"
)

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var c request.CreateCriteria
	if err := decode(r, &c); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	req, err := s.store.Create(r.Context(), c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, req)
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := request.Filter{
		Status:     model.RequestStatus(q.Get("status")),
		Priority:   model.Priority(q.Get("priority")),
		Level:      model.TransportLevel(q.Get("level")),
		FacilityID: q.Get("facility_id"),
		Search:     q.Get("q"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeError(w, errs.Validationf("invalid from timestamp %q", v))
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeError(w, errs.Validationf("invalid to timestamp %q", v))
			return
		}
		f.To = t
	}
	s.writeJSON(w, http.StatusOK, s.store.List(r.Context(), f))
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) transitionRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.RequestStatus `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	id := r.PathValue("id")
	if err := s.store.Transition(r.Context(), id, body.Status, actor(r)); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	id := r.PathValue("id")
	if err := s.store.Cancel(r.Context(), id, body.Reason, actor(r)); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) reopenRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Reopen(r.Context(), id, actor(r)); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) recordEta(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RevisedArrival time.Time `json:"revised_arrival"`
		RevisedPickup  time.Time `json:"revised_pickup"`
		Reason         string    `json:"reason"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	if err := s.store.RecordEta(r.Context(), r.PathValue("id"), body.RevisedArrival, body.RevisedPickup, body.Reason, actor(r)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
