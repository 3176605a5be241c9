package api

import (
	"net/http"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/model"
)

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	if s.reg == nil {
		s.writeError(w, errs.NotFound("route", "preferences"))
		return
	}
	prefs, err := s.reg.Preferences(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}

// setPreferences replaces the agency's matching preferences wholesale; a
// zero-valued body clears them.
func (s *Server) setPreferences(w http.ResponseWriter, r *http.Request) {
	if s.reg == nil {
		s.writeError(w, errs.NotFound("route", "preferences"))
		return
	}
	var prefs model.AgencyPreferences
	if err := decode(r, &prefs); err != nil {
		s.writeError(w, errs.Validationf("decode preferences: %v", err))
		return
	}
	if err := s.reg.SetPreferences(r.PathValue("id"), prefs); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}
