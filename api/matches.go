package api

import (
	"net/http"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/match"
)

func (s *Server) findMatches(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.writeError(w, errs.NotFound("route", "matches"))
		return
	}
	var c match.Criteria
	if err := decode(r, &c); err != nil {
		s.writeError(w, errs.Validationf("invalid request body: %v", err))
		return
	}
	candidates, err := s.engine.FindMatches(r.Context(), c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, candidates)
}
