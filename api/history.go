package api

import (
	"net/http"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/pkg/export"
)

func (s *Server) requestHistory(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.writeError(w, errs.NotFound("route", "history"))
		return
	}
	entries, err := s.tracker.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, entries)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if err := export.WriteCSV(w, entries); err != nil && s.log != nil {
			s.log.Errorf("write history csv: %v", err)
		}
	default:
		s.writeError(w, errs.Validationf("unsupported format %q", format))
	}
}

// latestEta serves the most recent history entry, which callers poll for the
// current ETA picture.
func (s *Server) latestEta(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		s.writeError(w, errs.NotFound("route", "history"))
		return
	}
	id := r.PathValue("id")
	entry, ok, err := s.tracker.Latest(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeError(w, errs.NotFound("history entry", id))
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}
