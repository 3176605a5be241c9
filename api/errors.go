package api

import (
	"net/http"

	"github.com/Medic423/medport-sub003/core/errs"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps core error types onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errs.IsDuplicateBid(err), errs.IsConflict(err):
		status = http.StatusConflict
	case errs.IsInvalidTransition(err):
		status = http.StatusUnprocessableEntity
	case errs.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError && s.log != nil {
		s.log.Errorf("internal error: %v", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
