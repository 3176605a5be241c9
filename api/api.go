// Package api exposes the coordination core over HTTP. Handlers are thin:
// they decode, call the core, and translate typed errors into status codes.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/Medic423/medport-sub003/core/bid"
	"github.com/Medic423/medport-sub003/core/history"
	"github.com/Medic423/medport-sub003/core/logger"
	"github.com/Medic423/medport-sub003/core/match"
	"github.com/Medic423/medport-sub003/core/registry"
	"github.com/Medic423/medport-sub003/core/request"
)

// Server bundles the core collaborators behind the HTTP surface.
type Server struct {
	store   *request.Store
	ledger  *bid.Ledger
	engine  *match.Engine
	tracker history.Tracker
	reg     *registry.Registry
	log     logger.Logger
}

// NewServer wires a Server. engine and tracker may be nil; their routes then
// answer 404.
func NewServer(store *request.Store, ledger *bid.Ledger, engine *match.Engine, tracker history.Tracker, reg *registry.Registry, log logger.Logger) *Server {
	return &Server{store: store, ledger: ledger, engine: engine, tracker: tracker, reg: reg, log: log}
}

// Mux returns the route table.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/requests", s.createRequest)
	mux.HandleFunc("GET /api/requests", s.listRequests)
	mux.HandleFunc("GET /api/requests/{id}", s.getRequest)
	mux.HandleFunc("POST /api/requests/{id}/status", s.transitionRequest)
	mux.HandleFunc("POST /api/requests/{id}/cancel", s.cancelRequest)
	mux.HandleFunc("POST /api/requests/{id}/reopen", s.reopenRequest)
	mux.HandleFunc("POST /api/requests/{id}/eta", s.recordEta)
	mux.HandleFunc("GET /api/requests/{id}/history", s.requestHistory)
	mux.HandleFunc("GET /api/requests/{id}/eta", s.latestEta)

	mux.HandleFunc("POST /api/requests/{id}/bids", s.submitBid)
	mux.HandleFunc("GET /api/requests/{id}/bids", s.listRequestBids)
	mux.HandleFunc("POST /api/bids/{id}/accept", s.acceptBid)
	mux.HandleFunc("POST /api/bids/{id}/reject", s.rejectBid)
	mux.HandleFunc("POST /api/bids/{id}/withdraw", s.withdrawBid)
	mux.HandleFunc("GET /api/bids/{id}", s.getBid)
	mux.HandleFunc("GET /api/bids", s.bidStats)
	mux.HandleFunc("GET /api/agencies/{id}/bids", s.listAgencyBids)
	mux.HandleFunc("GET /api/agencies/{id}/preferences", s.getPreferences)
	mux.HandleFunc("PUT /api/agencies/{id}/preferences", s.setPreferences)

	mux.HandleFunc("POST /api/matches", s.findMatches)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil && s.log != nil {
		s.log.Errorf("encode response: %v", err)
	}
}

func decode(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

// actor pulls the acting party from the conventional header.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}
