package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/search"
)

// BeginSearchRequest is the body of POST /v1/sessions
type BeginSearchRequest struct {
	Query string `json:"query"`
}

// SuggestResponse is the body of GET /v1/collections/suggest
type SuggestResponse struct {
	Query       string              `json:"query"`
	Suggestions []search.Suggestion `json:"suggestions"`
}

// ErrorResponse is the body of error replies
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleBeginSearch starts a new search session
func (s *Server) handleBeginSearch(w http.ResponseWriter, r *http.Request) {
	var req BeginSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	snap, err := s.service.BeginSearch(r.Context(), "", req.Query)
	s.writeSnapshot(w, snap, err)
}

// handleResearch replaces the accumulation of an existing session
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req BeginSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	snap, err := s.service.BeginSearch(r.Context(), id, req.Query)
	s.writeSnapshot(w, snap, err)
}

// handleSessionSnapshot returns the current state of a session
func (s *Server) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.service.SessionSnapshot(id)
	s.writeSnapshot(w, snap, err)
}

// handleContinue loads the next listing page of a session
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.service.Continue(r.Context(), id)
	s.writeSnapshot(w, snap, err)
}

// handleSuggest performs a synchronous suggestion lookup
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	suggestions, err := s.service.Suggest(r.Context(), query)
	if err != nil {
		s.logger.Warn("suggestion lookup failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "suggestion lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, SuggestResponse{
		Query:       query,
		Suggestions: suggestions,
	})
}

// handleCollection resolves a collection by address or name
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	resolved, err := s.service.Collection(r.Context(), query)
	if errors.Is(err, search.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	if err != nil {
		s.logger.Warn("collection lookup failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "collection lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, resolved)
}

// handleToken returns the metadata of a single token
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	contract := chi.URLParam(r, "contract")
	tokenID := chi.URLParam(r, "tokenID")

	item, err := s.service.Token(r.Context(), contract, tokenID)
	if err != nil {
		s.logger.Warn("token lookup failed",
			zap.String("contract", contract),
			zap.String("token_id", tokenID),
			zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "token lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

// writeSnapshot writes a session snapshot, mapping the search errors to
// HTTP statuses. Not-found collections are a session state rather than a
// transport failure, so the snapshot is returned with the 200.
func (s *Server) writeSnapshot(w http.ResponseWriter, snap search.Snapshot, err error) {
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, search.ErrNotFound):
		s.writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, search.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, search.ErrSuperseded):
		s.writeError(w, http.StatusConflict, "superseded by a newer search")
	default:
		s.logger.Warn("search request failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "upstream request failed")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
