package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	pollregistry "agora/contexts/polling/poll-registry"
	registryerrors "agora/contexts/polling/poll-registry/domain/errors"
	registryhttp "agora/contexts/polling/poll-registry/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "agora/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	registry pollregistry.Module
}

func New(registry pollregistry.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		registry: registry,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Mux exposes the routing table for in-process tests.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /v1/polls/count", s.handlePollCount)
	s.mux.HandleFunc("POST /v1/polls/reset", s.handleReset)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("DELETE /v1/polls/{poll_id}", s.handleDeletePoll)
	s.mux.HandleFunc("POST /v1/polls/{poll_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/polls/{poll_id}/ballot", s.handleBallot)
	s.mux.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	creator := resolveIdentity(r)
	if creator == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req registryhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.CreatePollHandler(r.Context(), creator, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}
	resp, err := s.registry.Handler.GetPollHandler(r.Context(), pollID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollCount(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.PollCountHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID := resolveIdentity(r)
	if voterID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	var req registryhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.CastVoteHandler(r.Context(), voterID, pollID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBallot(w http.ResponseWriter, r *http.Request) {
	voterID := resolveIdentity(r)
	if voterID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	resp, err := s.registry.Handler.BallotHandler(r.Context(), voterID, pollID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	requester := resolveIdentity(r)
	if requester == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	if err := s.registry.Handler.DeletePollHandler(r.Context(), pollID, requester); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	// The identity is logged but not authorized: the registry contract lets
	// any caller reset.
	requestedBy := resolveIdentity(r)
	if requestedBy == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	if err := s.registry.Handler.ResetHandler(r.Context(), requestedBy); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.LeaderboardHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrPollNotFound):
		writeError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidOptionCount):
		writeError(w, http.StatusBadRequest, "invalid_option_count", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, "invalid_option", err.Error())
	case errors.Is(err, registryerrors.ErrDuplicateQuestion):
		writeError(w, http.StatusConflict, "duplicate_question", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, registryerrors.ErrNotCreator):
		writeError(w, http.StatusForbidden, "not_creator", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parsePollID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("poll_id")
	pollID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_poll_id", "poll_id must be an unsigned integer")
		return 0, false
	}
	return pollID, true
}

func resolveIdentity(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
