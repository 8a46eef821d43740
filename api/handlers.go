/*
handlers.go - HTTP handlers for the report surface

PURPOSE:
  A thin read-and-trigger surface over the engine: inspect the member table
  and the last run's report, and trigger a new run, without opening the
  database by hand.

  POST /api/runs executes a full run synchronously. Runs are serialized: a
  second trigger while one is in flight gets 409, because the store has a
  single-writer discipline and external fetches are paced anyway.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 404: unknown CID
  - 409: run already in progress
  - 500: store or roster-feed failures
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/waitlist-engine/roster"
)

// RosterLoader fetches a fresh roster snapshot for a triggered run.
type RosterLoader func() ([]roster.RosterEntry, error)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        roster.TxMemberStore
	Orchestrator *roster.Orchestrator
	LoadRoster   RosterLoader
	Log          *zap.SugaredLogger

	mu         sync.Mutex
	running    bool
	lastReport *roster.Report
}

// NewHandler creates a new handler.
func NewHandler(store roster.TxMemberStore, orch *roster.Orchestrator, loadRoster RosterLoader, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Store:        store,
		Orchestrator: orch,
		LoadRoster:   loadRoster,
		Log:          log,
	}
}

// ListMembers returns every persisted member.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.Members(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members", err)
		return
	}
	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMember returns one member by CID.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	cid := roster.NormalizeCID(chi.URLParam(r, "cid"))
	m, err := h.Store.Member(r.Context(), cid)
	if errors.Is(err, roster.ErrMemberNotFound) {
		writeError(w, http.StatusNotFound, "member not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load member", err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

// LastReport returns the report of the most recent run, if any.
func (h *Handler) LastReport(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	report := h.lastReport
	h.mu.Unlock()

	if report == nil {
		writeError(w, http.StatusNotFound, "no run has completed yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// TriggerRun loads a fresh roster snapshot and executes one full run.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		writeError(w, http.StatusConflict, "a run is already in progress", nil)
		return
	}
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	entries, err := h.LoadRoster()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load roster snapshot", err)
		return
	}

	report, err := h.Orchestrator.Run(r.Context(), entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "run failed", err)
		return
	}

	h.mu.Lock()
	h.lastReport = report
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
