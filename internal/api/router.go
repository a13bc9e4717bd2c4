// Package api provides HTTP handlers for the wildcard expansion REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"starspread/internal/service"
)

// Handler holds the service dependencies for the HTTP API.
type Handler struct {
	expand *service.ExpandService
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(expand *service.ExpandService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{expand: expand, logger: logger}
}

// NewRouter builds the chi router with middleware and all routes mounted.
func NewRouter(h *Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/expansions", h.createExpansion)
		r.Post("/expansions/batch", h.createExpansionBatch)
		r.Get("/expansions", h.listRuns)
		r.Get("/expansions/{id}", h.getRun)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createExpansion(w http.ResponseWriter, r *http.Request) {
	var req service.ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Table == "" {
		h.writeError(w, r, http.StatusBadRequest, "table is required")
		return
	}

	result, err := h.expand.Expand(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// batchRequest expands several tables in one call.
type batchRequest struct {
	Requests    []service.ExpandRequest `json:"requests"`
	Concurrency int                     `json:"concurrency,omitempty"`
}

func (h *Handler) createExpansionBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Requests) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "requests is required")
		return
	}

	results, err := h.expand.ExpandMany(r.Context(), req.Requests, req.Concurrency)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := h.expand.Runs(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.expand.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeError(w, r, status, err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":      message,
		"request_id": chimw.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
