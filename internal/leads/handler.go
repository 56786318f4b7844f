package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// Handler exposes the admin lead-management endpoints.
type Handler struct {
	store  Store
	stats  *StatsReporter
	logger *logging.Logger
}

// NewHandler creates a lead admin handler. stats may be nil, disabling
// the stats endpoint.
func NewHandler(store Store, stats *StatsReporter, logger *logging.Logger) *Handler {
	if store == nil {
		panic("leads: store cannot be nil")
	}
	return &Handler{
		store:  store,
		stats:  stats,
		logger: logger,
	}
}

// List handles GET /admin/leads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "Failed to list leads", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*qualify.Lead{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"leads": results,
		"count": len(results),
	})
}

// Get handles GET /admin/leads/{leadID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	lead, err := h.store.Get(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "Lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch lead", "error", err, "lead_id", leadID)
		http.Error(w, "Failed to fetch lead", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, lead)
}

type updateRequest struct {
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
	NextFollowUp *time.Time `json:"nextFollowUp"`
}

// Update handles PATCH /admin/leads/{leadID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := Update{
		Notes:        req.Notes,
		NextFollowUp: req.NextFollowUp,
	}
	if req.Status != nil {
		status := qualify.LeadStatus(*req.Status)
		if !validStatus(status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		update.Status = &status
	}

	if err := h.store.Update(r.Context(), leadID, update); err != nil {
		h.logger.Error("failed to update lead", "error", err, "lead_id", leadID)
		http.Error(w, "Failed to update lead", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /admin/leads/{leadID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if err := h.store.Remove(r.Context(), leadID); err != nil {
		h.logger.Error("failed to delete lead", "error", err, "lead_id", leadID)
		http.Error(w, "Failed to delete lead", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /admin/leads/export.csv.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to export leads", "error", err)
		http.Error(w, "Failed to export leads", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := WriteCSV(w, results); err != nil {
		h.logger.Error("failed to stream CSV export", "error", err)
	}
}

// Stats handles GET /admin/leads/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		http.Error(w, "Stats reporting is not enabled", http.StatusNotFound)
		return
	}

	stats, err := h.stats.Report(r.Context())
	if err != nil {
		h.logger.Error("failed to compute lead stats", "error", err)
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func filterFromQuery(r *http.Request) (Filter, error) {
	filter := Filter{
		SortBy: r.URL.Query().Get("sort"),
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		category := qualify.LeadCategory(raw)
		if !validCategory(category) {
			return Filter{}, errors.New("invalid category")
		}
		filter.Category = category
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := qualify.LeadStatus(raw)
		if !validStatus(status) {
			return Filter{}, errors.New("invalid status")
		}
		filter.Status = status
	}
	if filter.SortBy != "" && filter.SortBy != SortByDate && filter.SortBy != SortByScore {
		return Filter{}, errors.New("invalid sort, expected date or score")
	}
	return filter, nil
}

func validCategory(c qualify.LeadCategory) bool {
	switch c {
	case qualify.CategoryHighValue, qualify.CategoryQualified, qualify.CategoryNurture, qualify.CategoryUnqualified:
		return true
	}
	return false
}

func validStatus(s qualify.LeadStatus) bool {
	switch s {
	case qualify.StatusNew, qualify.StatusInProgress, qualify.StatusResponded, qualify.StatusConverted, qualify.StatusClosed:
		return true
	}
	return false
}
