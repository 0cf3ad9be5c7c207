package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// Handler wires HTTP requests to the lead repository.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a lead handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /leads: direct lead submission outside a conversation.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode lead request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to store lead", "error", err)
		http.Error(w, "Failed to store lead", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /admin/leads?limit=N, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	out, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "Failed to list leads", http.StatusInternalServerError)
		return
	}
	if out == nil {
		out = []*Lead{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"leads": out,
		"count": len(out),
	})
}

// Get handles GET /admin/leads/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "Lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch lead", "error", err, "lead_id", id)
		http.Error(w, "Failed to fetch lead", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrMissingLeadType),
		errors.Is(err, ErrInvalidLeadType),
		errors.Is(err, ErrMissingName),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrEmptyLead):
		return true
	}
	return false
}
