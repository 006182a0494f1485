package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/irpartners/brokerage-api/internal/observability/metrics"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

// Notifier receives persisted leads for best-effort notification. It must
// not block the request path.
type Notifier interface {
	LeadCreated(lead *Lead)
}

// Handler handles HTTP requests for leads.
type Handler struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewHandler creates a new leads handler. notifier and metrics may be nil.
func NewHandler(repo Repository, notifier Notifier, m *metrics.Metrics, logger *logging.Logger) *Handler {
	return &Handler{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// SubmitContact handles POST /leads/contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, TypeContact)
}

// SubmitRequestInfo handles POST /leads/request-info.
func (h *Handler) SubmitRequestInfo(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, TypeRequestInfo)
}

// SubmitScheduleWalkthrough handles POST /leads/schedule-walkthrough.
func (h *Handler) SubmitScheduleWalkthrough(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, TypeScheduleWalkthrough)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, leadType Type) {
	var req SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Bots that fill the hidden field get the same response as a real
	// submission, but nothing is stored.
	if req.IsSpam() {
		h.metrics.LeadRejected("spam")
		h.logger.Info("honeypot tripped", "type", leadType)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "leadId": NewID()})
		return
	}

	if errs := req.Validate(leadType); errs != nil {
		h.metrics.LeadRejected("validation")
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	lead, err := h.repo.Create(r.Context(), req.ToLead(leadType))
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			h.metrics.LeadRejected("property_not_found")
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		h.logger.Error("failed to create lead", "error", err, "type", leadType)
		writeError(w, http.StatusInternalServerError, "Failed to submit. Please try again.")
		return
	}

	if h.notifier != nil {
		h.notifier.LeadCreated(lead)
	}

	h.metrics.LeadSubmitted(string(leadType))
	h.logger.Info("lead created", "id", lead.ID, "type", lead.Type)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "leadId": lead.ID})
}

// ListLeadsResponse is the response for listing leads.
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// List handles GET /admin/leads, optionally filtered by type and status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Limit: 50}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	if t := q.Get("type"); t != "" {
		if !Type(t).Valid() {
			writeError(w, http.StatusBadRequest, "Invalid lead type")
			return
		}
		filter.Type = Type(t)
	}
	if s := q.Get("status"); s != "" {
		if !Status(s).Valid() {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = Status(s)
	}

	found, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load leads")
		return
	}
	if found == nil {
		found = []*Lead{}
	}
	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  found,
		Count:  len(found),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// Get handles GET /admin/leads/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			writeError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error("failed to load lead", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /admin/leads/{id}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, ErrLeadNotFound):
			writeError(w, http.StatusNotFound, "Lead not found")
		case errors.Is(err, ErrInvalidTransition):
			writeError(w, http.StatusConflict, "Lead status can only move forward")
		default:
			h.logger.Error("failed to update lead status", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "Failed to update lead")
		}
		return
	}

	h.logger.Info("lead status updated", "id", id, "status", lead.Status)
	writeJSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /admin/leads/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			writeError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error("failed to delete lead", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}
	h.logger.Info("lead deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
