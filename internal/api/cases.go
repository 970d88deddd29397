package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/identity"
)

// ListCases lists the caller's cases, or every case with ?all=true for the
// operator console.
//
// GET /api/agent/cases
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		OK(w, h.store.AllCases())
		return
	}

	id, ok := identity.FromContext(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	OK(w, h.store.CasesForCustomer(id.CustomerID))
}

type createCaseRequest struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Entities    domain.Entities `json:"entities"`
}

// CreateCase registers a case directly, bypassing the chat workflow. Meant
// for operator and test use.
//
// POST /api/agent/cases
func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		Error(w, http.StatusBadRequest, "description is required.")
		return
	}
	if req.Type == "" {
		req.Type = domain.ComplaintGeneral
	}

	c := h.store.CreateCase(id.CustomerID, id.Name, req.Type, req.Description, req.Entities, nil)
	OK(w, c)
}

// GetCase returns one case by ID.
//
// GET /api/agent/cases/{caseID}
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	c := h.store.GetCase(chi.URLParam(r, "caseID"))
	if c == nil {
		Error(w, http.StatusNotFound, "Case not found")
		return
	}
	OK(w, c)
}

type updateCaseRequest struct {
	Status        *string `json:"status"`
	Resolution    *string `json:"resolution"`
	AssignedAgent *string `json:"assignedAgent"`
}

// UpdateCase applies a partial update: status, resolution, assigned agent.
//
// PATCH /api/agent/cases/{caseID}
func (h *Handler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	var req updateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	update := domain.CaseUpdate{
		Resolution:    req.Resolution,
		AssignedAgent: req.AssignedAgent,
	}
	if req.Status != nil {
		status := domain.CaseStatus(*req.Status)
		switch status {
		case domain.CaseOpen, domain.CaseVerified, domain.CaseClosed, domain.CaseEscalated:
			update.Status = &status
		default:
			Error(w, http.StatusBadRequest, "Invalid case status.")
			return
		}
	}

	updated := h.store.UpdateCase(chi.URLParam(r, "caseID"), update)
	if updated == nil {
		Error(w, http.StatusNotFound, "Case not found")
		return
	}
	OK(w, updated)
}
