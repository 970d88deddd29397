// Package api provides the HTTP handlers for the assistant: the chat
// endpoint plus the operator views over conversations and cases.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftbank/assist/internal/agent"
	"github.com/swiftbank/assist/internal/store"
	"github.com/swiftbank/assist/internal/transcript"
)

// Handler provides common handler utilities and dependencies.
type Handler struct {
	store        store.Store
	orchestrator *agent.Orchestrator
	limiter      *RateLimiter
	transcripts  transcript.Logger
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(st store.Store, orch *agent.Orchestrator, limiter *RateLimiter, transcripts transcript.Logger) *Handler {
	if transcripts == nil {
		transcripts = transcript.Noop{}
	}
	return &Handler{
		store:        st,
		orchestrator: orch,
		limiter:      limiter,
		transcripts:  transcripts,
	}
}

// RegisterRoutes registers the assistant API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/agent", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/conversations", h.Conversations)
		r.Get("/cases", h.ListCases)
		r.Post("/cases", h.CreateCase)
		r.Get("/cases/{caseID}", h.GetCase)
		r.Patch("/cases/{caseID}", h.UpdateCase)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"success":false,"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// OK writes the success envelope around data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": data})
}

// Error writes the failure envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{"success": false, "error": message})
}
