package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/identity"
	"github.com/swiftbank/assist/internal/transcript"
)

const maxChatBodyBytes = 64 * 1024

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Chat handles one conversational turn.
//
// POST /api/agent/chat
// Body: {message, sessionId?}
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "Missing or invalid authorization token.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		Error(w, http.StatusBadRequest, "message is required and must be a non-empty string.")
		return
	}

	if !h.limiter.Allow(id.CustomerID) {
		Error(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
		return
	}

	resp := h.orchestrator.HandleMessage(r.Context(), message, req.SessionID, id)

	h.transcripts.Log(transcript.Event{
		CustomerID: id.CustomerID,
		SessionID:  resp.SessionID,
		Channel:    "chat_http",
		Role:       string(domain.RoleUser),
		Content:    message,
	})
	h.transcripts.Log(transcript.Event{
		CustomerID: id.CustomerID,
		SessionID:  resp.SessionID,
		Channel:    "chat_http",
		Role:       string(domain.RoleAssistant),
		AgentName:  resp.AgentName,
		Content:    resp.Reply,
	})

	OK(w, resp)
}
