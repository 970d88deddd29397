package api

import "net/http"

// Conversations serves the operator console's conversation views.
//
// GET /api/agent/conversations            – all conversations
// GET /api/agent/conversations?sessionId=X – one conversation
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
		conv := h.store.GetConversation(sessionID)
		if conv == nil {
			Error(w, http.StatusNotFound, "Conversation not found")
			return
		}
		OK(w, conv)
		return
	}

	OK(w, h.store.AllConversations())
}
