// Package chatws is the WebSocket chat front end. It drives the same
// orchestrator as the HTTP chat endpoint over a persistent connection:
// JSON frames {message, sessionId?} in, full chat responses out.
package chatws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/swiftbank/assist/internal/agent"
	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/identity"
	"github.com/swiftbank/assist/internal/transcript"
)

const turnTimeout = 30 * time.Second

// Handler upgrades chat connections and pumps messages through the
// orchestrator.
type Handler struct {
	orchestrator  *agent.Orchestrator
	transcripts   transcript.Logger
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket chat handler.
func NewHandler(orch *agent.Orchestrator, transcripts transcript.Logger, allowedOrigin string, isDev bool) *Handler {
	if transcripts == nil {
		transcripts = transcript.Noop{}
	}
	return &Handler{
		orchestrator:  orch,
		transcripts:   transcripts,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// frame is one inbound chat frame.
type frame struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// errorFrame is sent for malformed or empty frames; the connection stays
// open.
type errorFrame struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept chat websocket", "error", err, "customer", id.CustomerID)
		return
	}
	connID := uuid.NewString()
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("failed to close chat websocket", "error", closeErr, "conn", connID)
		}
	}()

	slog.Info("chat websocket connected", "conn", connID, "customer", id.CustomerID, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The session sticks to the connection after the first turn so clients
	// need not echo the session ID back.
	sessionID := r.URL.Query().Get("session_id")

	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				slog.Debug("chat websocket closed", "conn", connID)
			} else {
				slog.Warn("chat websocket read error", "error", err, "conn", connID)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			// Treat a bare text frame as the message itself.
			f.Message = string(raw)
		}

		message := strings.TrimSpace(f.Message)
		if message == "" {
			if err := h.writeJSON(ctx, ws, errorFrame{Error: "message is required and must be a non-empty string."}); err != nil {
				slog.Debug("failed to write chat error frame", "error", err, "conn", connID)
			}
			continue
		}
		if f.SessionID != "" {
			sessionID = f.SessionID
		}

		resp := h.handleTurn(ctx, message, sessionID, id)
		sessionID = resp.SessionID

		if err := h.writeJSON(ctx, ws, resp); err != nil {
			slog.Warn("chat websocket write error", "error", err, "conn", connID)
			return
		}
	}
}

func (h *Handler) handleTurn(ctx context.Context, message, sessionID string, id domain.CustomerIdentity) *agent.ChatResponse {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	resp := h.orchestrator.HandleMessage(turnCtx, message, sessionID, id)

	h.transcripts.Log(transcript.Event{
		CustomerID: id.CustomerID,
		SessionID:  resp.SessionID,
		Channel:    "chat_ws",
		Role:       string(domain.RoleUser),
		Content:    message,
	})
	h.transcripts.Log(transcript.Event{
		CustomerID: id.CustomerID,
		SessionID:  resp.SessionID,
		Channel:    "chat_ws",
		Role:       string(domain.RoleAssistant),
		AgentName:  resp.AgentName,
		Content:    resp.Reply,
	})

	return resp
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("chat websocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
