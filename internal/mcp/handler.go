package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/targeting"
	"github.com/oidebrett/ai-pricing-txt-manager/pkg/utils"
)

// sseHeartbeatInterval keeps intermediaries from closing idle streams.
const sseHeartbeatInterval = 30 * time.Second

// Handler serves the streamable HTTP endpoint: JSON-RPC over POST, the
// session notification stream over GET, and explicit teardown over DELETE.
type Handler struct {
	registry *Registry
	invoker  *Invoker
	events   *EventLog
	info     ServerInfo
}

// NewHandler wires the MCP endpoint.
func NewHandler(registry *Registry, invoker *Invoker, events *EventLog, info ServerInfo) *Handler {
	return &Handler{registry: registry, invoker: invoker, events: events, info: info}
}

// RegisterRoutes mounts the endpoint on /mcp.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mcp", h.handlePost)
	r.Get("/mcp", h.handleStream)
	r.Delete("/mcp", h.handleDelete)
}

// handlePost decodes one JSON-RPC message, resolves or creates the session,
// and dispatches the method.
func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeRPCError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request")
		return
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeRPCError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON-RPC message")
		return
	}
	if req.Method == "" {
		writeRPCError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "missing method")
		return
	}

	// Resolve the session: a supplied id must be known; absence starts a new
	// session.
	sessionID := strings.TrimSpace(r.Header.Get(SessionIDHeader))
	var transport *Transport
	if sessionID != "" {
		var ok bool
		transport, ok = h.registry.Get(sessionID)
		if !ok {
			writeRPCError(w, http.StatusBadRequest, req.ID, codeSessionError, "invalid or expired session ID")
			return
		}
		h.registry.Touch(sessionID)
	} else {
		transport = h.registry.Create()
		sessionID = transport.ID
	}
	w.Header().Set(SessionIDHeader, sessionID)

	switch req.Method {
	case "initialize":
		h.respond(w, newResult(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: map[string]any{
				"tools":     map[string]any{},
				"logging":   map[string]any{},
				"resources": map[string]any{"subscribe": false, "listChanged": true},
			},
			ServerInfo: h.info,
		}))
	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)
	case "ping":
		h.respond(w, newResult(req.ID, map[string]any{}))
	case "tools/list":
		h.respond(w, newResult(req.ID, ListToolsResult{Tools: h.invoker.ListTools()}))
	case "tools/call":
		var params CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			h.respond(w, newError(req.ID, codeInvalidParams, "invalid tools/call params"))
			return
		}
		headers := targeting.NormalizeHeaders(r.Header)
		result := h.invoker.Call(sessionID, req.ID, params.Name, params.Arguments, headers)
		h.respond(w, newResult(req.ID, result))
	default:
		if req.IsNotification() {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		h.respond(w, newError(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method)))
	}
}

// handleStream serves the per-session SSE stream. Missed notifications are
// replayed from the event log when the client presents a Last-Event-ID
// checkpoint, then live events flow from the transport channel.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(r.Header.Get(SessionIDHeader))
	if sessionID == "" {
		writeRPCError(w, http.StatusBadRequest, nil, codeSessionError, "session ID required for stream")
		return
	}
	transport, exists := h.registry.Get(sessionID)
	if !exists {
		writeRPCError(w, http.StatusBadRequest, nil, codeSessionError, "invalid or expired session ID")
		return
	}

	// A session owns exactly one live stream; a second reader would split the
	// notification sequence between connections.
	if !transport.Attach() {
		writeRPCError(w, http.StatusConflict, nil, codeSessionError, "session already has an active stream")
		return
	}
	defer transport.Detach()

	utils.SetupSSEHeaders(w)
	w.Header().Set(SessionIDHeader, sessionID)
	flusher.Flush()

	h.registry.Touch(sessionID)

	lastID := r.Header.Get("Last-Event-ID")
	for _, ev := range h.events.ReplayAfter(sessionID, lastID) {
		utils.WriteSSEEvent(w, flusher, ev.ID, ev.Payload)
		lastID = ev.ID
	}

	// Notifications produced while the client was away sit in both the event
	// log and the stream buffer. Drop the buffered copies the replay already
	// covered; event ids are monotone per session, so a string compare decides.
drain:
	for {
		select {
		case ev := <-transport.Notify():
			if ev.ID > lastID {
				utils.WriteSSEEvent(w, flusher, ev.ID, ev.Payload)
				lastID = ev.ID
			}
		default:
			break drain
		}
	}

	ctx := r.Context()
	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session_id", sessionID).Msg("client disconnected from stream")
			return
		case <-transport.Closed():
			return
		case <-ticker.C:
			h.registry.Touch(sessionID)
			utils.WriteSSEComment(w, flusher, "ping")
		case ev := <-transport.Notify():
			if ev.ID <= lastID {
				continue
			}
			h.registry.Touch(sessionID)
			utils.WriteSSEEvent(w, flusher, ev.ID, ev.Payload)
			lastID = ev.ID
		}
	}
}

// handleDelete tears down one session explicitly.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.Header.Get(SessionIDHeader))
	if sessionID == "" || !h.registry.Remove(sessionID) {
		writeRPCError(w, http.StatusBadRequest, nil, codeSessionError, "invalid or expired session ID")
		return
	}
	h.events.Drop(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respond(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON-RPC response")
	}
}

func writeRPCError(w http.ResponseWriter, status int, id json.RawMessage, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(newError(id, code, message)); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON-RPC error")
	}
}
