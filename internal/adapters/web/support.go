package web

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, f http.Flusher, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(b))
	f.Flush()
}

// supportChat handles POST /api/support/chat and streams the assistant's
// answer via SSE.
//
// SSE event types:
//
//	status  {"status":"thinking"}
//	answer  {"text":"...","suggested_actions":[...]}
//	error   {"message":"...","code":"..."}
//	done    {}
func (h *Handler) supportChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming unsupported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sendSSE(w, flusher, "status", map[string]any{"status": "thinking"})

	claims := authFromContext(r.Context())
	result, err := h.svc.AskSupport(r.Context(), req.Text, claims.ManagerID)
	if err != nil {
		sendSSE(w, flusher, "error", map[string]any{"message": err.Error(), "code": "AI_ERROR"})
		sendSSE(w, flusher, "done", map[string]any{})
		return
	}

	sendSSE(w, flusher, "answer", map[string]any{
		"text":              result.Message,
		"suggested_actions": result.SuggestedActions,
	})
	sendSSE(w, flusher, "done", map[string]any{})
}
