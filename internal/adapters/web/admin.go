package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// createBackup handles POST /api/backup. The response carries the full export
// envelope so the browser can offer it as a download.
func (h *Handler) createBackup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Recipient string `json:"recipient"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	claims := authFromContext(r.Context())
	result, err := h.svc.CreateBackup(r.Context(), body.Recipient, claims.ManagerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Summary  string          `json:"summary"`
		SizeKB   int             `json:"size_kb"`
		Envelope json.RawMessage `json:"envelope"`
	}
	writeJSON(w, response{
		Summary:  result.Summary,
		SizeKB:   result.SizeKB,
		Envelope: json.RawMessage(result.Envelope),
	})
}

// restoreBackup handles POST /api/backup/restore. The body is the raw envelope
// exactly as a previous export produced it.
func (h *Handler) restoreBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, "failed to read upload: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if len(raw) == 0 {
		writeError(w, r, "backup file is empty", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	claims := authFromContext(r.Context())
	if err := h.svc.RestoreBackup(r.Context(), raw, claims.ManagerID); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "restored"})
}

// listBackupLogs handles GET /api/backup/logs.
func (h *Handler) listBackupLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.ListBackupLogs(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, logs)
}

// listAuditEntries handles GET /api/audit?module=&limit=.
func (h *Handler) listAuditEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "invalid limit", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.svc.ListAuditEntries(r.Context(), r.URL.Query().Get("module"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// getLowStockThreshold handles GET /api/settings/low-stock-threshold.
func (h *Handler) getLowStockThreshold(w http.ResponseWriter, r *http.Request) {
	threshold, err := h.svc.GetGlobalLowStockThreshold(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Threshold int `json:"threshold"`
	}
	writeJSON(w, response{Threshold: threshold})
}

// setLowStockThreshold handles PUT /api/settings/low-stock-threshold.
func (h *Handler) setLowStockThreshold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Threshold int `json:"threshold"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	claims := authFromContext(r.Context())
	if err := h.svc.SetGlobalLowStockThreshold(r.Context(), body.Threshold, claims.ManagerID); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
