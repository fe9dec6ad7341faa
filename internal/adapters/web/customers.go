package web

import (
	"net/http"
	"strconv"

	"fuppas-erp/internal/app"
	"fuppas-erp/internal/core"
)

// listCustomers handles GET /api/customers?branch_id=.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.Atoi(r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, r, "branch_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	customers, err := h.svc.ListCustomers(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, customers)
}

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BranchID int    `json:"branch_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	customer, err := h.svc.CreateCustomer(r.Context(), app.CreateCustomerRequest{
		BranchID: body.BranchID,
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		Address:  body.Address,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, customer)
}

// getCustomer handles GET /api/customers/{id}.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid customer ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

// updateCustomer handles PUT /api/customers/{id}.
func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid customer ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body core.Customer
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ID = id

	customer, err := h.svc.UpdateCustomer(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

// listCommunications handles GET /api/customers/{id}/communications.
func (h *Handler) listCommunications(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid customer ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	logs, err := h.svc.ListCommunications(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, logs)
}

// logCommunication handles POST /api/customers/{id}/communications.
func (h *Handler) logCommunication(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid customer ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		LogType string `json:"log_type"`
		Notes   string `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	claims := authFromContext(r.Context())
	entry, err := h.svc.LogCommunication(r.Context(), id, body.LogType, body.Notes, claims.ManagerID)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, entry)
}

// salesSummaryReport handles GET /api/reports/sales-summary?branch_id=&from=&to=.
func (h *Handler) salesSummaryReport(w http.ResponseWriter, r *http.Request) {
	branchID, from, to, ok := reportParams(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.GetSalesSummary(r.Context(), branchID, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// jobProfitabilityReport handles GET /api/reports/job-profitability?branch_id=&from=&to=.
func (h *Handler) jobProfitabilityReport(w http.ResponseWriter, r *http.Request) {
	branchID, from, to, ok := reportParams(w, r)
	if !ok {
		return
	}
	report, err := h.svc.GetJobProfitability(r.Context(), branchID, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// branchPerformanceReport handles GET /api/reports/branch-performance.
func (h *Handler) branchPerformanceReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetBranchPerformance(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// reportParams parses the shared branch_id/from/to query parameters.
// Dates are YYYY-MM-DD, inclusive on both ends.
func reportParams(w http.ResponseWriter, r *http.Request) (branchID int, from, to string, ok bool) {
	branchID, err := strconv.Atoi(r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, r, "branch_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return 0, "", "", false
	}
	from = r.URL.Query().Get("from")
	to = r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, r, "from and to dates are required (YYYY-MM-DD)", "BAD_REQUEST", http.StatusBadRequest)
		return 0, "", "", false
	}
	return branchID, from, to, true
}
