package web

import (
	"net/http"
	"strconv"

	"fuppas-erp/internal/app"
	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

// createJob handles POST /api/jobs.
func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BranchID      int                `json:"branch_id"`
		CustomerID    *int               `json:"customer_id"`
		CustomerName  string             `json:"customer_name"`
		CustomerEmail string             `json:"customer_email"`
		CustomerPhone string             `json:"customer_phone"`
		ServiceType   string             `json:"service_type"`
		Quantity      int                `json:"quantity"`
		PageSize      string             `json:"page_size"`
		GSM           *int               `json:"gsm"`
		MaterialCost  decimal.Decimal    `json:"material_cost"`
		LaborCost     decimal.Decimal    `json:"labor_cost"`
		Overhead      decimal.Decimal    `json:"overhead"`
		Markup        decimal.Decimal    `json:"markup"`
		Materials     []core.JobMaterial `json:"materials"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	job, err := h.svc.CreateJob(r.Context(), app.CreateJobRequest{
		BranchID:      body.BranchID,
		CustomerID:    body.CustomerID,
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		CustomerPhone: body.CustomerPhone,
		ServiceType:   body.ServiceType,
		Quantity:      body.Quantity,
		PageSize:      body.PageSize,
		GSM:           body.GSM,
		MaterialCost:  body.MaterialCost,
		LaborCost:     body.LaborCost,
		Overhead:      body.Overhead,
		Markup:        body.Markup,
		Materials:     body.Materials,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, job)
}

// getJob handles GET /api/jobs/{id}.
func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid job ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	job, err := h.svc.GetJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, job)
}

// listJobs handles GET /api/jobs?branch_id=&status=.
func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.Atoi(r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, r, "branch_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	jobs, err := h.svc.ListJobs(r.Context(), branchID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, jobs)
}

// advanceJob handles POST /api/jobs/{id}/advance.
func (h *Handler) advanceJob(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid job ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	job, err := h.svc.AdvanceJob(r.Context(), id, body.Status, body.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, job)
}

// recordJobPayment handles POST /api/jobs/{id}/payment.
func (h *Handler) recordJobPayment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid job ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		Amount        decimal.Decimal `json:"amount"`
		PaymentMethod string          `json:"payment_method"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	job, err := h.svc.RecordJobPayment(r.Context(), id, body.Amount, body.PaymentMethod)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, job)
}

// recordSale handles POST /api/sales.
func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BranchID      int             `json:"branch_id"`
		Lines         []core.SaleLine `json:"lines"`
		PaymentMethod string          `json:"payment_method"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one sale line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	txn, err := h.svc.RecordSale(r.Context(), app.RecordSaleRequest{
		BranchID:      body.BranchID,
		Lines:         body.Lines,
		PaymentMethod: body.PaymentMethod,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, txn)
}

// listTransactions handles GET /api/transactions?branch_id=.
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.Atoi(r.URL.Query().Get("branch_id"))
	if err != nil {
		writeError(w, r, "branch_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	transactions, err := h.svc.ListTransactions(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, transactions)
}

// voidTransaction handles POST /api/transactions/{id}/void.
func (h *Handler) voidTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid transaction ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Reason == "" {
		writeError(w, r, "a void reason is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	claims := authFromContext(r.Context())
	txn, err := h.svc.VoidTransaction(r.Context(), id, body.Reason, claims.ManagerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, txn)
}
