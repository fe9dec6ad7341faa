package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fuppas-erp/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (401 JSON if unauthenticated) ───────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Backup restore: the upload can be an entire dataset, so it gets its
		// own 50 MB limit instead of the standard 1 MB.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireOwner)
			r.Use(RequestBodyLimit(50 << 20))
			r.Post("/api/backup/restore", h.restoreBackup)
		})

		// Everything else: 1 MB body limit to prevent unbounded request abuse.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			// Auth
			r.Get("/api/auth/me", h.me)

			// Branch directory
			r.Get("/api/branches", h.listBranches)

			// Inventory
			r.Get("/api/branches/{branchID}/inventory", h.listInventory)
			r.Get("/api/branches/{branchID}/inventory/summary", h.stockSummary)
			r.Post("/api/inventory", h.createItem)
			r.Put("/api/inventory/{id}", h.updateItem)
			r.Delete("/api/inventory/{id}", h.deleteItem)
			r.Post("/api/inventory/{id}/adjust", h.adjustStock)

			// Stock transfers
			r.Post("/api/transfers", h.requestTransfer)
			r.Get("/api/transfers", h.listTransfers)
			r.Post("/api/transfers/{id}/approve", h.approveTransfer)
			r.Post("/api/transfers/{id}/deny", h.denyTransfer)

			// Notifications
			r.Get("/api/branches/{branchID}/notifications", h.listNotifications)
			r.Post("/api/branches/{branchID}/notifications/read", h.markNotificationsRead)
			r.Delete("/api/branches/{branchID}/notifications", h.clearNotifications)

			// Printing jobs
			r.Post("/api/jobs", h.createJob)
			r.Get("/api/jobs", h.listJobs)
			r.Get("/api/jobs/{id}", h.getJob)
			r.Post("/api/jobs/{id}/advance", h.advanceJob)
			r.Post("/api/jobs/{id}/payment", h.recordJobPayment)

			// Point of sale
			r.Post("/api/sales", h.recordSale)
			r.Get("/api/transactions", h.listTransactions)
			r.Post("/api/transactions/{id}/void", h.voidTransaction)

			// CRM
			r.Get("/api/customers", h.listCustomers)
			r.Post("/api/customers", h.createCustomer)
			r.Get("/api/customers/{id}", h.getCustomer)
			r.Put("/api/customers/{id}", h.updateCustomer)
			r.Get("/api/customers/{id}/communications", h.listCommunications)
			r.Post("/api/customers/{id}/communications", h.logCommunication)

			// Reports
			r.Get("/api/reports/sales-summary", h.salesSummaryReport)
			r.Get("/api/reports/job-profitability", h.jobProfitabilityReport)

			// AI support chat (SSE)
			r.Post("/api/support/chat", h.supportChat)

			// ── Owner-only administration ─────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(h.RequireOwner)

				r.Post("/api/branches", h.createBranch)
				r.Put("/api/branches/{id}", h.updateBranch)
				r.Post("/api/branches/{id}/deactivate", h.deactivateBranch)

				r.Get("/api/managers", h.listManagers)
				r.Post("/api/managers", h.createManager)
				r.Post("/api/managers/{id}/deactivate", h.deactivateManager)

				r.Get("/api/reports/branch-performance", h.branchPerformanceReport)

				r.Post("/api/backup", h.createBackup)
				r.Get("/api/backup/logs", h.listBackupLogs)

				r.Get("/api/audit", h.listAuditEntries)

				r.Get("/api/settings/low-stock-threshold", h.getLowStockThreshold)
				r.Put("/api/settings/low-stock-threshold", h.setLowStockThreshold)
			})
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts and parses the {id} URL parameter.
func urlID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// urlBranchID extracts and parses the {branchID} URL parameter.
func urlBranchID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "branchID"))
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
