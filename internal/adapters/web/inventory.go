package web

import (
	"net/http"
	"strconv"

	"fuppas-erp/internal/app"
	"fuppas-erp/internal/core"

	"github.com/shopspring/decimal"
)

// listInventory handles GET /api/branches/{branchID}/inventory.
func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	branchID, err := urlBranchID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	items, err := h.svc.ListInventory(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

// stockSummary handles GET /api/branches/{branchID}/inventory/summary.
func (h *Handler) stockSummary(w http.ResponseWriter, r *http.Request) {
	branchID, err := urlBranchID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	summary, err := h.svc.GetStockSummary(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// createItem handles POST /api/inventory.
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BranchID     int              `json:"branch_id"`
		SKU          string           `json:"sku"`
		Name         string           `json:"name"`
		Category     string           `json:"category"`
		ItemType     string           `json:"item_type"`
		StockLevel   int              `json:"stock_level"`
		ReorderPoint int              `json:"reorder_point"`
		UnitCost     decimal.Decimal  `json:"unit_cost"`
		RetailPrice  *decimal.Decimal `json:"retail_price"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	item, err := h.svc.CreateItem(r.Context(), app.CreateItemRequest{
		BranchID:     body.BranchID,
		SKU:          body.SKU,
		Name:         body.Name,
		Category:     body.Category,
		ItemType:     body.ItemType,
		StockLevel:   body.StockLevel,
		ReorderPoint: body.ReorderPoint,
		UnitCost:     body.UnitCost,
		RetailPrice:  body.RetailPrice,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, item)
}

// updateItem handles PUT /api/inventory/{id}.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid item ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body core.InventoryItem
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ID = id

	item, err := h.svc.UpdateItem(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// deleteItem handles DELETE /api/inventory/{id}.
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid item ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	claims := authFromContext(r.Context())
	if err := h.svc.DeleteItem(r.Context(), id, claims.ManagerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adjustStock handles POST /api/inventory/{id}/adjust.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid item ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	claims := authFromContext(r.Context())
	item, err := h.svc.AdjustStock(r.Context(), id, body.Delta, claims.ManagerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// requestTransfer handles POST /api/transfers.
func (h *Handler) requestTransfer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OriginBranchID      int `json:"origin_branch_id"`
		DestinationBranchID int `json:"destination_branch_id"`
		ItemID              int `json:"item_id"`
		Quantity            int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	transfer, err := h.svc.RequestTransfer(r.Context(), app.TransferRequest{
		OriginBranchID:      body.OriginBranchID,
		DestinationBranchID: body.DestinationBranchID,
		ItemID:              body.ItemID,
		Quantity:            body.Quantity,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, transfer)
}

// listTransfers handles GET /api/transfers?branch_id=&status=.
func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	var branchID *int
	if v := r.URL.Query().Get("branch_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "invalid branch_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		branchID = &id
	}

	transfers, err := h.svc.ListTransfers(r.Context(), branchID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, transfers)
}

// approveTransfer handles POST /api/transfers/{id}/approve.
func (h *Handler) approveTransfer(w http.ResponseWriter, r *http.Request) {
	h.resolveTransfer(w, r, true)
}

// denyTransfer handles POST /api/transfers/{id}/deny.
func (h *Handler) denyTransfer(w http.ResponseWriter, r *http.Request) {
	h.resolveTransfer(w, r, false)
}

func (h *Handler) resolveTransfer(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid transfer ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	claims := authFromContext(r.Context())
	transfer, err := h.svc.ResolveTransfer(r.Context(), id, approve, claims.ManagerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, transfer)
}

// listNotifications handles GET /api/branches/{branchID}/notifications.
func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	branchID, err := urlBranchID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	notifications, err := h.svc.ListNotifications(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, notifications)
}

// markNotificationsRead handles POST /api/branches/{branchID}/notifications/read.
func (h *Handler) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	branchID, err := urlBranchID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.MarkNotificationsRead(r.Context(), branchID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearNotifications handles DELETE /api/branches/{branchID}/notifications.
func (h *Handler) clearNotifications(w http.ResponseWriter, r *http.Request) {
	branchID, err := urlBranchID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.ClearNotifications(r.Context(), branchID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
