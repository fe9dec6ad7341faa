package web

import (
	"net/http"

	"fuppas-erp/internal/app"
	"fuppas-erp/internal/core"
)

// listBranches handles GET /api/branches.
func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.svc.ListBranches(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, branches)
}

// createBranch handles POST /api/branches.
func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string `json:"name"`
		Address      string `json:"address"`
		BranchNumber string `json:"branch_number"`
		BranchEmail  string `json:"branch_email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	claims := authFromContext(r.Context())
	branch, err := h.svc.CreateBranch(r.Context(), app.CreateBranchRequest{
		Name:         body.Name,
		Address:      body.Address,
		BranchNumber: body.BranchNumber,
		BranchEmail:  body.BranchEmail,
	}, claims.ManagerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, branch)
}

// updateBranch handles PUT /api/branches/{id}.
func (h *Handler) updateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var body core.Branch
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ID = id

	claims := authFromContext(r.Context())
	branch, err := h.svc.UpdateBranch(r.Context(), body, claims.ManagerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, branch)
}

// deactivateBranch handles POST /api/branches/{id}/deactivate.
func (h *Handler) deactivateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid branch ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	claims := authFromContext(r.Context())
	if err := h.svc.DeactivateBranch(r.Context(), id, claims.ManagerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listManagers handles GET /api/managers.
func (h *Handler) listManagers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.svc.ListManagers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, managers)
}

// createManager handles POST /api/managers.
func (h *Handler) createManager(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		BranchID *int   `json:"branch_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	claims := authFromContext(r.Context())
	manager, err := h.svc.CreateManager(r.Context(), app.CreateManagerRequest{
		Name:     body.Name,
		Username: body.Username,
		Password: body.Password,
		Role:     body.Role,
		BranchID: body.BranchID,
	}, claims.ManagerID)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, manager)
}

// deactivateManager handles POST /api/managers/{id}/deactivate.
func (h *Handler) deactivateManager(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, "invalid manager ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	claims := authFromContext(r.Context())
	if id == claims.ManagerID {
		writeError(w, r, "cannot deactivate your own account", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeactivateManager(r.Context(), id, claims.ManagerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
