package app

import "fuppas-erp/internal/core"

// ManagerSession is returned on successful authentication.
type ManagerSession struct {
	ManagerID int    `json:"manager_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	BranchID  *int   `json:"branch_id,omitempty"`
}

// ManagerResult is a manager profile with the password hash stripped.
type ManagerResult struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	BranchID *int   `json:"branch_id,omitempty"`
	IsActive bool   `json:"is_active"`
}

// BackupResult carries a completed export: the raw envelope for download plus
// the manifest recorded in the backup log.
type BackupResult struct {
	Envelope []byte `json:"-"`
	Summary  string `json:"summary"`
	SizeKB   int    `json:"size_kb"`
}

// SupportResult is the support assistant's answer for the chat UI.
type SupportResult struct {
	Message          string   `json:"message"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

func managerResult(m *core.Manager) *ManagerResult {
	return &ManagerResult{
		ID:       m.ID,
		Name:     m.Name,
		Username: m.Username,
		Role:     m.Role,
		BranchID: m.BranchID,
		IsActive: m.IsActive,
	}
}
