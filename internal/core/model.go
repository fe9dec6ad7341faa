package core

import "time"

// MaxBranches is the default cap on registered branches, overridable per
// installation via the MAX_BRANCHES environment variable.
const MaxBranches = 10

type BranchStatus string

const (
	BranchActive   BranchStatus = "ACTIVE"
	BranchInactive BranchStatus = "INACTIVE"
)

type Branch struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	BranchNumber  string       `json:"branch_number"`
	BranchEmail   string       `json:"branch_email"`
	Status        BranchStatus `json:"status"`
	EstablishedAt time.Time    `json:"established_at"`
}

// Manager is an authenticated account. Role "owner" sees every branch;
// "manager" is scoped to BranchID.
type Manager struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Role         string     `json:"role"`
	BranchID     *int       `json:"branch_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type NotificationKind string

const (
	NotifyInfo    NotificationKind = "INFO"
	NotifySuccess NotificationKind = "SUCCESS"
	NotifyWarning NotificationKind = "WARNING"
	NotifyError   NotificationKind = "ERROR"
)

// Notification is an in-app message. BranchID nil means broadcast.
type Notification struct {
	ID        int              `json:"id"`
	BranchID  *int             `json:"branch_id,omitempty"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

type Customer struct {
	ID        int       `json:"id"`
	BranchID  int       `json:"branch_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CommunicationLog struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	LogType    string    `json:"log_type"` // PHONE, EMAIL, IN_PERSON, SYSTEM
	Notes      string    `json:"notes"`
	UserID     *int      `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditEntry records a state-changing action with optional before/after snapshots.
type AuditEntry struct {
	ID        int        `json:"id"`
	UserID    *int       `json:"user_id,omitempty"`
	Action    string     `json:"action"`
	Module    string     `json:"module"`
	Before    []byte     `json:"before,omitempty"`
	After     []byte     `json:"after,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type BackupLog struct {
	ID        int       `json:"id"`
	Status    string    `json:"status"` // SUCCESS or FAILED
	Summary   string    `json:"summary"`
	SizeKB    int       `json:"size_kb"`
	Recipient string    `json:"recipient"`
	CreatedAt time.Time `json:"created_at"`
}
