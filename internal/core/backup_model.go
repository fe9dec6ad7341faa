package core

import "time"

// BackupVersion is the envelope format version this build reads and writes.
const BackupVersion = 1

// BackupData is the exported dataset, one slice per table. A nil slice means
// the table was not captured and is left untouched on restore.
type BackupData struct {
	Branches       []Branch           `json:"branches,omitempty"`
	Managers       []Manager          `json:"managers,omitempty"`
	Inventory      []InventoryItem    `json:"inventory,omitempty"`
	Transfers      []StockTransfer    `json:"transfers,omitempty"`
	Notifications  []Notification     `json:"notifications,omitempty"`
	Customers      []Customer         `json:"customers,omitempty"`
	Communications []CommunicationLog `json:"communications,omitempty"`
	Jobs           []Job              `json:"jobs,omitempty"`
	Transactions   []Transaction      `json:"transactions,omitempty"`
	Settings       map[string]string  `json:"settings,omitempty"`
}

// BackupEnvelope wraps an export with versioning so a restore can refuse
// payloads written by an incompatible build.
type BackupEnvelope struct {
	Version     int        `json:"version"`
	GeneratedAt time.Time  `json:"generated_at"`
	Data        BackupData `json:"data"`
}
