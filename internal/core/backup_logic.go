package core

import (
	"encoding/json"
	"fmt"
)

// ParseBackupEnvelope decodes and validates a backup payload.
// Unknown versions are rejected outright rather than restored best-effort.
func ParseBackupEnvelope(raw []byte) (*BackupEnvelope, error) {
	var env BackupEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid backup payload: %w", err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// Validate checks the envelope is restorable by this build.
func (e *BackupEnvelope) Validate() error {
	if e.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %d (this build reads version %d)", e.Version, BackupVersion)
	}
	if e.GeneratedAt.IsZero() {
		return fmt.Errorf("backup payload missing generated_at timestamp")
	}
	if e.Data.Empty() {
		return fmt.Errorf("backup payload contains no data sections")
	}
	return nil
}

// Empty reports whether no table section is present.
func (d *BackupData) Empty() bool {
	return d.Branches == nil && d.Managers == nil && d.Inventory == nil &&
		d.Transfers == nil && d.Notifications == nil && d.Customers == nil &&
		d.Communications == nil && d.Jobs == nil && d.Transactions == nil &&
		d.Settings == nil
}

// SizeKB returns the payload size in whole kilobytes, minimum 1.
func SizeKB(raw []byte) int {
	kb := len(raw) / 1024
	if kb < 1 {
		kb = 1
	}
	return kb
}
