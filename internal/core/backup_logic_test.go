package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"fuppas-erp/internal/core"
)

func validEnvelope(t *testing.T) []byte {
	t.Helper()
	env := core.BackupEnvelope{
		Version:     core.BackupVersion,
		GeneratedAt: time.Now(),
		Data: core.BackupData{
			Branches: []core.Branch{{ID: 1, Name: "Head Office", Status: core.BranchActive}},
		},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func TestParseBackupEnvelope(t *testing.T) {
	t.Run("valid envelope round-trips", func(t *testing.T) {
		env, err := core.ParseBackupEnvelope(validEnvelope(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Version != core.BackupVersion {
			t.Errorf("version = %d, want %d", env.Version, core.BackupVersion)
		}
		if len(env.Data.Branches) != 1 || env.Data.Branches[0].Name != "Head Office" {
			t.Errorf("branches did not survive the round trip: %+v", env.Data.Branches)
		}
	})

	t.Run("unknown version is rejected", func(t *testing.T) {
		var env core.BackupEnvelope
		if err := json.Unmarshal(validEnvelope(t), &env); err != nil {
			t.Fatal(err)
		}
		env.Version = core.BackupVersion + 1
		raw, _ := json.Marshal(env)
		if _, err := core.ParseBackupEnvelope(raw); err == nil {
			t.Error("expected error for unknown version, got nil")
		}
	})

	t.Run("missing generated_at is rejected", func(t *testing.T) {
		var env core.BackupEnvelope
		if err := json.Unmarshal(validEnvelope(t), &env); err != nil {
			t.Fatal(err)
		}
		env.GeneratedAt = time.Time{}
		raw, _ := json.Marshal(env)
		if _, err := core.ParseBackupEnvelope(raw); err == nil {
			t.Error("expected error for missing generated_at, got nil")
		}
	})

	t.Run("communications-only envelope is accepted", func(t *testing.T) {
		env := core.BackupEnvelope{
			Version:     core.BackupVersion,
			GeneratedAt: time.Now(),
			Data: core.BackupData{
				Communications: []core.CommunicationLog{{ID: 1, CustomerID: 1, LogType: "PHONE", Notes: "called back"}},
			},
		}
		raw, _ := json.Marshal(env)
		parsed, err := core.ParseBackupEnvelope(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(parsed.Data.Communications) != 1 {
			t.Errorf("communications did not survive the round trip: %+v", parsed.Data.Communications)
		}
	})

	t.Run("empty data is rejected", func(t *testing.T) {
		env := core.BackupEnvelope{Version: core.BackupVersion, GeneratedAt: time.Now()}
		raw, _ := json.Marshal(env)
		if _, err := core.ParseBackupEnvelope(raw); err == nil {
			t.Error("expected error for empty data, got nil")
		}
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		if _, err := core.ParseBackupEnvelope([]byte(`{"version":`)); err == nil {
			t.Error("expected error for malformed JSON, got nil")
		}
	})
}

func TestSizeKB(t *testing.T) {
	if got := core.SizeKB(make([]byte, 100)); got != 1 {
		t.Errorf("SizeKB(100 bytes) = %d, want 1", got)
	}
	if got := core.SizeKB(make([]byte, 4096)); got != 4 {
		t.Errorf("SizeKB(4096 bytes) = %d, want 4", got)
	}
}
