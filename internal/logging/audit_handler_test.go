package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func auditLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read audit file: %v", err)
	}

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Audit line is not valid JSON: %v (%s)", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestAuditHandler_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	// batchSize 0 writes every record immediately
	h, err := NewAuditHandler(path, 0, true, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create audit handler: %v", err)
	}
	defer h.Close()

	logger := slog.New(h)
	logger.Info("patient archived", "pid", 42, "outcome", "discharged")
	logger.Info("treatment archived", "tid", 7)

	entries := auditLines(t, path)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 audit entries, got %d", len(entries))
	}

	first := entries[0]
	if first["msg"] != "patient archived" {
		t.Errorf("Expected message 'patient archived', got '%v'", first["msg"])
	}
	if first["pid"] != float64(42) {
		t.Errorf("Expected pid attribute 42, got %v", first["pid"])
	}
	if first["level"] != "INFO" {
		t.Errorf("Expected level INFO, got '%v'", first["level"])
	}
	if first["time"] == nil {
		t.Error("Expected a timestamp in the audit entry")
	}
}

func TestAuditHandler_CarriesLoggerAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	h, err := NewAuditHandler(path, 0, true, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create audit handler: %v", err)
	}
	defer h.Close()

	logger := slog.New(h).With("ward", "B", "shift", 2)
	logger.Info("patient archived", "pid", 42)

	entries := auditLines(t, path)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["ward"] != "B" {
		t.Errorf("Expected logger attribute ward=B in the entry, got %v", entry["ward"])
	}
	if entry["shift"] != float64(2) {
		t.Errorf("Expected logger attribute shift=2 in the entry, got %v", entry["shift"])
	}
	if entry["pid"] != float64(42) {
		t.Errorf("Expected record attribute pid=42 in the entry, got %v", entry["pid"])
	}
}

func TestAuditHandler_QualifiesGroupedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	h, err := NewAuditHandler(path, 0, true, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create audit handler: %v", err)
	}
	defer h.Close()

	logger := slog.New(h).WithGroup("sweep").With("trigger", "ticker")
	logger.Info("retention sweep", "purged", 3)

	entries := auditLines(t, path)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["sweep.trigger"] != "ticker" {
		t.Errorf("Expected group-qualified key sweep.trigger, got %v", entry)
	}
	if entry["sweep.purged"] != float64(3) {
		t.Errorf("Expected group-qualified key sweep.purged, got %v", entry)
	}
}

func TestAuditHandler_BatchFlushesWhenFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	h, err := NewAuditHandler(path, 2, true, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create audit handler: %v", err)
	}
	defer h.Close()

	logger := slog.New(h)
	logger.Info("first")

	// One buffered entry, nothing on disk yet
	if entries := auditLines(t, path); len(entries) != 0 {
		t.Errorf("Expected no entries before the batch fills, got %d", len(entries))
	}

	logger.Info("second")

	if entries := auditLines(t, path); len(entries) != 2 {
		t.Errorf("Expected 2 entries after the batch filled, got %d", len(entries))
	}
}

func TestAuditHandler_CloseFlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	h, err := NewAuditHandler(path, 100, true, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create audit handler: %v", err)
	}

	slog.New(h).Info("pending entry")

	if err := h.Close(); err != nil {
		t.Fatalf("Failed to close audit handler: %v", err)
	}

	if entries := auditLines(t, path); len(entries) != 1 {
		t.Errorf("Expected the pending entry to be flushed on close, got %d entries", len(entries))
	}
}

func TestAuditHandler_LevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	h, err := NewAuditHandler(path, 0, true, slog.LevelWarn)
	if err != nil {
		t.Fatalf("Failed to create audit handler: %v", err)
	}
	defer h.Close()

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Info should be below the configured level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Error should pass the configured level")
	}
}

func TestAuditHandler_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	h, err := NewAuditHandler(path, 0, false, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create disabled audit handler: %v", err)
	}
	defer h.Close()

	if h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Disabled handler should report not enabled")
	}

	// No file is created when the trail is off
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Disabled handler should not touch the filesystem")
	}
}

func TestTeeHandler_FansOut(t *testing.T) {
	dir := t.TempDir()
	first, err := NewAuditHandler(filepath.Join(dir, "a.log"), 0, true, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}
	defer first.Close()
	second, err := NewAuditHandler(filepath.Join(dir, "b.log"), 0, true, slog.LevelWarn)
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}
	defer second.Close()

	logger := slog.New(NewTeeHandler(first, second))
	logger.Info("info entry")
	logger.Warn("warn entry")

	// The info record only reaches the info-level handler
	if entries := auditLines(t, filepath.Join(dir, "a.log")); len(entries) != 2 {
		t.Errorf("Expected 2 entries in first handler, got %d", len(entries))
	}
	if entries := auditLines(t, filepath.Join(dir, "b.log")); len(entries) != 1 {
		t.Errorf("Expected 1 entry in second handler, got %d", len(entries))
	}
}
