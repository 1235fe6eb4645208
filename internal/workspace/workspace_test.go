package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrepareCreatesUniqueDirectories(t *testing.T) {
	manager, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := manager.Prepare("agt-1")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	second, err := manager.Prepare("agt-1")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if first == second {
		t.Fatalf("Prepare returned the same path twice: %s", first)
	}
	for _, dir := range []string{first, second} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory at %s: %v", dir, err)
		}
		if !strings.Contains(filepath.Base(dir), "agt-1") {
			t.Fatalf("workspace name %s should embed the agent id", dir)
		}
	}
}

func TestPrepareRejectsEmptyID(t *testing.T) {
	manager, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := manager.Prepare(""); err == nil {
		t.Fatalf("Prepare must reject an empty identifier")
	}
}

func TestCleanupRemovesWorkspace(t *testing.T) {
	manager, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir, err := manager.Prepare("agt-1")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("import os\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := manager.Cleanup(dir); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("workspace should be gone after cleanup")
	}
}

func TestCleanupRefusesOutsideRoot(t *testing.T) {
	manager, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	outside := t.TempDir()
	if err := manager.Cleanup(outside); err == nil {
		t.Fatalf("Cleanup must refuse paths outside the root")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("outside directory must survive: %v", err)
	}
}

func TestCleanupEmptyPathIsNoop(t *testing.T) {
	manager, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := manager.Cleanup(""); err != nil {
		t.Fatalf("Cleanup(\"\") should be a no-op, got %v", err)
	}
}
