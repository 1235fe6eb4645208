package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveHeadNonRepository(t *testing.T) {
	if got := ResolveHead(t.TempDir()); got != "" {
		t.Fatalf("ResolveHead on a plain directory = %q, want empty", got)
	}
}

func TestResolveHeadMissingDirectory(t *testing.T) {
	if got := ResolveHead(filepath.Join(t.TempDir(), "missing")); got != "" {
		t.Fatalf("ResolveHead on a missing directory = %q, want empty", got)
	}
}

func TestResolveHeadCorruptRepository(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if got := ResolveHead(dir); got != "" {
		t.Fatalf("ResolveHead on a corrupt repository = %q, want empty", got)
	}
}
