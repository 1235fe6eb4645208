package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager owns the disposable checkout directories used by deployment runs.
// Each run gets a uniquely named directory that must be removed exactly once
// when the run completes, whether it succeeded or failed.
type Manager struct {
	root string
}

// New ensures the workspace root exists and is accessible. An empty root
// falls back to the system temporary directory.
func New(root string) (*Manager, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Prepare creates a fresh, uniquely named directory for one run of the
// identified agent. The directory is never shared across concurrent runs.
func (m *Manager) Prepare(agentID string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("workspace identifier cannot be empty")
	}
	dir, err := os.MkdirTemp(m.root, "agent_"+agentID+"_")
	if err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// Cleanup removes a workspace directory. Only paths inside the configured
// root are eligible.
func (m *Manager) Cleanup(path string) error {
	if path == "" {
		return nil
	}
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to cleanup path outside workspace root")
	}
	return os.RemoveAll(path)
}
