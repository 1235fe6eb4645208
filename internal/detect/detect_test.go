package detect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"log/slog"
)

func newTestDetector() *Detector {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger, 0, 0)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDetectFromRequirements(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"langgraph", "langgraph==0.2.1\nhttpx\n", FrameworkLangGraph},
		{"langchain", "langchain>=0.3\nopenai\n", FrameworkLangChain},
		{"crewai", "crewai\n", FrameworkCrewAI},
		{"autogpt", "autogpt\n", FrameworkAutoGPT},
		{"generic deps", "requests==2.31\nflask\n", FrameworkUnknown},
		{"case insensitive", "LangGraph==0.2.1\n", FrameworkLangGraph},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "requirements.txt", tc.contents)
			if got := newTestDetector().Detect(dir); got != tc.want {
				t.Fatalf("Detect = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectPriorityWithinOneSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "langchain\nlanggraph\n")
	if got := newTestDetector().Detect(dir); got != FrameworkLangGraph {
		t.Fatalf("Detect = %q, want langgraph ahead of langchain", got)
	}
}

func TestDetectManifestBeatsImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "crewai\n")
	writeFile(t, dir, "main.py", "import langgraph\n")
	if got := newTestDetector().Detect(dir); got != FrameworkCrewAI {
		t.Fatalf("Detect = %q, requirements.txt must win over imports", got)
	}
}

func TestDetectPyprojectCustom(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.poetry]\nname = \"bot\"\n\n[tool.poetry.dependencies]\nrequests = \"^2\"\n")
	if got := newTestDetector().Detect(dir); got != FrameworkCustom {
		t.Fatalf("Detect = %q, want custom for unrecognized dependency metadata", got)
	}
}

func TestDetectEmptyWorkspaceUnknown(t *testing.T) {
	if got := newTestDetector().Detect(t.TempDir()); got != FrameworkUnknown {
		t.Fatalf("Detect = %q, want unknown for an empty workspace", got)
	}
}

func TestDetectPoetryLock(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "poetry.lock", "[[package]]\nname = \"langchain\"\nversion = \"0.3.0\"\n")
	if got := newTestDetector().Detect(dir); got != FrameworkLangChain {
		t.Fatalf("Detect = %q, want langchain from poetry.lock", got)
	}
}

func TestDetectPipfileLockJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Pipfile.lock", `{"default": {"crewai": {"version": "==0.5"}}}`)
	if got := newTestDetector().Detect(dir); got != FrameworkCrewAI {
		t.Fatalf("Detect = %q, want crewai from Pipfile.lock", got)
	}
}

func TestDetectMalformedPipfileLockDegrades(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Pipfile.lock", `{"default": {"langgraph": `)
	if got := newTestDetector().Detect(dir); got != FrameworkLangGraph {
		t.Fatalf("Detect = %q, malformed JSON should still match raw text", got)
	}
}

func TestDetectFromImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agent/runner.py", "import os\nfrom langgraph.graph import StateGraph\n")
	if got := newTestDetector().Detect(dir); got != FrameworkLangGraph {
		t.Fatalf("Detect = %q, want langgraph from import scan", got)
	}
}

func TestDetectImportsRequireStatementAnchor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "# mentions langchain in a comment\nx = \"langchain\"\n")
	if got := newTestDetector().Detect(dir); got != FrameworkUnknown {
		t.Fatalf("Detect = %q, bare mentions must not count as imports", got)
	}
}

func TestDetectImportsAggregatePriority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "import langchain\n")
	writeFile(t, dir, "b.py", "import langgraph\n")
	if got := newTestDetector().Detect(dir); got != FrameworkLangGraph {
		t.Fatalf("Detect = %q, priority applies across all scanned files", got)
	}
}

func TestDetectIgnoresVendoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".venv/lib/pkg.py", "import langgraph\n")
	writeFile(t, dir, "node_modules/x/y.py", "import crewai\n")
	if got := newTestDetector().Detect(dir); got != FrameworkUnknown {
		t.Fatalf("Detect = %q, vendored dirs must be pruned", got)
	}
}

func TestDetectFileCapStopsWalk(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	detector := New(logger, 3, 200)
	for i := 0; i < 3; i++ {
		writeFile(t, dir, fmt.Sprintf("a%02d.py", i), "import os\n")
	}
	// Sorted after the cap fillers, so this file is never scanned.
	writeFile(t, dir, "z_late.py", "import langgraph\n")
	if got := detector.Detect(dir); got != FrameworkUnknown {
		t.Fatalf("Detect = %q, file cap must bound the scan", got)
	}
}

func TestDetectLineCapStopsScan(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	detector := New(logger, 500, 5)
	content := ""
	for i := 0; i < 10; i++ {
		content += "x = 1\n"
	}
	content += "import langgraph\n"
	writeFile(t, dir, "deep.py", content)
	if got := detector.Detect(dir); got != FrameworkUnknown {
		t.Fatalf("Detect = %q, line cap must bound per-file scanning", got)
	}
}

func TestDetectNonexistentRootUnknown(t *testing.T) {
	if got := newTestDetector().Detect(filepath.Join(t.TempDir(), "missing")); got != FrameworkUnknown {
		t.Fatalf("Detect on a missing root must return unknown")
	}
}
