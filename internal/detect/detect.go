// Package detect classifies which agent framework a checked-out repository
// uses. Evidence sources are consulted in a fixed order and the first one
// that yields a classification wins; a failure in one source never aborts
// the ones after it.
package detect

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"log/slog"
)

// Framework labels form a closed set.
const (
	FrameworkLangGraph = "langgraph"
	FrameworkLangChain = "langchain"
	FrameworkCrewAI    = "crewai"
	FrameworkAutoGPT   = "autogpt"
	FrameworkCustom    = "custom"
	FrameworkUnknown   = "unknown"
)

// frameworkPriority is the fixed match order applied within every evidence
// source and across aggregated import matches.
var frameworkPriority = []string{
	FrameworkLangGraph,
	FrameworkLangChain,
	FrameworkCrewAI,
	FrameworkAutoGPT,
}

// dependencyMarkers distinguish "has dependency metadata, none recognized"
// (custom) from "no dependency metadata at all" (unknown).
var dependencyMarkers = []string{"project", "tool.poetry", "requires", "dependencies", "package"}

var lockfileNames = []string{"poetry.lock", "uv.lock", "Pipfile.lock"}

var ignoreDirs = map[string]struct{}{
	".git":         {},
	"venv":         {},
	".venv":        {},
	"env":          {},
	".env":         {},
	"node_modules": {},
	"__pycache__":  {},
}

var importPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(frameworkPriority))
	for _, name := range frameworkPriority {
		patterns[name] = regexp.MustCompile(`^\s*(from|import)\s+` + name + `(\.|\s|$)`)
	}
	return patterns
}()

// Detector inspects a workspace for framework evidence with bounded I/O.
type Detector struct {
	logger   *slog.Logger
	maxFiles int
	maxLines int
}

// New returns a Detector. Caps of zero or below fall back to the defaults
// (500 files, 200 lines per file).
func New(logger *slog.Logger, maxFiles, maxLines int) *Detector {
	if maxFiles <= 0 {
		maxFiles = 500
	}
	if maxLines <= 0 {
		maxLines = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger, maxFiles: maxFiles, maxLines: maxLines}
}

type evidenceSource struct {
	name    string
	inspect func(root string) (string, error)
}

// Detect returns the framework label for the repository at root. The label
// is always a member of the closed set; FrameworkUnknown is the fallback
// when no evidence source yields a decision, including when detection
// itself faults.
func (d *Detector) Detect(root string) (label string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("framework detection panicked", "error", fmt.Sprint(r))
			label = FrameworkUnknown
		}
	}()

	sources := []evidenceSource{
		{"requirements.txt", d.fromManifest("requirements.txt")},
		{"pyproject.toml", d.fromManifest("pyproject.toml")},
		{"Pipfile", d.fromManifest("Pipfile")},
		{"lockfiles", d.fromLockfiles},
		{"imports", d.fromImports},
	}
	for _, source := range sources {
		result, err := source.inspect(root)
		if err != nil {
			d.logger.Warn("evidence source failed", "source", source.name, "error", err)
			continue
		}
		if result != "" {
			return result
		}
	}
	return FrameworkUnknown
}

// fromManifest builds an evidence source over one dependency manifest at the
// workspace root. An absent manifest yields no evidence.
func (d *Detector) fromManifest(name string) func(root string) (string, error) {
	return func(root string) (string, error) {
		raw, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		return classifyKeywords(string(raw)), nil
	}
}

// fromLockfiles tries each lock-file variant in order. A malformed or
// unreadable candidate degrades to the next one, not to an error.
func (d *Detector) fromLockfiles(root string) (string, error) {
	for _, name := range lockfileNames {
		raw, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			if !os.IsNotExist(err) {
				d.logger.Warn("lockfile unreadable", "lockfile", name, "error", err)
			}
			continue
		}
		text := string(raw)
		if name == "Pipfile.lock" {
			// JSON lock files are re-serialized so keyword matching sees
			// normalized content; malformed JSON falls back to the raw text.
			var data any
			if err := json.Unmarshal(raw, &data); err == nil {
				if normalized, err := json.Marshal(data); err == nil {
					text = string(normalized)
				}
			}
		}
		if label := classifyKeywords(text); label != "" {
			return label, nil
		}
	}
	return "", nil
}

// fromImports walks the tree for line-anchored python import statements,
// pruning ignorable directories and respecting the file and line caps so
// pathological repositories cannot run detection unbounded.
func (d *Detector) fromImports(root string) (string, error) {
	found := make(map[string]struct{})
	scanned := 0

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if _, skip := ignoreDirs[entry.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".py") {
			return nil
		}
		d.scanImports(path, found)
		scanned++
		if scanned >= d.maxFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk workspace: %w", err)
	}

	for _, name := range frameworkPriority {
		if _, ok := found[name]; ok {
			return name, nil
		}
	}
	return "", nil
}

// scanImports reads at most maxLines lines of one source file, collecting
// framework names whose import pattern matches. Unreadable files are skipped.
func (d *Detector) scanImports(path string, found map[string]struct{}) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 0; line < d.maxLines && scanner.Scan(); line++ {
		text := scanner.Text()
		for name, pattern := range importPatterns {
			if pattern.MatchString(text) {
				found[name] = struct{}{}
			}
		}
	}
}

// classifyKeywords applies the shared keyword classification to manifest or
// lock-file content: first framework name present wins; generic dependency
// markers alone classify as custom; otherwise no evidence.
func classifyKeywords(text string) string {
	lowered := strings.ToLower(text)
	for _, name := range frameworkPriority {
		if strings.Contains(lowered, name) {
			return name
		}
	}
	for _, marker := range dependencyMarkers {
		if strings.Contains(lowered, marker) {
			return FrameworkCustom
		}
	}
	return ""
}
