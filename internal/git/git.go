package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrInvalidRepoURL rejects repository references that do not look like a
// GitHub URL. Validation happens before any process is spawned.
var ErrInvalidRepoURL = errors.New("git: invalid github repository url")

// ErrCloneTimeout indicates the clone exceeded its wall-clock bound.
var ErrCloneTimeout = errors.New("git: clone timed out")

// CloneError is a clone process failure with the diagnostic output preserved.
type CloneError struct {
	Output string
	Err    error
}

func (e *CloneError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		return fmt.Sprintf("git: clone failed: %v", e.Err)
	}
	return fmt.Sprintf("git: clone failed: %v: %s", e.Err, msg)
}

func (e *CloneError) Unwrap() error { return e.Err }

var acceptedURLPatterns = []string{
	"github.com/",
	"https://github.com/",
	"git@github.com:",
}

// ValidateRepoURL reports whether the URL matches a recognized GitHub shape.
// It is deterministic and side-effect free.
func ValidateRepoURL(repoURL string) bool {
	if strings.TrimSpace(repoURL) == "" {
		return false
	}
	for _, pattern := range acceptedURLPatterns {
		if strings.Contains(repoURL, pattern) {
			return true
		}
	}
	return false
}

// Clone performs a shallow, branch-scoped checkout of repoURL into dest.
// The caller bounds wall-clock duration via ctx; on deadline expiry the
// process is killed and ErrCloneTimeout is returned. Credential prompting is
// disabled so a private repository fails fast instead of blocking.
func Clone(ctx context.Context, repoURL, branch, dest string) error {
	if !ValidateRepoURL(repoURL) {
		return ErrInvalidRepoURL
	}
	if dest == "" {
		return fmt.Errorf("git: destination cannot be empty")
	}
	if branch == "" {
		return fmt.Errorf("git: branch cannot be empty")
	}
	cmd := exec.CommandContext(ctx, "git",
		"-c", "credential.helper=",
		"clone", "--depth", "1", "--branch", branch, repoURL, dest)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrCloneTimeout
		}
		return &CloneError{Output: string(output), Err: err}
	}
	return nil
}
