package git

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateRepoURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"https form", "https://github.com/acme/bot", true},
		{"ssh form", "git@github.com:acme/bot.git", true},
		{"bare host prefix", "github.com/acme/bot", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"other host", "https://gitlab.com/acme/bot", false},
		{"ftp scheme", "ftp://example.com/repo", false},
		{"local path", "/srv/repos/bot.git", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateRepoURL(tc.url); got != tc.want {
				t.Fatalf("ValidateRepoURL(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestCloneRejectsInvalidURL(t *testing.T) {
	err := Clone(context.Background(), "https://gitlab.com/acme/bot", "main", t.TempDir())
	if !errors.Is(err, ErrInvalidRepoURL) {
		t.Fatalf("Clone error = %v, want ErrInvalidRepoURL", err)
	}
}

func TestCloneRejectsEmptyArguments(t *testing.T) {
	if err := Clone(context.Background(), "https://github.com/acme/bot", "main", ""); err == nil {
		t.Fatalf("Clone must reject an empty destination")
	}
	if err := Clone(context.Background(), "https://github.com/acme/bot", "", t.TempDir()); err == nil {
		t.Fatalf("Clone must reject an empty branch")
	}
}

func TestCloneExpiredContextYieldsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	err := Clone(ctx, "https://github.com/acme/bot", "main", t.TempDir())
	if !errors.Is(err, ErrCloneTimeout) {
		t.Fatalf("Clone error = %v, want ErrCloneTimeout", err)
	}
}

func TestCloneErrorMessageIncludesOutput(t *testing.T) {
	err := &CloneError{Output: "fatal: repository not found\n", Err: errors.New("exit status 128")}
	got := err.Error()
	if got != "git: clone failed: exit status 128: fatal: repository not found" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, err.Err) {
		t.Fatalf("CloneError must unwrap to the process error")
	}
}
