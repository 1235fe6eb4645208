package git

import (
	gogit "github.com/go-git/go-git/v5"
)

// ResolveHead returns the commit id at HEAD of the checked-out tree in dir.
// Best-effort: any failure yields an empty string, never an error. A missing
// commit id degrades the deployment record but must not abort the run.
func ResolveHead(dir string) string {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
