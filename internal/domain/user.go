package domain

import "time"

// User is an account that owns agent deployments. Accounts are created
// either with an email/password pair or through the GitHub OAuth flow.
type User struct {
	ID             string
	Email          string
	FullName       string
	PasswordHash   []byte
	GitHubID       string
	GitHubUsername string
	IsActive       bool
	CreatedAt      time.Time
}
