package domain

import (
	"encoding/json"
	"time"
)

// Deployment statuses an agent moves through. pending is set at record
// creation; detected and failed are terminal for a run.
const (
	StatusPending   = "pending"
	StatusCloning   = "cloning"
	StatusDetecting = "detecting"
	StatusDetected  = "detected"
	StatusFailed    = "failed"
)

// Agent captures one agent deployment and its pipeline outcome.
type Agent struct {
	ID            string
	AgentID       string
	Name          string
	Description   string
	RepositoryURL string
	Branch        string
	CommitSHA     string
	Framework     string
	Status        string
	Endpoint      string
	EnvVars       []byte
	Config        json.RawMessage
	UserID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeployedAt    *time.Time
}

// AgentDetection carries the fields persisted when a run reaches detected.
type AgentDetection struct {
	AgentID    string
	Framework  string
	CommitSHA  string
	DeployedAt time.Time
}
