package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tejakusireddy/getonstack/internal/domain"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// agentResponse is the serialized agent record returned to callers.
type agentResponse struct {
	ID            string          `json:"id"`
	AgentID       string          `json:"agent_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	RepositoryURL string          `json:"repository_url"`
	Branch        string          `json:"branch"`
	CommitSHA     string          `json:"commit_sha,omitempty"`
	Framework     string          `json:"framework,omitempty"`
	Status        string          `json:"status"`
	Endpoint      string          `json:"endpoint,omitempty"`
	Config        json.RawMessage `json:"config,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	DeployedAt    *time.Time      `json:"deployed_at,omitempty"`
}

// toAgentResponse maps a domain record to its wire form. Encrypted env vars
// are never echoed back.
func toAgentResponse(agent *domain.Agent) agentResponse {
	return agentResponse{
		ID:            agent.ID,
		AgentID:       agent.AgentID,
		Name:          agent.Name,
		Description:   agent.Description,
		RepositoryURL: agent.RepositoryURL,
		Branch:        agent.Branch,
		CommitSHA:     agent.CommitSHA,
		Framework:     agent.Framework,
		Status:        agent.Status,
		Endpoint:      agent.Endpoint,
		Config:        agent.Config,
		CreatedAt:     agent.CreatedAt,
		DeployedAt:    agent.DeployedAt,
	}
}
