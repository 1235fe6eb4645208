package repository

import (
	"context"

	"github.com/tejakusireddy/getonstack/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUserGitHub(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByGitHubID(ctx context.Context, githubID string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// AgentRepository stores agent deployments and their pipeline state.
type AgentRepository interface {
	CreateAgent(ctx context.Context, agent *domain.Agent) error
	GetAgentByID(ctx context.Context, agentID string) (*domain.Agent, error)
	GetAgentForUser(ctx context.Context, agentID, userID string) (*domain.Agent, error)
	ListAgentsByUser(ctx context.Context, userID, status string) ([]domain.Agent, error)
	UpdateAgentStatus(ctx context.Context, agentID, status string) error
	MarkAgentDetected(ctx context.Context, detection domain.AgentDetection) error
	DeleteAgent(ctx context.Context, agentID string) error
}
