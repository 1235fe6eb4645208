package agent

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/tejakusireddy/getonstack/internal/domain"
	"github.com/tejakusireddy/getonstack/internal/git"
	"github.com/tejakusireddy/getonstack/internal/repository"
	"github.com/tejakusireddy/getonstack/pkg/config"
	"github.com/tejakusireddy/getonstack/pkg/crypto"
)

// ErrInvalidRepoURL mirrors the pipeline's URL guard at accept time so a
// request with an unusable reference is rejected up front.
var ErrInvalidRepoURL = git.ErrInvalidRepoURL

// ErrNameRequired rejects agents without a name.
var ErrNameRequired = errors.New("agent: name required")

// Runner launches one background deployment run for an agent record.
type Runner interface {
	Run(ctx context.Context, agentID string)
}

// CreateRequest carries user-supplied agent parameters. Immutable once
// accepted.
type CreateRequest struct {
	Name          string
	Description   string
	RepositoryURL string
	Branch        string
	EnvVars       map[string]string
	Config        json.RawMessage
}

// Service manages agent records and hands accepted deployments to the
// pipeline.
type Service struct {
	agents repository.AgentRepository
	runner Runner
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs an agent service.
func New(agents repository.AgentRepository, runner Runner, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{agents: agents, runner: runner, logger: logger, cfg: cfg}
}

// Create accepts a deployment request, persists a pending record, and hands
// the run off to the pipeline. The caller returns immediately; the run
// proceeds as independent background work. A record never has more than one
// in-flight run because runs are only ever scheduled here, at creation.
func (s Service) Create(ctx context.Context, userID string, req CreateRequest) (*domain.Agent, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if !git.ValidateRepoURL(req.RepositoryURL) {
		return nil, ErrInvalidRepoURL
	}
	branch := strings.TrimSpace(req.Branch)
	if branch == "" {
		branch = s.cfg.DefaultBranch
	}

	envVars, err := crypto.EncryptMap(s.cfg.EnvEncryptionKey, req.EnvVars)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	agent := &domain.Agent{
		ID:            uuid.NewString(),
		AgentID:       newAgentID(),
		Name:          req.Name,
		Description:   req.Description,
		RepositoryURL: req.RepositoryURL,
		Branch:        branch,
		Status:        domain.StatusPending,
		EnvVars:       envVars,
		Config:        req.Config,
		UserID:        userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.agents.CreateAgent(ctx, agent); err != nil {
		return nil, err
	}
	s.logger.Info("agent accepted", "agent_id", agent.AgentID, "repository_url", agent.RepositoryURL, "branch", branch)

	go s.runner.Run(context.Background(), agent.AgentID)

	return agent, nil
}

// List returns the user's agents, optionally filtered by status.
func (s Service) List(ctx context.Context, userID, status string) ([]domain.Agent, error) {
	return s.agents.ListAgentsByUser(ctx, userID, status)
}

// Get returns one agent scoped to its owner.
func (s Service) Get(ctx context.Context, agentID, userID string) (*domain.Agent, error) {
	return s.agents.GetAgentForUser(ctx, agentID, userID)
}

// Delete removes an agent owned by the user.
func (s Service) Delete(ctx context.Context, agentID, userID string) error {
	if _, err := s.agents.GetAgentForUser(ctx, agentID, userID); err != nil {
		return err
	}
	if err := s.agents.DeleteAgent(ctx, agentID); err != nil {
		return err
	}
	s.logger.Info("agent deleted", "agent_id", agentID)
	return nil
}

// newAgentID generates the public identifier, e.g. agt_1a2b3c4d5e6f7a8b.
func newAgentID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "agt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	}
	return "agt_" + hex.EncodeToString(buf)
}
