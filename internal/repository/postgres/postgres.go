package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tejakusireddy/getonstack/internal/domain"
	"github.com/tejakusireddy/getonstack/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository  = (*Repository)(nil)
	_ repository.AgentRepository = (*Repository)(nil)
)

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, email, full_name, password_hash, github_id, github_username, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.FullName, user.PasswordHash, user.GitHubID, user.GitHubUsername, user.IsActive, user.CreatedAt)
	return err
}

// UpdateUserGitHub refreshes profile fields sourced from GitHub.
func (r *Repository) UpdateUserGitHub(ctx context.Context, user *domain.User) error {
	const query = `UPDATE users SET github_username = $2, full_name = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, user.ID, user.GitHubUsername, user.FullName)
	return err
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = userSelect + ` WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByGitHubID fetches a user by GitHub account identifier.
func (r *Repository) GetUserByGitHubID(ctx context.Context, githubID string) (*domain.User, error) {
	const query = userSelect + ` WHERE github_id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, githubID))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = userSelect + ` WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

const userSelect = `SELECT id, email, full_name, password_hash, github_id, github_username, is_active, created_at FROM users`

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.GitHubID, &u.GitHubUsername, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

const agentSelect = `SELECT id, agent_id, name, description, repository_url, branch, commit_sha, framework, status, endpoint, env_vars, config, user_id, created_at, updated_at, deployed_at FROM agents`

// CreateAgent inserts an agent deployment record.
func (r *Repository) CreateAgent(ctx context.Context, agent *domain.Agent) error {
	const query = `INSERT INTO agents (id, agent_id, name, description, repository_url, branch, commit_sha, framework, status, endpoint, env_vars, config, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.pool.Exec(ctx, query,
		agent.ID, agent.AgentID, agent.Name, agent.Description, agent.RepositoryURL,
		agent.Branch, agent.CommitSHA, agent.Framework, agent.Status, agent.Endpoint,
		agent.EnvVars, agent.Config, agent.UserID, agent.CreatedAt, agent.UpdatedAt)
	return err
}

// GetAgentByID fetches an agent by public identifier.
func (r *Repository) GetAgentByID(ctx context.Context, agentID string) (*domain.Agent, error) {
	const query = agentSelect + ` WHERE agent_id = $1`
	return r.scanAgent(r.pool.QueryRow(ctx, query, agentID))
}

// GetAgentForUser fetches an agent scoped to its owner.
func (r *Repository) GetAgentForUser(ctx context.Context, agentID, userID string) (*domain.Agent, error) {
	const query = agentSelect + ` WHERE agent_id = $1 AND user_id = $2`
	return r.scanAgent(r.pool.QueryRow(ctx, query, agentID, userID))
}

// ListAgentsByUser returns a user's agents, optionally filtered by status.
func (r *Repository) ListAgentsByUser(ctx context.Context, userID, status string) ([]domain.Agent, error) {
	query := agentSelect + ` WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]domain.Agent, 0)
	for rows.Next() {
		agent, err := scanAgentRow(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// UpdateAgentStatus persists a status transition.
func (r *Repository) UpdateAgentStatus(ctx context.Context, agentID, status string) error {
	const query = `UPDATE agents SET status = $2, updated_at = NOW() WHERE agent_id = $1`
	tag, err := r.pool.Exec(ctx, query, agentID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkAgentDetected records the successful pipeline outcome along with the
// terminal detected status.
func (r *Repository) MarkAgentDetected(ctx context.Context, detection domain.AgentDetection) error {
	const query = `UPDATE agents SET status = $2, framework = $3, commit_sha = $4, deployed_at = $5, updated_at = NOW() WHERE agent_id = $1`
	tag, err := r.pool.Exec(ctx, query, detection.AgentID, domain.StatusDetected, detection.Framework, detection.CommitSHA, detection.DeployedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteAgent removes an agent record.
func (r *Repository) DeleteAgent(ctx context.Context, agentID string) error {
	const query = `DELETE FROM agents WHERE agent_id = $1`
	tag, err := r.pool.Exec(ctx, query, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) scanAgent(row pgx.Row) (*domain.Agent, error) {
	return scanAgentRow(row)
}

func scanAgentRow(row pgx.Row) (*domain.Agent, error) {
	var a domain.Agent
	if err := row.Scan(&a.ID, &a.AgentID, &a.Name, &a.Description, &a.RepositoryURL,
		&a.Branch, &a.CommitSHA, &a.Framework, &a.Status, &a.Endpoint,
		&a.EnvVars, &a.Config, &a.UserID, &a.CreatedAt, &a.UpdatedAt, &a.DeployedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
