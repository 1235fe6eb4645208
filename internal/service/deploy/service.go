// Package deploy runs the agent deployment pipeline: checkout, framework
// detection, commit resolution, and the status state machine external
// callers poll.
package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejakusireddy/getonstack/internal/detect"
	"github.com/tejakusireddy/getonstack/internal/domain"
	"github.com/tejakusireddy/getonstack/internal/git"
	"github.com/tejakusireddy/getonstack/internal/repository"
	"github.com/tejakusireddy/getonstack/pkg/config"
)

// CloneFunc performs the external shallow-clone invocation.
type CloneFunc func(ctx context.Context, repoURL, branch, dest string) error

// ResolveFunc reads the commit id of a checked-out workspace, best-effort.
type ResolveFunc func(dir string) string

// Classifier produces a framework label for a workspace.
type Classifier interface {
	Detect(root string) string
}

// WorkspaceManager owns per-run checkout directories.
type WorkspaceManager interface {
	Prepare(agentID string) (string, error)
	Cleanup(path string) error
}

// EventPublisher receives status events for streaming clients.
type EventPublisher interface {
	Broadcast(agentID string, payload []byte)
}

// Service executes deployment runs and drives the agent status state
// machine. Each run is an independent unit of background work; steps within
// a run are strictly sequential.
type Service struct {
	agents    repository.AgentRepository
	workspace WorkspaceManager
	clone     CloneFunc
	resolve   ResolveFunc
	detector  Classifier
	hub       EventPublisher
	logger    *slog.Logger
	cfg       config.APIConfig
}

// New constructs a deployment pipeline service.
func New(agents repository.AgentRepository, ws WorkspaceManager, hub EventPublisher, logger *slog.Logger, cfg config.APIConfig) Service {
	registerMetrics()
	return Service{
		agents:    agents,
		workspace: ws,
		clone:     git.Clone,
		resolve:   git.ResolveHead,
		detector:  detect.New(logger, cfg.DetectMaxFiles, cfg.DetectMaxLines),
		hub:       hub,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes one deployment run for the identified agent. The record must
// already exist in pending state; an absent record is a silent no-op. The
// workspace, if one was created, is removed on every exit path.
func (s Service) Run(ctx context.Context, agentID string) {
	started := time.Now()
	agent, err := s.agents.GetAgentByID(ctx, agentID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("load agent failed", "agent_id", agentID, "error", err)
		}
		return
	}

	var workdir string
	defer func() {
		if workdir == "" {
			return
		}
		if err := s.workspace.Cleanup(workdir); err != nil {
			// Logged only: a cleanup failure never changes the already
			// persisted terminal status.
			s.logger.Error("workspace cleanup failed", "agent_id", agentID, "path", workdir, "error", err)
		}
	}()

	// URL shape is validated before any process is spawned or directory
	// created; a bad reference fails the run without entering cloning.
	if !git.ValidateRepoURL(agent.RepositoryURL) {
		s.fail(ctx, agentID, "validate", started, git.ErrInvalidRepoURL)
		return
	}

	branch := agent.Branch
	if branch == "" {
		branch = s.cfg.DefaultBranch
	}

	if err := s.transition(ctx, agentID, domain.StatusCloning); err != nil {
		s.fail(ctx, agentID, "persist_cloning", started, err)
		return
	}

	workdir, err = s.workspace.Prepare(agentID)
	if err != nil {
		s.fail(ctx, agentID, "workspace", started, err)
		return
	}

	cloneCtx, cancel := context.WithTimeout(ctx, s.cfg.CloneTimeout)
	err = s.clone(cloneCtx, agent.RepositoryURL, branch, workdir)
	cancel()
	if err != nil {
		s.fail(ctx, agentID, "clone", started, err)
		return
	}

	if err := s.transition(ctx, agentID, domain.StatusDetecting); err != nil {
		s.fail(ctx, agentID, "persist_detecting", started, err)
		return
	}

	// Resolver failure yields an empty commit id and classifier failure
	// degrades to unknown; neither blocks the detected transition.
	commit := s.resolve(workdir)
	framework := s.detector.Detect(workdir)

	detection := domain.AgentDetection{
		AgentID:    agentID,
		Framework:  framework,
		CommitSHA:  commit,
		DeployedAt: time.Now().UTC(),
	}
	if err := s.agents.MarkAgentDetected(ctx, detection); err != nil {
		s.fail(ctx, agentID, "persist_detected", started, err)
		return
	}
	s.publish(agentID, domain.StatusDetected, framework, commit, "")
	runsTotal.WithLabelValues(domain.StatusDetected).Inc()
	runDuration.Observe(time.Since(started).Seconds())
	s.logger.Info("deployment detected", "agent_id", agentID, "framework", framework, "commit_sha", commit)
}

// transition persists a status change and notifies stream subscribers. The
// next pipeline step must not begin before this returns.
func (s Service) transition(ctx context.Context, agentID, status string) error {
	if err := s.agents.UpdateAgentStatus(ctx, agentID, status); err != nil {
		return err
	}
	s.publish(agentID, status, "", "", "")
	return nil
}

func (s Service) fail(ctx context.Context, agentID, stage string, started time.Time, cause error) {
	s.logger.Error("deployment stage failed", "agent_id", agentID, "stage", stage, "error", cause)
	if err := s.agents.UpdateAgentStatus(ctx, agentID, domain.StatusFailed); err != nil {
		s.logger.Error("persist failed status", "agent_id", agentID, "error", err)
	}
	s.publish(agentID, domain.StatusFailed, "", "", cause.Error())
	runsTotal.WithLabelValues(domain.StatusFailed).Inc()
	runDuration.Observe(time.Since(started).Seconds())
}

// statusEvent is the payload streamed to websocket subscribers. Only the
// state machine outcome and best-effort detection results are exposed, never
// internal error detail beyond the failure message.
type statusEvent struct {
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	Framework string    `json:"framework,omitempty"`
	CommitSHA string    `json:"commit_sha,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s Service) publish(agentID, status, framework, commit, errMsg string) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(statusEvent{
		AgentID:   agentID,
		Status:    status,
		Framework: framework,
		CommitSHA: commit,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("marshal status event failed", "agent_id", agentID, "error", err)
		return
	}
	s.hub.Broadcast(agentID, payload)
}

var (
	metricsOnce sync.Once
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
)

func registerMetrics() {
	metricsOnce.Do(func() {
		runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stack",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Deployment runs by terminal status",
		}, []string{"status"})
		runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stack",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of deployment runs",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		})
		if err := prometheus.Register(runsTotal); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
			runsTotal = are.ExistingCollector.(*prometheus.CounterVec)
		}
		if err := prometheus.Register(runDuration); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
			runDuration = are.ExistingCollector.(prometheus.Histogram)
		}
	})
}
