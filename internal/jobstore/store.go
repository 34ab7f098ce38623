// Package jobstore tracks in-flight pipeline jobs in memory and resolves finished ones
// from a durable artifact store.
package jobstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/interview-prep/internal/types"
	"go.uber.org/zap"
)

// DefaultTTL is how long completed artifacts stay retrievable.
const DefaultTTL = 30 * 24 * time.Hour

// ArtifactStore is the durable side of the store.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, a *types.StoredArtifact) error
	GetArtifact(ctx context.Context, id string) (*types.StoredArtifact, error)
	ListArtifacts(ctx context.Context, userID string, limit int) ([]types.ArtifactSummary, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// NotFoundError is returned when an id resolves neither in memory nor durably.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %s not found", e.ID)
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiry applied to saved artifacts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithLogger sets the store logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds in-flight jobs keyed by id. Only the task that created a job writes it.
type Store struct {
	mu      sync.RWMutex
	jobs    map[string]*types.PipelineJob
	durable ArtifactStore
	ttl     time.Duration
	now     func() time.Time
	log     *zap.SugaredLogger
}

// New creates a Store backed by durable.
func New(durable ArtifactStore, opts ...Option) *Store {
	s := &Store{
		jobs:    make(map[string]*types.PipelineJob),
		durable: durable,
		ttl:     DefaultTTL,
		now:     time.Now,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new job in JOB_RESEARCH.
func (s *Store) Create(id string, inputs types.JobInputs, userID string) *types.PipelineJob {
	now := s.now().UTC()
	job := &types.PipelineJob{
		ID:           id,
		UserID:       userID,
		State:        types.StageJobResearch,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		Inputs:       inputs,
		ReasoningLog: []types.ReasoningStep{},
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()
	return job.Clone()
}

// Update applies fn to the job under the write lock. Terminal jobs are left untouched.
func (s *Store) Update(id string, fn func(*types.PipelineJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	if job.State.IsTerminal() {
		return fmt.Errorf("job %s is already %s", id, job.State)
	}
	fn(job)
	job.UpdatedAt = s.now().UTC()
	return nil
}

// Get returns a snapshot of the job, looking in memory first and the durable store second.
// Durable hits are reported as COMPLETED.
func (s *Store) Get(ctx context.Context, id string) (*types.PipelineJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	var snapshot *types.PipelineJob
	if ok {
		snapshot = job.Clone()
	}
	s.mu.RUnlock()
	if ok {
		return snapshot, nil
	}

	if s.durable == nil {
		return nil, &NotFoundError{ID: id}
	}
	stored, err := s.durable.GetArtifact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", id, err)
	}
	if stored == nil {
		return nil, &NotFoundError{ID: id}
	}
	artifact := stored.Artifact
	return &types.PipelineJob{
		ID:           stored.ID,
		UserID:       stored.UserID,
		State:        types.StageCompleted,
		CreatedAt:    stored.CreatedAt,
		UpdatedAt:    stored.CreatedAt,
		ExpiresAt:    stored.ExpiresAt,
		Inputs:       types.JobInputs{JobURL: stored.JobURL},
		Result:       &artifact,
		ReasoningLog: artifact.ReasoningLog,
	}, nil
}

// Artifact resolves id to a completed artifact.
func (s *Store) Artifact(ctx context.Context, id string) (*types.Artifact, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State != types.StageCompleted || job.Result == nil {
		return nil, &NotFoundError{ID: id}
	}
	return job.Result, nil
}

// SaveCompleted writes the artifact of job id durably. The in-memory state is not changed.
func (s *Store) SaveCompleted(ctx context.Context, id string, artifact *types.Artifact) error {
	s.mu.RLock()
	job, ok := s.jobs[id]
	var rec *types.StoredArtifact
	if ok {
		rec = &types.StoredArtifact{
			ID:        job.ID,
			UserID:    job.UserID,
			JobURL:    job.Inputs.JobURL,
			Artifact:  *artifact.Clone(),
			CreatedAt: job.CreatedAt,
			ExpiresAt: s.now().UTC().Add(s.ttl),
		}
	}
	s.mu.RUnlock()

	if !ok {
		return &NotFoundError{ID: id}
	}
	if s.durable == nil {
		return nil
	}
	return s.durable.SaveArtifact(ctx, rec)
}

// History lists the newest unexpired artifacts, optionally for one user.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]types.ArtifactSummary, error) {
	if s.durable == nil {
		return []types.ArtifactSummary{}, nil
	}
	return s.durable.ListArtifacts(ctx, userID, limit)
}

// SweepExpired deletes expired durable artifacts. In-memory jobs are not touched.
func (s *Store) SweepExpired(ctx context.Context) (int64, error) {
	if s.durable == nil {
		return 0, nil
	}
	n, err := s.durable.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Infow("Swept expired artifacts", "count", n)
	}
	return n, nil
}

// EvictFinished drops terminal in-memory jobs last updated more than retention ago.
func (s *Store) EvictFinished(retention time.Duration) int {
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, job := range s.jobs {
		if job.State.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of jobs held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
