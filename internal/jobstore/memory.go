package jobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/interview-prep/internal/types"
)

// MemoryArtifacts is an ArtifactStore kept in process memory. It backs the server when
// no database is configured and the single-shot CLI run.
type MemoryArtifacts struct {
	mu        sync.RWMutex
	artifacts map[string]types.StoredArtifact
	now       func() time.Time
}

// NewMemoryArtifacts creates an empty in-memory artifact store.
func NewMemoryArtifacts() *MemoryArtifacts {
	return &MemoryArtifacts{artifacts: make(map[string]types.StoredArtifact), now: time.Now}
}

// SaveArtifact stores a copy of a.
func (m *MemoryArtifacts) SaveArtifact(_ context.Context, a *types.StoredArtifact) error {
	rec := *a
	rec.Artifact = *a.Artifact.Clone()
	m.mu.Lock()
	m.artifacts[a.ID] = rec
	m.mu.Unlock()
	return nil
}

// GetArtifact returns an unexpired artifact or nil.
func (m *MemoryArtifacts) GetArtifact(_ context.Context, id string) (*types.StoredArtifact, error) {
	m.mu.RLock()
	rec, ok := m.artifacts[id]
	m.mu.RUnlock()
	if !ok || !rec.ExpiresAt.After(m.now()) {
		return nil, nil
	}
	rec.Artifact = *rec.Artifact.Clone()
	return &rec, nil
}

// ListArtifacts returns unexpired summaries newest first.
func (m *MemoryArtifacts) ListArtifacts(_ context.Context, userID string, limit int) ([]types.ArtifactSummary, error) {
	now := m.now()
	m.mu.RLock()
	out := []types.ArtifactSummary{}
	for _, rec := range m.artifacts {
		if !rec.ExpiresAt.After(now) || (userID != "" && rec.UserID != userID) {
			continue
		}
		out = append(out, rec.Summary())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteExpired removes expired artifacts.
func (m *MemoryArtifacts) DeleteExpired(_ context.Context) (int64, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, rec := range m.artifacts {
		if !rec.ExpiresAt.After(now) {
			delete(m.artifacts, id)
			n++
		}
	}
	return n, nil
}
