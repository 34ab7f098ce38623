package responses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/interview-prep/internal/types"
)

type responseKey struct {
	job, question, round string
}

// MemoryStore keeps answers in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	responses map[responseKey]types.UserResponse
	now       func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{responses: make(map[responseKey]types.UserResponse), now: time.Now}
}

// UpsertResponse creates or replaces the answer for its key.
func (m *MemoryStore) UpsertResponse(_ context.Context, r types.UserResponse) (*types.UserResponse, error) {
	r.UpdatedAt = m.now().UTC()
	m.mu.Lock()
	m.responses[responseKey{r.JobID, r.QuestionID, r.RoundID}] = r
	m.mu.Unlock()
	return &r, nil
}

// ListResponses returns the answers for a job, most recently updated first.
func (m *MemoryStore) ListResponses(_ context.Context, jobID string) ([]types.UserResponse, error) {
	m.mu.RLock()
	out := []types.UserResponse{}
	for k, r := range m.responses {
		if k.job == jobID {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].QuestionID < out[j].QuestionID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
