package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/types"
	"go.uber.org/zap"
)

// Task is the handle of one background job.
type Task struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Cancel asks the job to stop at the next stage boundary.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the job reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the fatal error of a finished job. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Runner starts one goroutine per submitted job.
type Runner struct {
	orch  *Orchestrator
	store *jobstore.Store
	log   *zap.SugaredLogger

	mu     sync.Mutex
	tasks  map[string]*Task
	wg     sync.WaitGroup
	closed bool
}

// NewRunner creates a Runner.
func NewRunner(orch *Orchestrator, store *jobstore.Store, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{orch: orch, store: store, log: log, tasks: make(map[string]*Task)}
}

// ErrShuttingDown is returned by Submit after Shutdown has begun.
var ErrShuttingDown = errors.New("runner is shutting down")

// Submit creates the job in the store and starts it in the background.
func (r *Runner) Submit(inputs types.JobInputs, userID string) (*Task, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrShuttingDown
	}
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{ID: id, cancel: cancel, done: make(chan struct{})}
	r.tasks[id] = task
	r.wg.Add(1)
	r.mu.Unlock()

	r.store.Create(id, inputs, userID)
	r.log.Infow("Job submitted", "job_id", id, "user_id", userID)

	go r.execute(ctx, task)
	return task, nil
}

func (r *Runner) execute(ctx context.Context, task *Task) {
	defer r.wg.Done()
	defer close(task.done)
	defer task.cancel()
	defer func() {
		r.mu.Lock()
		delete(r.tasks, task.ID)
		r.mu.Unlock()
	}()
	defer func() {
		if p := recover(); p != nil {
			task.err = fmt.Errorf("pipeline panicked: %v", p)
			r.log.Errorw("Pipeline panicked", "job_id", task.ID, "panic", p)
			_ = r.orch.fail(task.ID, task.err)
		}
	}()

	task.err = r.orch.Run(ctx, task.ID)
}

// Active returns the number of running jobs.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Shutdown stops accepting jobs and waits for running ones. If ctx ends first the
// remaining jobs are cancelled and ctx's error is returned.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.mu.Lock()
		for _, t := range r.tasks {
			t.cancel()
		}
		r.mu.Unlock()
		<-done
		return ctx.Err()
	}
}
