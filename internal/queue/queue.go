// Package queue is the engine's task scheduler: a FIFO per manager plus a
// global bounded worker pool, so tasks for distinct managers run
// concurrently while same-manager tasks never overlap. Grounded on
// controlplane/telemetry/internal/data/device/provider.go's
// pond.ResultPool-backed fan-out, adapted from a one-shot batch Group into
// a long-lived scheduler: the pool still bounds total concurrency, but
// each manager drains its own queue one task at a time instead of the
// group-then-Wait() shape a batch job uses.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
	"github.com/manifoldpm/manifold/internal/store"
)

// DefaultWorkerPoolSize bounds global cross-manager concurrency absent an
// explicit config override.
const DefaultWorkerPoolSize = 4

// Queue schedules and runs tasks against the adapter Registry, persisting
// every state transition through Store.
type Queue struct {
	store *store.Store
	reg   *adapter.Registry
	exec  executor.Executor
	log   *slog.Logger

	pool pond.Pool

	mu        sync.Mutex
	fifos     map[string]*managerFIFO
	inFlight  map[string]int64 // DedupKey -> task id, cleared on terminal state
	cancels   map[int64]context.CancelFunc
	listeners []chan TaskEvent
}

// Option configures a Queue at construction.
type Option func(*config)

type config struct {
	workerPoolSize int
	logger         *slog.Logger
}

// WithWorkerPoolSize overrides DefaultWorkerPoolSize.
func WithWorkerPoolSize(n int) Option {
	return func(c *config) { c.workerPoolSize = n }
}

// WithLogger sets the logger used for task lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New builds a Queue. The returned Queue has no running workers until
// Start is called.
func New(s *store.Store, reg *adapter.Registry, exec executor.Executor, opts ...Option) *Queue {
	cfg := config{workerPoolSize: DefaultWorkerPoolSize, logger: slog.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	return &Queue{
		store:    s,
		reg:      reg,
		exec:     exec,
		log:      cfg.logger,
		pool:     pond.NewPool(cfg.workerPoolSize),
		fifos:    make(map[string]*managerFIFO),
		inFlight: make(map[string]int64),
		cancels:  make(map[int64]context.CancelFunc),
	}
}

// Start runs the crash-recovery scan (rewriting stale Running rows to
// Failed(Interrupted)) and makes the Queue ready to accept Submit calls.
func (q *Queue) Start(ctx context.Context) error {
	stale, err := q.store.ListRunningTasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range stale {
		q.log.Warn("queue: recovering interrupted task", "id", t.ID, "manager_id", t.ManagerID, "kind", t.Kind)
		if err := q.transitionTerminal(ctx, t.ID, model.TaskFailed, "error.interrupted", nil); err != nil {
			return err
		}
	}
	return nil
}

// Stop waits for the worker pool to finish the work already submitted to
// it, including each manager's drain of its remaining queued tasks, and
// releases the pool. Start's recovery scan only rewrites Running rows, so
// a task left Queued in the store is not touched by it.
func (q *Queue) Stop() {
	q.pool.StopAndWait()
}

// fifoFor returns (creating if absent) the per-manager FIFO.
func (q *Queue) fifoFor(managerID string) *managerFIFO {
	q.mu.Lock()
	defer q.mu.Unlock()
	f, ok := q.fifos[managerID]
	if !ok {
		f = newManagerFIFO(managerID, q)
		q.fifos[managerID] = f
	}
	return f
}

// transitionTerminal persists a terminal transition with bounded
// exponential backoff retry, since this write must not be lost to a
// transient SQLite busy error the way an ordinary adapter failure can be
// left for the user to retry.
func (q *Queue) transitionTerminal(ctx context.Context, id int64, state model.TaskState, errKey string, errArgs map[string]string) error {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMultiplier(2.0),
		backoff.WithMaxInterval(1*time.Second),
	)
	bo := backoff.WithMaxRetries(backoff.WithContext(b, ctx), 4) // 5 attempts in all

	err := backoff.Retry(func() error {
		err := q.store.TransitionTask(ctx, id, state, errKey, errArgs)
		if err != nil && pkgerr.KindOf(err) != pkgerr.KindPersistenceIO {
			return backoff.Permanent(err)
		}
		return err
	}, bo)

	q.mu.Lock()
	delete(q.cancels, id)
	q.mu.Unlock()
	q.broadcast(TaskEvent{TaskID: id, State: state, At: time.Now()})
	return err
}
