package queue

import (
	"context"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Submit enqueues a task, deduplicating against any identical in-flight
// task for the same (manager, kind, target). The returned bool reports
// whether an existing task id was returned instead of a new one.
func (q *Queue) Submit(ctx context.Context, t model.Task) (id int64, deduped bool, err error) {
	t.CreatedAt = time.Now()
	key := t.DedupKey()

	// Hold mu across the dedup check and InsertTask so a second Submit
	// racing with this one on the same key blocks on the lock instead of
	// also observing "not in flight" and double-enqueueing the task.
	// broadcast/fifoFor each take mu themselves, so the lock must be
	// released before calling them.
	q.mu.Lock()
	if existing, ok := q.inFlight[key]; ok {
		q.mu.Unlock()
		return existing, true, nil
	}

	id, err = q.store.InsertTask(ctx, t)
	if err != nil {
		q.mu.Unlock()
		return 0, false, err
	}
	t.ID = id
	t.State = model.TaskQueued
	q.inFlight[key] = id
	q.mu.Unlock()

	q.broadcast(TaskEvent{TaskID: id, State: model.TaskQueued, At: t.CreatedAt})
	q.fifoFor(t.ManagerID).enqueue(t)
	return id, false, nil
}

// Cancel requests cancellation of task id. A Queued task transitions
// directly to Canceled; a Running task's cooperative cancel token is
// triggered and the adapter is expected to observe it on its next
// suspension point (subprocess spawn/exit check).
func (q *Queue) Cancel(ctx context.Context, id int64) error {
	q.mu.Lock()
	cancel, running := q.cancels[id]
	q.mu.Unlock()

	if running {
		cancel()
		return nil
	}

	task, err := q.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.State.Terminal() {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "task %d already terminal", id)
	}
	return q.transitionTerminal(ctx, id, model.TaskCanceled, "", nil)
}
