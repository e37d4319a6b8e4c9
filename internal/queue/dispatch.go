package queue

import (
	"context"
	"time"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// readTimeout/mutationTimeout are the soft caps spec.md assigns to the two
// classes of task: 30s for reads and search, 5min for mutations.
const (
	readTimeout     = 30 * time.Second
	mutationTimeout = 5 * time.Minute
)

// runOne executes a single task to a terminal state, persisting every
// transition. It never returns an error to its caller (the FIFO drain
// loop): all failure is recorded on the task row itself.
func (q *Queue) runOne(parent context.Context, t model.Task) {
	defer q.clearInFlight(t)

	fresh, err := q.store.GetTask(parent, t.ID)
	if err == nil && fresh.State.Terminal() {
		return // canceled while still Queued
	}

	ctx, cancel := context.WithCancel(parent)
	q.mu.Lock()
	q.cancels[t.ID] = cancel
	q.mu.Unlock()
	defer cancel()

	if err := q.store.TransitionTask(parent, t.ID, model.TaskRunning, "", nil); err != nil {
		q.log.Error("queue: failed to record task start", "id", t.ID, "err", err)
	}
	q.broadcast(TaskEvent{TaskID: t.ID, State: model.TaskRunning})

	capture := newOutputCapture(q.exec)
	runErr := q.execute(ctx, t, capture)

	state, errKey, errArgs := outcome(ctx, runErr)
	if err := q.transitionTerminal(parent, t.ID, state, errKey, errArgs); err != nil {
		q.log.Error("queue: failed to persist terminal task state", "id", t.ID, "err", err)
	}
	if raw := capture.Bytes(); len(raw) > 0 {
		if err := q.store.SaveTaskRawOutput(parent, t.ID, raw); err != nil {
			q.log.Warn("queue: failed to save task raw output", "id", t.ID, "err", err)
		}
	}
}

func (q *Queue) clearInFlight(t model.Task) {
	q.mu.Lock()
	delete(q.inFlight, t.DedupKey())
	q.mu.Unlock()
}

// outcome maps a task's run context and resulting error to its terminal
// state. A user-initiated Cancel cancels runOne's own derived context
// before the command exits; the executor then observes that context as
// done and reports a signal-kill error (KindExecutionSignal), which would
// otherwise misattribute the cancel as an execution failure. Checking
// ctx.Err() first recovers the actual cause.
func outcome(ctx context.Context, err error) (model.TaskState, string, map[string]string) {
	if err == nil {
		return model.TaskCompleted, "", nil
	}
	if ctx.Err() == context.Canceled || pkgerr.KindOf(err) == pkgerr.KindCanceled {
		return model.TaskCanceled, "", nil
	}
	pe, ok := err.(*pkgerr.Error)
	if !ok {
		return model.TaskFailed, "error.unknown", map[string]string{"detail": err.Error()}
	}
	return model.TaskFailed, pe.Key, pe.Args
}

// execute recovers from adapter panics (converted to a Failed terminal
// state per spec.md's "a panic/abort inside adapter execution is
// converted to a Failed terminal state") and dispatches by task kind. exec
// is the (possibly output-capturing) Executor handed to the adapter for
// this one task.
func (q *Queue) execute(ctx context.Context, t model.Task, exec executor.Executor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkgerr.Recover(r)
		}
	}()

	if t.Kind == model.TaskRemoteSearch && t.ManagerID == model.AllManagersID {
		return q.executeSearchAll(ctx, t, exec)
	}

	a, getErr := q.reg.Get(t.ManagerID)
	if getErr != nil {
		return getErr
	}

	timeout := readTimeout
	if isMutation(t.Kind) {
		timeout = mutationTimeout
	}
	actx := adapter.Context{Context: ctx, Executor: exec, Timeout: timeout}

	switch t.Kind {
	case model.TaskRefresh:
		return q.executeRefresh(actx, a, t)
	case model.TaskInstall:
		return q.executeInstall(actx, a, t)
	case model.TaskUninstall:
		return q.executeUninstall(actx, a, t)
	case model.TaskUpgrade:
		return q.executeUpgrade(actx, a, t)
	case model.TaskPin:
		return a.Pin(actx, t.Target)
	case model.TaskUnpin:
		return a.Unpin(actx, t.Target)
	case model.TaskSelfUpdate:
		return a.SelfUpdate(actx)
	case model.TaskRemoteSearch:
		return q.executeSearch(actx, a, t)
	default:
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "unknown task kind %q", t.Kind)
	}
}

func isMutation(k model.TaskKind) bool {
	switch k {
	case model.TaskInstall, model.TaskUninstall, model.TaskUpgrade, model.TaskPin, model.TaskUnpin, model.TaskSelfUpdate:
		return true
	default:
		return false
	}
}
