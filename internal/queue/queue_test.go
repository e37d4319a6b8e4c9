package queue_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/queue"
	"github.com/manifoldpm/manifold/internal/store"
)

// fakeAdapter is a hand-rolled mock, matching the mock style used in
// internal/adapter's own tests rather than a mocking framework.
type fakeAdapter struct {
	meta model.ManagerMeta

	installCalls int32
	installErr   error
	installed    []model.PackageRecord

	outdated []model.PackageRecord

	installDelay time.Duration

	// echoOnInstall, when set, makes Install run a real "echo" command
	// through ctx.Executor instead of just mutating in-memory state, so
	// tests can exercise the queue's raw-stdout capture path.
	echoOnInstall string

	// upgradeNoop, when set, makes Upgrade leave outdated untouched, so the
	// queue's post-upgrade ListOutdated still reports the target.
	upgradeNoop bool
}

func (f *fakeAdapter) Describe() model.ManagerMeta { return f.meta }

func (f *fakeAdapter) Detect(ctx adapter.Context) (model.DetectionRecord, error) {
	return model.DetectionRecord{ManagerID: f.meta.ID, Installed: true, Version: "1.0.0"}, nil
}

func (f *fakeAdapter) ListInstalled(ctx adapter.Context) ([]model.PackageRecord, error) {
	return f.installed, nil
}

func (f *fakeAdapter) ListOutdated(ctx adapter.Context) ([]model.PackageRecord, error) {
	return f.outdated, nil
}

func (f *fakeAdapter) Search(ctx adapter.Context, query string) ([]model.SearchResult, error) {
	return []model.SearchResult{{ManagerID: f.meta.ID, Name: query, Query: query}}, nil
}

func (f *fakeAdapter) Install(ctx adapter.Context, target string) error {
	atomic.AddInt32(&f.installCalls, 1)
	if f.installDelay > 0 {
		select {
		case <-time.After(f.installDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.echoOnInstall != "" {
		if _, err := ctx.Executor.Run(ctx, executor.CommandSpec{Program: "echo", Args: []string{f.echoOnInstall}}); err != nil {
			return err
		}
	}
	if f.installErr != nil {
		return f.installErr
	}
	f.installed = append(f.installed, model.PackageRecord{ManagerID: f.meta.ID, Name: target, InstalledVersion: "1.0.0"})
	return nil
}

func (f *fakeAdapter) Uninstall(ctx adapter.Context, target string) error {
	var out []model.PackageRecord
	for _, r := range f.installed {
		if r.Name != target {
			out = append(out, r)
		}
	}
	f.installed = out
	return nil
}

func (f *fakeAdapter) Upgrade(ctx adapter.Context, target string) error {
	if f.upgradeNoop {
		return nil
	}
	var out []model.PackageRecord
	for _, r := range f.outdated {
		if target == "" || r.Name == target {
			continue
		}
		out = append(out, r)
	}
	f.outdated = out
	return nil
}

func (f *fakeAdapter) Pin(ctx adapter.Context, target string) error   { return nil }
func (f *fakeAdapter) Unpin(ctx adapter.Context, target string) error { return nil }
func (f *fakeAdapter) SelfUpdate(ctx adapter.Context) error           { return nil }

func newTestQueue(t *testing.T, adapters ...adapter.Adapter) (*queue.Queue, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "manifold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg := adapter.NewRegistry(adapters...)
	q := queue.New(s, reg, executor.New(), queue.WithWorkerPoolSize(2))
	require.NoError(t, q.Start(context.Background()))
	t.Cleanup(q.Stop)
	return q, s
}

func waitTerminal(t *testing.T, s *store.Store, id int64) model.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := s.GetTask(context.Background(), id)
		require.NoError(t, err)
		if task.State.Terminal() {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %d never reached a terminal state", id)
	return model.Task{}
}

func TestQueue_InstallRoundTrip(t *testing.T) {
	fa := &fakeAdapter{meta: model.ManagerMeta{
		ID: "npm", Authority: model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(model.CapDetect, model.CapListInstalled, model.CapInstall),
	}}
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id, deduped, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "eslint"})
	require.NoError(t, err)
	require.False(t, deduped)

	task := waitTerminal(t, s, id)
	require.Equal(t, model.TaskCompleted, task.State)
	require.EqualValues(t, 1, fa.installCalls)
}

func TestQueue_Dedup(t *testing.T) {
	fa := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapInstall)}, installDelay: 200 * time.Millisecond}
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id1, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "eslint"})
	require.NoError(t, err)
	id2, deduped, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "eslint"})
	require.NoError(t, err)
	require.True(t, deduped)
	require.Equal(t, id1, id2)

	waitTerminal(t, s, id1)
	require.EqualValues(t, 1, fa.installCalls)
}

func TestQueue_ManagerSerialization(t *testing.T) {
	fa := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapInstall)}, installDelay: 30 * time.Millisecond}
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id1, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "a"})
	require.NoError(t, err)
	id2, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "b"})
	require.NoError(t, err)

	t1 := waitTerminal(t, s, id1)
	t2 := waitTerminal(t, s, id2)
	require.Equal(t, model.TaskCompleted, t1.State)
	require.Equal(t, model.TaskCompleted, t2.State)
	// Per-manager FIFO: the two (started_at, ended_at) intervals must not overlap.
	require.False(t, t1.StartedAt.Before(*t2.StartedAt) && t1.EndedAt.After(*t2.StartedAt))
	require.False(t, t2.StartedAt.Before(*t1.StartedAt) && t2.EndedAt.After(*t1.StartedAt))
}

func TestQueue_CrossManagerParallelism(t *testing.T) {
	npm := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapInstall)}, installDelay: 100 * time.Millisecond}
	pip := &fakeAdapter{meta: model.ManagerMeta{ID: "pip", Capabilities: model.NewCapabilitySet(model.CapInstall)}, installDelay: 100 * time.Millisecond}
	q, s := newTestQueue(t, npm, pip)
	ctx := context.Background()

	start := time.Now()
	id1, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "a"})
	require.NoError(t, err)
	id2, _, err := q.Submit(ctx, model.Task{ManagerID: "pip", Kind: model.TaskInstall, Target: "b"})
	require.NoError(t, err)

	waitTerminal(t, s, id1)
	waitTerminal(t, s, id2)
	require.Less(t, time.Since(start), 190*time.Millisecond) // ran concurrently, not 100ms+100ms serialized
}

func TestQueue_UpgradePostVerifyFailure(t *testing.T) {
	fa := &fakeAdapter{
		meta:        model.ManagerMeta{ID: "homebrew", Capabilities: model.NewCapabilitySet(model.CapUpgrade, model.CapListOutdated)},
		outdated:    []model.PackageRecord{{ManagerID: "homebrew", Name: "swiftformat", InstalledVersion: "0.53.0", LatestVersion: "0.54.2"}},
		upgradeNoop: true,
	}
	// Upgrade is a no-op, so "swiftformat" is still in outdated when the
	// queue re-lists after the upgrade, and post-verification fails.
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id, _, err := q.Submit(ctx, model.Task{ManagerID: "homebrew", Kind: model.TaskUpgrade, Target: "swiftformat"})
	require.NoError(t, err)

	task := waitTerminal(t, s, id)
	require.Equal(t, model.TaskFailed, task.State)
}

func TestQueue_CancelRunningTask(t *testing.T) {
	fa := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapInstall)}, installDelay: time.Second}
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "eslint"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		task, err := s.GetTask(ctx, id)
		return err == nil && task.State == model.TaskRunning
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Cancel(ctx, id))

	task := waitTerminal(t, s, id)
	require.Equal(t, model.TaskCanceled, task.State)
}

// TestQueue_RunOneSavesRawOutput confirms a task that actually spawns a
// command has its stdout persisted via store.SaveTaskRawOutput once it
// reaches a terminal state.
func TestQueue_RunOneSavesRawOutput(t *testing.T) {
	fa := &fakeAdapter{
		meta:          model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapInstall)},
		echoOnInstall: "installing eslint",
	}
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "eslint"})
	require.NoError(t, err)

	task := waitTerminal(t, s, id)
	require.Equal(t, model.TaskCompleted, task.State)

	raw, ok, err := s.GetTaskRawOutput(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "installing eslint\n", string(raw))
}

// TestQueue_RunOneSkipsRawOutputWhenNothingRan confirms a task whose
// adapter never calls Executor.Run (no subprocess spawned) leaves the
// task_raw_output table untouched.
func TestQueue_RunOneSkipsRawOutputWhenNothingRan(t *testing.T) {
	fa := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapInstall)}}
	q, s := newTestQueue(t, fa)
	ctx := context.Background()

	id, _, err := q.Submit(ctx, model.Task{ManagerID: "npm", Kind: model.TaskInstall, Target: "eslint"})
	require.NoError(t, err)

	task := waitTerminal(t, s, id)
	require.Equal(t, model.TaskCompleted, task.State)

	_, ok, err := s.GetTaskRawOutput(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestQueue_RemoteSearchFanOutAndDedup mirrors spec scenario S6:
// trigger_remote_search(query) carries no manager_id, so it fans out
// across every Search-capable manager as one task, and a second
// submission while the first is in flight returns the same task id.
func TestQueue_RemoteSearchFanOutAndDedup(t *testing.T) {
	npm := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Capabilities: model.NewCapabilitySet(model.CapSearch)}}
	pip := &fakeAdapter{meta: model.ManagerMeta{ID: "pip", Capabilities: model.NewCapabilitySet(model.CapSearch)}}
	q, s := newTestQueue(t, npm, pip)
	ctx := context.Background()

	id1, deduped1, err := q.Submit(ctx, model.Task{ManagerID: model.AllManagersID, Kind: model.TaskRemoteSearch, Target: "eslint"})
	require.NoError(t, err)
	require.False(t, deduped1)
	id2, deduped2, err := q.Submit(ctx, model.Task{ManagerID: model.AllManagersID, Kind: model.TaskRemoteSearch, Target: "eslint"})
	require.NoError(t, err)
	require.True(t, deduped2)
	require.Equal(t, id1, id2)

	task := waitTerminal(t, s, id1)
	require.Equal(t, model.TaskCompleted, task.State)

	_, ok, err := s.GetSearch(ctx, "npm", "eslint")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = s.GetSearch(ctx, "pip", "eslint")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestQueue_CrashRecovery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "manifold.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	id, err := s.InsertTask(ctx, model.Task{ManagerID: "apt", Kind: model.TaskRefresh, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskRunning, "", nil))
	s.Close()

	s2, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	reg := adapter.NewRegistry()
	q := queue.New(s2, reg, executor.New())
	require.NoError(t, q.Start(ctx))

	task, err := s2.GetTask(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.TaskFailed, task.State)
	require.Equal(t, "error.interrupted", task.ErrorKey)
}
