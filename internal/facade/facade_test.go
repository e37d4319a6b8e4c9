package facade_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/facade"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/orchestrator"
	"github.com/manifoldpm/manifold/internal/policy"
	"github.com/manifoldpm/manifold/internal/queue"
	"github.com/manifoldpm/manifold/internal/store"
)

// stubAdapter is a minimal fakeAdapter for façade-level tests; mirrors the
// shape of internal/queue's fakeAdapter without the install/uninstall
// bookkeeping those tests need.
type stubAdapter struct {
	meta     model.ManagerMeta
	outdated []model.PackageRecord
	delay    time.Duration
}

func (a *stubAdapter) Describe() model.ManagerMeta { return a.meta }
func (a *stubAdapter) Detect(ctx adapter.Context) (model.DetectionRecord, error) {
	return model.DetectionRecord{ManagerID: a.meta.ID, Installed: true, Version: "1.0.0"}, nil
}
func (a *stubAdapter) ListInstalled(ctx adapter.Context) ([]model.PackageRecord, error) {
	return nil, nil
}
func (a *stubAdapter) ListOutdated(ctx adapter.Context) ([]model.PackageRecord, error) {
	return a.outdated, nil
}
func (a *stubAdapter) Search(ctx adapter.Context, query string) ([]model.SearchResult, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []model.SearchResult{{ManagerID: a.meta.ID, Name: query, Query: query}}, nil
}
func (a *stubAdapter) Install(ctx adapter.Context, target string) error {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
func (a *stubAdapter) Uninstall(ctx adapter.Context, target string) error { return nil }
func (a *stubAdapter) Upgrade(ctx adapter.Context, target string) error {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	var out []model.PackageRecord
	for _, r := range a.outdated {
		if target == "" || r.Name == target {
			continue
		}
		out = append(out, r)
	}
	a.outdated = out
	return nil
}
func (a *stubAdapter) Pin(ctx adapter.Context, target string) error   { return nil }
func (a *stubAdapter) Unpin(ctx adapter.Context, target string) error { return nil }
func (a *stubAdapter) SelfUpdate(ctx adapter.Context) error           { return nil }

func newFixture(t *testing.T, adapters ...adapter.Adapter) (*facade.Facade, *httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "manifold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg := adapter.NewRegistry(adapters...)
	exec := executor.New()
	q := queue.New(s, reg, exec, queue.WithWorkerPoolSize(4))
	require.NoError(t, q.Start(context.Background()))
	t.Cleanup(q.Stop)

	orch := orchestrator.New(s, reg, exec)
	gate := policy.New(s, reg)
	f := facade.New(s, reg, exec, q, orch, gate, nil)

	srv := httptest.NewServer(f.Routes())
	t.Cleanup(srv.Close)
	return f, srv, s
}

func post(t *testing.T, srv *httptest.Server, path string, body any, out any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func get(t *testing.T, srv *httptest.Server, path string, out any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func waitTerminal(t *testing.T, s *store.Store, id int64) model.Task {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
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

// TestFacade_S2 mirrors spec.md S2: with safe_mode=true, upgrade_all
// excludes the guarded manager's package from the tasks it creates.
func TestFacade_S2(t *testing.T) {
	npm := &stubAdapter{meta: model.ManagerMeta{
		ID: "npm", Authority: model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(model.CapUpgrade, model.CapListOutdated),
	}, outdated: []model.PackageRecord{{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"}}}
	homebrew := &stubAdapter{meta: model.ManagerMeta{
		ID: "homebrew", Authority: model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(model.CapUpgrade, model.CapListOutdated),
	}, outdated: []model.PackageRecord{{ManagerID: "homebrew", Name: "swiftformat", InstalledVersion: "0.53.0", LatestVersion: "0.54.2"}}}

	f, srv, s := newFixture(t, npm, homebrew)
	ctx := context.Background()
	require.NoError(t, s.ReplaceOutdated(ctx, "npm", npm.outdated))
	require.NoError(t, s.ReplaceOutdated(ctx, "homebrew", homebrew.outdated))
	require.NoError(t, s.SetSafeMode(ctx, true))

	var ok bool
	post(t, srv, "/upgrade_all", map[string]any{"include_pinned": false, "allow_os_updates": false}, &ok)
	require.True(t, ok)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "npm", tasks[0].ManagerID)
	require.Equal(t, "eslint", tasks[0].Target)
	_ = f
}

// TestFacade_S4 mirrors spec.md S4: upgrade_package("npm","-rf") returns
// -1 with last-error-key error.invalid_package_identifier.
func TestFacade_S4(t *testing.T) {
	npm := &stubAdapter{meta: model.ManagerMeta{
		ID: "npm", Authority: model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(model.CapUpgrade, model.CapListOutdated),
	}}
	f, srv, _ := newFixture(t, npm)

	var id int64
	post(t, srv, "/upgrade_package", map[string]any{"manager_id": "npm", "name": "-rf"}, &id)
	require.EqualValues(t, -1, id)

	var resp struct {
		ErrorKey string `json:"error_key"`
	}
	get(t, srv, "/take_last_error_key", &resp)
	require.Equal(t, "error.invalid_package_identifier", resp.ErrorKey)
	_ = f
}

// TestFacade_S6 mirrors spec.md S6: two trigger_remote_search("eslint")
// calls back-to-back while the first is in flight return the same id.
func TestFacade_S6(t *testing.T) {
	npm := &stubAdapter{meta: model.ManagerMeta{
		ID: "npm", Authority: model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(model.CapSearch),
	}, delay: 200 * time.Millisecond}
	f, srv, s := newFixture(t, npm)

	var id1, id2 int64
	post(t, srv, "/trigger_remote_search", map[string]any{"query": "eslint"}, &id1)
	post(t, srv, "/trigger_remote_search", map[string]any{"query": "eslint"}, &id2)
	require.Equal(t, id1, id2)

	waitTerminal(t, s, id1)
	_ = f
}

// TestFacade_CancelQueuedTask mirrors the Queued-task half of spec.md S5:
// cancel_task on a task that never started reaches Canceled without ever
// running.
func TestFacade_CancelQueuedTask(t *testing.T) {
	npm := &stubAdapter{meta: model.ManagerMeta{
		ID: "npm", Authority: model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(model.CapUpgrade, model.CapListOutdated),
	}, delay: 500 * time.Millisecond}
	f, srv, s := newFixture(t, npm)

	var id1, id2 int64
	post(t, srv, "/upgrade_package", map[string]any{"manager_id": "npm", "name": "a"}, &id1)
	post(t, srv, "/upgrade_package", map[string]any{"manager_id": "npm", "name": "b"}, &id2)
	require.NotEqual(t, id1, id2)

	var ok bool
	post(t, srv, "/cancel_task", map[string]any{"id": id2}, &ok)
	require.True(t, ok)

	task := waitTerminal(t, s, id2)
	require.Equal(t, model.TaskCanceled, task.State)
	_ = f
}
