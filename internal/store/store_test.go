package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "manifold.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	openTestStore(t)
}

func TestDetection_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetDetection(ctx, "mise")
	require.NoError(t, err)
	require.False(t, ok)

	rec := model.DetectionRecord{ManagerID: "mise", Installed: true, Version: "2024.2.1", DetectedAt: time.Now()}
	require.NoError(t, s.SaveDetection(ctx, rec))

	got, ok, err := s.GetDetection(ctx, "mise")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2024.2.1", got.Version)
}

func TestOutdatedPackages_InvariantEnforced(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []model.PackageRecord{
		{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"},
		{ManagerID: "npm", Name: "same-version", InstalledVersion: "1.0.0", LatestVersion: "1.0.0"},
		{ManagerID: "npm", Name: "no-latest", InstalledVersion: "1.0.0", LatestVersion: ""},
	}
	require.NoError(t, s.ReplaceOutdated(ctx, "npm", recs))

	out, err := s.ListOutdated(ctx, "npm")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "eslint", out[0].Name)
}

func TestPinOverlay_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceOutdated(ctx, "homebrew", []model.PackageRecord{
		{ManagerID: "homebrew", Name: "swiftformat", InstalledVersion: "0.53.0", LatestVersion: "0.54.2"},
	}))

	require.NoError(t, s.Pin(ctx, model.Pin{ManagerID: "homebrew", Name: "swiftformat"}))
	require.NoError(t, s.Pin(ctx, model.Pin{ManagerID: "homebrew", Name: "swiftformat"})) // no-op repeat

	out, err := s.ListOutdated(ctx, "homebrew")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].Pinned)

	require.NoError(t, s.Unpin(ctx, "homebrew", "swiftformat"))
	out, err = s.ListOutdated(ctx, "homebrew")
	require.NoError(t, err)
	require.False(t, out[0].Pinned)
}

func TestTasks_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertTask(ctx, model.Task{ManagerID: "npm", Kind: model.TaskUpgrade, Target: "eslint", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	require.NoError(t, s.TransitionTask(ctx, id, model.TaskRunning, "", nil))
	task, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.TaskRunning, task.State)
	require.NotNil(t, task.StartedAt)

	require.NoError(t, s.TransitionTask(ctx, id, model.TaskFailed, "error.execution_timeout", map[string]string{"seconds": "120"}))
	task, err = s.GetTask(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.TaskFailed, task.State)
	require.NotNil(t, task.EndedAt)
	require.Equal(t, "error.execution_timeout", task.ErrorKey)
	require.Equal(t, "120", task.ErrorArgs["seconds"])
}

func TestListRunningTasks_CrashRecovery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertTask(ctx, model.Task{ManagerID: "apt", Kind: model.TaskRefresh, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskRunning, "", nil))

	running, err := s.ListRunningTasks(ctx)
	require.NoError(t, err)
	require.Len(t, running, 1)
	require.Equal(t, id, running[0].ID)
}

func TestSearchCache_RoundTripAndExpiry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetSearch(ctx, "apt", "ripgrep")
	require.NoError(t, err)
	require.False(t, ok)

	results := []model.SearchResult{{ManagerID: "apt", Name: "ripgrep", LatestVersion: "14.0.3", Query: "ripgrep"}}
	require.NoError(t, s.SaveSearch(ctx, "apt", "ripgrep", results, time.Hour))

	got, ok, err := s.GetSearch(ctx, "apt", "ripgrep")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, "ripgrep", got[0].Name)

	require.NoError(t, s.SaveSearch(ctx, "apt", "expired", results, -time.Second))
	_, ok, err = s.GetSearch(ctx, "apt", "expired")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSafeModeDefaultsTrue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	safe, err := s.GetSafeMode(ctx)
	require.NoError(t, err)
	require.True(t, safe)

	require.NoError(t, s.SetSafeMode(ctx, false))
	safe, err = s.GetSafeMode(ctx)
	require.NoError(t, err)
	require.False(t, safe)
}

func TestResetDatabase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDetection(ctx, model.DetectionRecord{ManagerID: "mise", Installed: true, DetectedAt: time.Now()}))
	require.NoError(t, s.ResetDatabase(ctx))

	_, ok, err := s.GetDetection(ctx, "mise")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKegPolicies_UpsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	policies, err := s.ListKegPolicies(ctx)
	require.NoError(t, err)
	require.Empty(t, policies)

	require.NoError(t, s.SetKegPolicy(ctx, "homebrew", "ripgrep", model.KegPolicyClean))
	require.NoError(t, s.SetKegPolicy(ctx, "homebrew", "ripgrep", model.KegPolicyClear))

	policies, err = s.ListKegPolicies(ctx)
	require.NoError(t, err)
	require.Len(t, policies, 1)
	require.Equal(t, model.KegPolicyClear, policies[0].Mode)
}
