package policy_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
	"github.com/manifoldpm/manifold/internal/policy"
	"github.com/manifoldpm/manifold/internal/store"
)

type stubAdapter struct{ meta model.ManagerMeta }

func (s *stubAdapter) Describe() model.ManagerMeta { return s.meta }
func (s *stubAdapter) Detect(adapter.Context) (model.DetectionRecord, error) {
	return model.DetectionRecord{}, nil
}
func (s *stubAdapter) ListInstalled(adapter.Context) ([]model.PackageRecord, error) { return nil, nil }
func (s *stubAdapter) ListOutdated(adapter.Context) ([]model.PackageRecord, error)  { return nil, nil }
func (s *stubAdapter) Search(adapter.Context, string) ([]model.SearchResult, error) { return nil, nil }
func (s *stubAdapter) Install(adapter.Context, string) error                        { return nil }
func (s *stubAdapter) Uninstall(adapter.Context, string) error                      { return nil }
func (s *stubAdapter) Upgrade(adapter.Context, string) error                        { return nil }
func (s *stubAdapter) Pin(adapter.Context, string) error                            { return nil }
func (s *stubAdapter) Unpin(adapter.Context, string) error                          { return nil }
func (s *stubAdapter) SelfUpdate(adapter.Context) error                             { return nil }

func newFixture(t *testing.T) (*store.Store, *adapter.Registry) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "manifold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg := adapter.NewRegistry(
		&stubAdapter{meta: model.ManagerMeta{ID: "mise", Authority: model.AuthorityAuthoritative}},
		&stubAdapter{meta: model.ManagerMeta{ID: "npm", Authority: model.AuthorityStandard}},
		&stubAdapter{meta: model.ManagerMeta{ID: "homebrew", Authority: model.AuthorityGuarded}},
	)
	return s, reg
}

func TestCheckMutation_BlocksGuardedUnlessAllowed(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.SetSafeMode(ctx, true))

	err := g.CheckMutation(ctx, model.Task{ManagerID: "homebrew", Kind: model.TaskUpgrade, Target: "swiftformat"}, false)
	require.Error(t, err)
	require.Equal(t, pkgerr.KindBlockedSafeMode, pkgerr.KindOf(err))

	require.NoError(t, g.CheckMutation(ctx, model.Task{ManagerID: "homebrew", Kind: model.TaskUpgrade, Target: "swiftformat"}, true))
}

func TestCheckMutation_SafeModeOffAllowsGuarded(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.SetSafeMode(ctx, false))
	require.NoError(t, g.CheckMutation(ctx, model.Task{ManagerID: "homebrew", Kind: model.TaskUpgrade, Target: "swiftformat"}, false))
}

func TestCheckMutation_NonGuardedManagerNeverBlockedBySafeMode(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.SetSafeMode(ctx, true))
	require.NoError(t, g.CheckMutation(ctx, model.Task{ManagerID: "npm", Kind: model.TaskUpgrade, Target: "eslint"}, false))
}

func TestCheckMutation_BlocksPinnedUpgrade(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.Pin(ctx, model.Pin{ManagerID: "npm", Name: "eslint"}))

	err := g.CheckMutation(ctx, model.Task{ManagerID: "npm", Kind: model.TaskUpgrade, Target: "eslint"}, false)
	require.Error(t, err)
	require.Equal(t, pkgerr.KindBlockedPinned, pkgerr.KindOf(err))
}

// TestPlanUpgradeAll_S2 mirrors spec scenario S2: with safe_mode=true,
// upgrade_all(include_pinned=false, allow_os_updates=false) must enqueue
// npm:eslint and silently exclude homebrew:swiftformat as guarded.
func TestPlanUpgradeAll_S2(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.ReplaceOutdated(ctx, "npm", []model.PackageRecord{
		{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"},
	}))
	require.NoError(t, s.ReplaceOutdated(ctx, "homebrew", []model.PackageRecord{
		{ManagerID: "homebrew", Name: "swiftformat", InstalledVersion: "0.53.0", LatestVersion: "0.54.2"},
	}))
	require.NoError(t, s.SetSafeMode(ctx, true))

	plan, excluded, err := g.PlanUpgradeAll(ctx, false, false)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	require.Equal(t, policy.PlannedUpgrade{ManagerID: "npm", Name: "eslint"}, plan[0])
	require.Equal(t, 1, excluded)
}

// TestPlanUpgradeAll_S3 mirrors spec scenario S3: pinning
// homebrew:swiftformat and allowing OS updates still excludes it, this
// time via the pin overlay rather than the safe-mode gate.
func TestPlanUpgradeAll_S3(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.ReplaceOutdated(ctx, "npm", []model.PackageRecord{
		{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"},
	}))
	require.NoError(t, s.ReplaceOutdated(ctx, "homebrew", []model.PackageRecord{
		{ManagerID: "homebrew", Name: "swiftformat", InstalledVersion: "0.53.0", LatestVersion: "0.54.2"},
	}))
	require.NoError(t, s.Pin(ctx, model.Pin{ManagerID: "homebrew", Name: "swiftformat"}))

	plan, excluded, err := g.PlanUpgradeAll(ctx, false, true)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	require.Equal(t, "npm", plan[0].ManagerID)
	require.Equal(t, 1, excluded)
}

func TestPlanUpgradeAll_IncludePinnedOverridesOverlay(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.ReplaceOutdated(ctx, "npm", []model.PackageRecord{
		{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"},
	}))
	require.NoError(t, s.Pin(ctx, model.Pin{ManagerID: "npm", Name: "eslint"}))

	plan, _, err := g.PlanUpgradeAll(ctx, true, true)
	require.NoError(t, err)
	require.Len(t, plan, 1)
}

func TestPlanUpgradeAll_OrderedByAuthorityTierThenID(t *testing.T) {
	s, reg := newFixture(t)
	g := policy.New(s, reg)
	ctx := context.Background()

	require.NoError(t, s.ReplaceOutdated(ctx, "mise", []model.PackageRecord{
		{ManagerID: "mise", Name: "node", InstalledVersion: "20.0.0", LatestVersion: "22.0.0"},
	}))
	require.NoError(t, s.ReplaceOutdated(ctx, "npm", []model.PackageRecord{
		{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"},
	}))
	require.NoError(t, s.SetSafeMode(ctx, false))

	plan, _, err := g.PlanUpgradeAll(ctx, false, false)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.Equal(t, "mise", plan[0].ManagerID)
	require.Equal(t, "npm", plan[1].ManagerID)
}
