package orchestrator_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/orchestrator"
	"github.com/manifoldpm/manifold/internal/store"
)

var errDetectBroken = errors.New("manager binary not found")

type fakeAdapter struct {
	meta      model.ManagerMeta
	installed []model.PackageRecord
	outdated  []model.PackageRecord
	detectErr error
	delay     time.Duration
	startedAt *time.Time
}

func (f *fakeAdapter) Describe() model.ManagerMeta { return f.meta }

func (f *fakeAdapter) Detect(ctx adapter.Context) (model.DetectionRecord, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	now := time.Now()
	f.startedAt = &now
	if f.detectErr != nil {
		return model.DetectionRecord{}, f.detectErr
	}
	return model.DetectionRecord{ManagerID: f.meta.ID, Installed: true, Version: "1.0.0"}, nil
}

func (f *fakeAdapter) ListInstalled(ctx adapter.Context) ([]model.PackageRecord, error) {
	return f.installed, nil
}
func (f *fakeAdapter) ListOutdated(ctx adapter.Context) ([]model.PackageRecord, error) {
	return f.outdated, nil
}
func (f *fakeAdapter) Search(ctx adapter.Context, q string) ([]model.SearchResult, error) {
	return nil, nil
}
func (f *fakeAdapter) Install(ctx adapter.Context, target string) error   { return nil }
func (f *fakeAdapter) Uninstall(ctx adapter.Context, target string) error { return nil }
func (f *fakeAdapter) Upgrade(ctx adapter.Context, target string) error   { return nil }
func (f *fakeAdapter) Pin(ctx adapter.Context, target string) error       { return nil }
func (f *fakeAdapter) Unpin(ctx adapter.Context, target string) error     { return nil }
func (f *fakeAdapter) SelfUpdate(ctx adapter.Context) error               { return nil }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "manifold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRefresh_TierOrdering(t *testing.T) {
	mise := &fakeAdapter{
		meta:  model.ManagerMeta{ID: "mise", Authority: model.AuthorityAuthoritative, Capabilities: model.NewCapabilitySet(model.CapDetect, model.CapListInstalled)},
		delay: 50 * time.Millisecond,
	}
	npm := &fakeAdapter{
		meta:     model.ManagerMeta{ID: "npm", Authority: model.AuthorityStandard, Capabilities: model.NewCapabilitySet(model.CapDetect, model.CapListOutdated)},
		outdated: []model.PackageRecord{{ManagerID: "npm", Name: "eslint", InstalledVersion: "8.56.0", LatestVersion: "9.1.0"}},
	}
	s := newTestStore(t)
	reg := adapter.NewRegistry(mise, npm)
	o := orchestrator.New(s, reg, executor.New())

	outcomes, err := o.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.NotNil(t, mise.startedAt)
	require.NotNil(t, npm.startedAt)
	require.True(t, npm.startedAt.After(*mise.startedAt) || npm.startedAt.Equal(*mise.startedAt))

	out, err := s.ListOutdated(context.Background(), "npm")
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRefresh_PartialFailureTolerant(t *testing.T) {
	broken := &fakeAdapter{
		meta:      model.ManagerMeta{ID: "homebrew", Authority: model.AuthorityGuarded, Capabilities: model.NewCapabilitySet(model.CapDetect)},
		detectErr: errDetectBroken,
	}
	ok := &fakeAdapter{
		meta: model.ManagerMeta{ID: "apt", Authority: model.AuthorityGuarded, Capabilities: model.NewCapabilitySet(model.CapDetect, model.CapListInstalled)},
	}
	s := newTestStore(t)
	reg := adapter.NewRegistry(broken, ok)
	o := orchestrator.New(s, reg, executor.New())

	outcomes, err := o.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	var sawFailure, sawSuccess bool
	for _, oc := range outcomes {
		if oc.ManagerID == "homebrew" {
			require.Error(t, oc.Err)
			sawFailure = true
		}
		if oc.ManagerID == "apt" {
			require.NoError(t, oc.Err)
			sawSuccess = true
		}
	}
	require.True(t, sawFailure)
	require.True(t, sawSuccess)
}

func TestRefresh_SkipsDisabledManager(t *testing.T) {
	npm := &fakeAdapter{meta: model.ManagerMeta{ID: "npm", Authority: model.AuthorityStandard, Capabilities: model.NewCapabilitySet(model.CapDetect)}}
	s := newTestStore(t)
	require.NoError(t, s.SetManagerEnabled(context.Background(), "npm", false))

	reg := adapter.NewRegistry(npm)
	o := orchestrator.New(s, reg, executor.New())

	_, err := o.Refresh(context.Background())
	require.NoError(t, err)
	require.Nil(t, npm.startedAt)
}
