package queue

import (
	"context"
	"time"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// searchCacheTTL is how long a Search capability's results stay fresh
// before a repeat query re-hits the manager's remote catalog.
const searchCacheTTL = 15 * time.Minute

// executeInstall installs t.Target and post-verifies it now appears in
// ListInstalled, per spec.md 4.3 ("must perform post-action verification
// and fail the task if verification contradicts apparent success"). An
// empty Target means install_manager's target is the manager tool itself,
// not a package ListInstalled would ever report, so post-verify is
// skipped; Detect on the next refresh is what confirms the tool appeared.
func (q *Queue) executeInstall(ctx adapter.Context, a adapter.Adapter, t model.Task) error {
	if err := a.Install(ctx, t.Target); err != nil {
		return err
	}
	if t.Target == "" {
		return nil
	}
	installed, err := a.ListInstalled(ctx)
	if err != nil {
		return err // couldn't verify; treat as failure rather than claim success blind
	}
	if err := q.store.ReplaceInstalled(ctx, t.ManagerID, installed); err != nil {
		return err
	}
	if !containsName(installed, t.Target) {
		return pkgerr.Newf(pkgerr.KindPostVerifyFailed, "%s: %q not present after install", t.ManagerID, t.Target)
	}
	return nil
}

// executeUninstall removes t.Target and post-verifies its absence. An
// empty Target means uninstall_manager's target is the manager tool
// itself; see executeInstall.
func (q *Queue) executeUninstall(ctx adapter.Context, a adapter.Adapter, t model.Task) error {
	if err := a.Uninstall(ctx, t.Target); err != nil {
		return err
	}
	if t.Target == "" {
		return nil
	}
	installed, err := a.ListInstalled(ctx)
	if err != nil {
		return err
	}
	if err := q.store.ReplaceInstalled(ctx, t.ManagerID, installed); err != nil {
		return err
	}
	if containsName(installed, t.Target) {
		return pkgerr.Newf(pkgerr.KindPostVerifyFailed, "%s: %q still present after uninstall", t.ManagerID, t.Target)
	}
	return nil
}

// executeUpgrade upgrades t.Target (or every outdated package when Target
// is "") and post-verifies the target package no longer reports
// HasUpdate(), catching the "upgrade leaves package still in outdated
// list" failure mode spec.md calls out by name.
func (q *Queue) executeUpgrade(ctx adapter.Context, a adapter.Adapter, t model.Task) error {
	if err := a.Upgrade(ctx, t.Target); err != nil {
		return err
	}
	outdated, err := a.ListOutdated(ctx)
	if err != nil {
		return err
	}
	if err := q.store.ReplaceOutdated(ctx, t.ManagerID, outdated); err != nil {
		return err
	}
	if t.Target != "" && containsName(outdated, t.Target) {
		return pkgerr.Newf(pkgerr.KindPostVerifyFailed, "%s: %q still outdated after upgrade", t.ManagerID, t.Target)
	}
	return nil
}

// executeSearch runs a remote Search and caches the results with a fixed
// TTL, matching the engine's search_cache table semantics.
func (q *Queue) executeSearch(ctx adapter.Context, a adapter.Adapter, t model.Task) error {
	results, err := a.Search(ctx, t.Target)
	if err != nil {
		return err
	}
	return q.store.SaveSearch(ctx, t.ManagerID, t.Target, results, searchCacheTTL)
}

// executeRefresh runs Detect -> ListInstalled/ListOutdated for one manager
// and merges the results in a single transactional write per table, as
// orchestrator.Refresh does for every manager in a tier; submitted as its
// own task kind so a caller can refresh a single manager on demand.
func (q *Queue) executeRefresh(ctx adapter.Context, a adapter.Adapter, t model.Task) error {
	meta := a.Describe()

	det, err := a.Detect(ctx)
	if err != nil {
		return err
	}
	if err := q.store.SaveDetection(ctx, det); err != nil {
		return err
	}
	if !det.Installed {
		return nil
	}

	if meta.Capabilities.Has(model.CapListInstalled) {
		installed, err := a.ListInstalled(ctx)
		if err != nil {
			return err
		}
		if err := q.store.ReplaceInstalled(ctx, t.ManagerID, installed); err != nil {
			return err
		}
	}
	if meta.Capabilities.Has(model.CapListOutdated) {
		outdated, err := a.ListOutdated(ctx)
		if err != nil {
			return err
		}
		if err := q.store.ReplaceOutdated(ctx, t.ManagerID, outdated); err != nil {
			return err
		}
	}
	return nil
}

// executeSearchAll backs a trigger_remote_search(query) task: spec.md's
// signature carries no manager_id, so one RemoteSearch task (manager id
// model.AllManagersID) fans out Search across every registered adapter
// declaring CapSearch, caching each manager's hits independently. A
// manager's Search failure is logged and skipped rather than failing the
// whole task; the task only fails if every capable manager errored.
func (q *Queue) executeSearchAll(ctx context.Context, t model.Task, exec executor.Executor) error {
	var (
		attempted int
		succeeded int
		lastErr   error
	)
	for _, a := range q.reg.All() {
		meta := a.Describe()
		if !meta.Capabilities.Has(model.CapSearch) {
			continue
		}
		attempted++

		actx := adapter.Context{Context: ctx, Executor: exec, Timeout: readTimeout}
		results, err := a.Search(actx, t.Target)
		if err != nil {
			lastErr = err
			q.log.Warn("queue: remote search failed for manager", "manager_id", meta.ID, "query", t.Target, "err", err)
			continue
		}
		if err := q.store.SaveSearch(ctx, meta.ID, t.Target, results, searchCacheTTL); err != nil {
			lastErr = err
			continue
		}
		succeeded++
	}
	if attempted == 0 {
		return pkgerr.Newf(pkgerr.KindCapabilityUnsupported, "no registered manager declares Search")
	}
	if succeeded == 0 {
		return lastErr
	}
	return nil
}

func containsName(recs []model.PackageRecord, name string) bool {
	for _, r := range recs {
		if r.Name == name {
			return true
		}
	}
	return false
}
