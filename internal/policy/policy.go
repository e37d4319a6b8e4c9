// Package policy gates mutating tasks before they reach the queue: Safe
// Mode for guarded managers, the pin overlay for Upgrade intents, and the
// upgrade-all planner. The shape follows doublezerod's request validation
// idiom (requests.go): small functions that check a precondition and
// return a typed error, called before the caller's action is accepted.
package policy

import (
	"context"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
	"github.com/manifoldpm/manifold/internal/store"
)

// Gate holds the read-only state policy decisions are made against: the
// safe_mode flag and pin table (via Store) and manager authority tiers
// (via Registry).
type Gate struct {
	store *store.Store
	reg   *adapter.Registry
}

// New builds a Gate.
func New(s *store.Store, reg *adapter.Registry) *Gate {
	return &Gate{store: s, reg: reg}
}

// CheckMutation gates a single mutating task (Install, Uninstall, Upgrade,
// Pin, Unpin, SelfUpdate) before it is submitted to the queue. Refresh and
// RemoteSearch never reach here; they carry no Safe Mode or pin exposure.
//
// allowOSUpdates mirrors the Façade's upgrade_all/install_manager-style
// confirmation token: true only when the caller explicitly opted in to a
// guarded-manager mutation.
func (g *Gate) CheckMutation(ctx context.Context, t model.Task, allowOSUpdates bool) error {
	a, err := g.reg.Get(t.ManagerID)
	if err != nil {
		return err
	}

	if a.Describe().Authority == model.AuthorityGuarded {
		safe, err := g.store.GetSafeMode(ctx)
		if err != nil {
			return err
		}
		if safe && !allowOSUpdates {
			return pkgerr.Newf(pkgerr.KindBlockedSafeMode, "safe mode blocks guarded manager %q absent allow_os_updates", t.ManagerID)
		}
	}

	if t.Kind == model.TaskUpgrade && t.Target != "" {
		pinned, err := g.store.IsPinned(ctx, t.ManagerID, t.Target)
		if err != nil {
			return err
		}
		if pinned {
			return pkgerr.Newf(pkgerr.KindBlockedPinned, "%q is pinned in manager %q", t.Target, t.ManagerID)
		}
	}

	return nil
}
