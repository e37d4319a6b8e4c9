package policy

import (
	"context"
	"sort"

	"github.com/manifoldpm/manifold/internal/model"
)

// PlannedUpgrade is one (manager, package) pair the upgrade-all planner
// decided should be upgraded.
type PlannedUpgrade struct {
	ManagerID string
	Name      string
}

// PlanUpgradeAll implements spec.md 4.7: apply the pin overlay and
// include_pinned filter, then the safe-mode filter for guarded managers,
// then group by manager ordered by authority tier and id. A pinned
// package or a safe-mode-blocked guarded manager is silently excluded
// here (bulk upgrade semantics), never rejected the way a single
// upgrade_package call is by CheckMutation. excluded counts how many
// outdated records were dropped by either filter, so a caller can
// surface that count (e.g. a Fleet notification) without re-querying.
func (g *Gate) PlanUpgradeAll(ctx context.Context, includePinned, allowOSUpdates bool) (plan []PlannedUpgrade, excluded int, err error) {
	outdated, err := g.store.ListAllOutdated(ctx)
	if err != nil {
		return nil, 0, err
	}

	safe, err := g.store.GetSafeMode(ctx)
	if err != nil {
		return nil, 0, err
	}

	for _, rec := range outdated {
		if !includePinned && rec.Pinned {
			excluded++
			continue
		}

		a, err := g.reg.Get(rec.ManagerID)
		if err != nil {
			// A manager present in a stale outdated snapshot but no longer
			// registered (removed, disabled build) can't be planned for.
			excluded++
			continue
		}
		if a.Describe().Authority == model.AuthorityGuarded && safe && !allowOSUpdates {
			excluded++
			continue
		}

		plan = append(plan, PlannedUpgrade{ManagerID: rec.ManagerID, Name: rec.Name})
	}

	sort.Slice(plan, func(i, j int) bool {
		ti, tj := g.tierOf(plan[i].ManagerID), g.tierOf(plan[j].ManagerID)
		if ti != tj {
			return ti < tj
		}
		if plan[i].ManagerID != plan[j].ManagerID {
			return plan[i].ManagerID < plan[j].ManagerID
		}
		return plan[i].Name < plan[j].Name
	})

	return plan, excluded, nil
}

func (g *Gate) tierOf(managerID string) model.Authority {
	a, err := g.reg.Get(managerID)
	if err != nil {
		return model.AuthorityGuarded // unknown manager sorts last, never first
	}
	return a.Describe().Authority
}
