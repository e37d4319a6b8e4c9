// Package orchestrator runs the tier-partitioned refresh: authoritative
// managers are observed, then standard, then guarded, with every manager
// inside a tier fanned out in parallel. Grounded on
// lake/api/handlers/status.go's errgroup-based parallel health-check
// fan-out, adapted to run in tiers with "one manager's failure never
// cancels its siblings" — this package deliberately does not use
// errgroup.WithContext, whose shared cancellation would violate that.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/store"
)

// ManagerOutcome records one manager's result within a Refresh run, for
// callers (tests) that want more than "it finished"; the façade discards
// the outcomes.
type ManagerOutcome struct {
	ManagerID string
	Err       error
}

// Orchestrator drives Refresh across every enabled manager in the Registry.
type Orchestrator struct {
	store *store.Store
	reg   *adapter.Registry
	exec  executor.Executor
	log   *slog.Logger

	readTimeout time.Duration
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithLogger sets the logger used for per-manager refresh diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithReadTimeout overrides the per-manager Detect/ListInstalled/ListOutdated
// timeout (default 30s, matching spec.md's read/search soft cap).
func WithReadTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.readTimeout = d }
}

// New builds an Orchestrator.
func New(s *store.Store, reg *adapter.Registry, exec executor.Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: s, reg: reg, exec: exec, log: slog.Default(), readTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Refresh runs Detect -> ListInstalled/ListOutdated for every enabled
// manager, tier by tier (authoritative, then standard, then guarded),
// waiting for a tier to fully settle before starting the next one. A
// manager whose enabled flag (app_settings) is off is skipped entirely.
// Returns one ManagerOutcome per manager that was attempted.
func (o *Orchestrator) Refresh(ctx context.Context) ([]ManagerOutcome, error) {
	var all []ManagerOutcome

	for _, tier := range model.Tiers {
		managers := o.reg.ByTier(tier)
		if len(managers) == 0 {
			continue
		}

		outcomes := make([]ManagerOutcome, len(managers))
		var g errgroup.Group // no WithContext: one manager's error must not cancel its tier-mates
		for i, a := range managers {
			i, a := i, a
			g.Go(func() error {
				outcomes[i] = ManagerOutcome{ManagerID: a.Describe().ID, Err: o.refreshOne(ctx, a)}
				return nil
			})
		}
		_ = g.Wait() // errors are carried in outcomes, not the group error

		all = append(all, outcomes...)
		for _, oc := range outcomes {
			if oc.Err != nil {
				o.log.Warn("orchestrator: manager refresh failed", "manager_id", oc.ManagerID, "tier", tier, "err", oc.Err)
			}
		}
	}
	return all, nil
}

// RefreshOne runs the same Detect->ListInstalled/ListOutdated sequence for
// a single manager. The façade has no per-manager refresh route and does
// not call it.
func (o *Orchestrator) RefreshOne(ctx context.Context, managerID string) error {
	a, err := o.reg.Get(managerID)
	if err != nil {
		return err
	}
	return o.refreshOne(ctx, a)
}

func (o *Orchestrator) refreshOne(ctx context.Context, a adapter.Adapter) error {
	enabled, err := o.store.IsManagerEnabled(ctx, a.Describe().ID)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	actx := adapter.Context{Context: ctx, Executor: o.exec, Timeout: o.readTimeout}
	meta := a.Describe()

	det, err := a.Detect(actx)
	if err != nil {
		return err
	}
	if err := o.store.SaveDetection(ctx, det); err != nil {
		return err
	}
	if !det.Installed {
		return nil
	}

	if meta.Capabilities.Has(model.CapListInstalled) {
		installed, err := a.ListInstalled(actx)
		if err != nil {
			return err
		}
		if err := o.store.ReplaceInstalled(ctx, meta.ID, installed); err != nil {
			return err
		}
	}
	if meta.Capabilities.Has(model.CapListOutdated) {
		outdated, err := a.ListOutdated(actx)
		if err != nil {
			return err
		}
		if err := o.store.ReplaceOutdated(ctx, meta.ID, outdated); err != nil {
			return err
		}
	}
	return nil
}
