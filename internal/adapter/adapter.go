// Package adapter defines the contract every package-manager backend
// implements and the Registry that looks adapters up by id. The shape is
// grounded on doublezerod's Provisioner interface (manager.go): a small,
// capability-dispatched contract plus functional-options construction.
package adapter

import (
	"context"
	"time"

	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
)

// Context is threaded through every Adapter method. It carries
// cancellation (the embedded context.Context), the Executor used to spawn
// the manager's CLI, and the ambient Timeout that WithTimeout applies to
// every adapter command. It carries no store handle: adapters cannot read
// cached detection state through it.
type Context struct {
	context.Context
	Executor executor.Executor
	Timeout  time.Duration
}

// WithTimeout returns the command timeout to use: c.Timeout when it is
// positive, otherwise the fallback d. Adapters call this before handing a
// CommandSpec to Run.
func (c Context) WithTimeout(d time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return d
}

// Adapter is a package-manager backend. Every method corresponds to a
// Capability in the manager's declared CapabilitySet; adapters return
// pkgerr errors with Kind KindCapabilityUnsupported for methods the manager's
// ManagerMeta does not declare, rather than silently no-opping.
type Adapter interface {
	// Describe returns the adapter's static metadata (id, category,
	// authority tier, declared capabilities). Called once at registration.
	Describe() model.ManagerMeta

	// Detect reports whether the underlying tool is present and, if so,
	// its version. Always implemented; every manager supports Detect.
	Detect(ctx Context) (model.DetectionRecord, error)

	// ListInstalled returns every package/tool the manager currently has
	// installed.
	ListInstalled(ctx Context) ([]model.PackageRecord, error)

	// ListOutdated returns the subset of installed packages with a newer
	// version available, already satisfying PackageRecord.HasUpdate().
	ListOutdated(ctx Context) ([]model.PackageRecord, error)

	// Search queries the manager's remote catalog. Network-bound; callers
	// should apply a generous timeout and treat results as cacheable.
	Search(ctx Context, query string) ([]model.SearchResult, error)

	// Install installs target, a manager-specific package identifier.
	Install(ctx Context, target string) error

	// Uninstall removes target.
	Uninstall(ctx Context, target string) error

	// Upgrade upgrades target to its latest available version, or upgrades
	// every outdated package when target is "".
	Upgrade(ctx Context, target string) error

	// Pin excludes target from future bulk Upgrade calls, natively if the
	// manager supports it.
	Pin(ctx Context, target string) error

	// Unpin reverses Pin.
	Unpin(ctx Context, target string) error

	// SelfUpdate upgrades the manager tool itself, not the packages it manages.
	SelfUpdate(ctx Context) error
}
