package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Base gives concrete adapters a default, capability-checked
// implementation of every method so a manager that doesn't declare, say,
// Search only has to implement the methods it actually supports; embedding
// Base and Meta wires the rest to Unsupported.
type Base struct {
	Meta model.ManagerMeta
}

// Describe returns the embedded metadata.
func (b Base) Describe() model.ManagerMeta { return b.Meta }

// Unsupported returns the standard CapabilityUnsupported error for a
// method the adapter's ManagerMeta does not declare.
func (b Base) Unsupported(cap model.Capability) error {
	return pkgerr.Newf(pkgerr.KindCapabilityUnsupported, "%s does not support %s", b.Meta.ID, cap)
}

func (b Base) ListInstalled(Context) ([]model.PackageRecord, error) {
	return nil, b.Unsupported(model.CapListInstalled)
}

func (b Base) ListOutdated(Context) ([]model.PackageRecord, error) {
	return nil, b.Unsupported(model.CapListOutdated)
}

func (b Base) Search(Context, string) ([]model.SearchResult, error) {
	return nil, b.Unsupported(model.CapSearch)
}

func (b Base) Install(Context, string) error { return b.Unsupported(model.CapInstall) }

func (b Base) Uninstall(Context, string) error { return b.Unsupported(model.CapUninstall) }

func (b Base) Upgrade(Context, string) error { return b.Unsupported(model.CapUpgrade) }

func (b Base) Pin(Context, string) error { return b.Unsupported(model.CapPin) }

func (b Base) Unpin(Context, string) error { return b.Unsupported(model.CapUnpin) }

func (b Base) SelfUpdate(Context) error { return b.Unsupported(model.CapSelfUpdate) }
