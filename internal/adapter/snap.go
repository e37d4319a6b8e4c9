package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/snap"
)

// Snap wires Canonical's snap package manager. No Search: `snap find`
// requires snapd's store proxy to be reachable in a way that varies by
// distro confinement profile, and is covered by Install's own
// name-resolution instead of a separate query round trip.
type Snap struct{ Base }

// NewSnap returns the snap adapter.
func NewSnap() *Snap {
	return &Snap{Base{Meta: model.ManagerMeta{
		ID:          "snap",
		DisplayName: "snap",
		Category:    model.CategoryApp,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (s *Snap) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "snap", "version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "snap"}, nil
	}
	return snap.ParseDetection(out), nil
}

func (s *Snap) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "snap", "list")
	if err != nil {
		return nil, err
	}
	return snap.ParseListInstalled(out)
}

func (s *Snap) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	installed, err := s.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(installed))
	for _, rec := range installed {
		byName[rec.Name] = rec.InstalledVersion
	}
	out, err := run(ctx, "snap", "refresh", "--list")
	if err != nil {
		return nil, err
	}
	recs, err := snap.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].InstalledVersion = byName[recs[i].Name]
	}
	return filterHasUpdate(recs), nil
}

func (s *Snap) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "snap", "install", target)
	return err
}

func (s *Snap) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "snap", "remove", target)
	return err
}

func (s *Snap) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "snap", "refresh")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "snap", "refresh", target)
	return err
}
