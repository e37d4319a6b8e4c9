package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/fwupd"
)

// Fwupd wires the Linux Vendor Firmware Service client. Guarded: flashing
// firmware is the highest-risk mutation in the system. No Search or
// Uninstall: firmware releases are tied to detected hardware, not chosen
// from a catalog, and cannot be reverted once flashed.
type Fwupd struct{ Base }

// NewFwupd returns the fwupd adapter.
func NewFwupd() *Fwupd {
	return &Fwupd{Base{Meta: model.ManagerMeta{
		ID:          "fwupd",
		DisplayName: "fwupd",
		Category:    model.CategoryFirmware,
		Authority:   model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated, model.CapUpgrade,
		),
	}}}
}

func (f *Fwupd) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "fwupdmgr", "--version", "--json")
	if err != nil {
		return model.DetectionRecord{ManagerID: "fwupd"}, nil
	}
	return fwupd.ParseDetection(out), nil
}

func (f *Fwupd) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "fwupdmgr", "get-devices", "--json")
	if err != nil {
		return nil, err
	}
	return fwupd.ParseListInstalled(out)
}

func (f *Fwupd) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "fwupdmgr", "get-updates", "--json")
	if err != nil {
		return nil, err
	}
	recs, err := fwupd.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (f *Fwupd) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "fwupdmgr", "update", "-y")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "fwupdmgr", "update", "-y", target)
	return err
}
