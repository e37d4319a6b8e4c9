package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/cargo"
)

// Cargo wires Rust's cargo install manager for globally installed binaries.
type Cargo struct{ Base }

// NewCargo returns the cargo adapter.
func NewCargo() *Cargo {
	return &Cargo{Base{Meta: model.ManagerMeta{
		ID:          "cargo",
		DisplayName: "Cargo",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (c *Cargo) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "cargo", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "cargo"}, nil
	}
	return cargo.ParseDetection(out), nil
}

func (c *Cargo) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "cargo", "install", "--list")
	if err != nil {
		return nil, err
	}
	return cargo.ParseListInstalled(out)
}

// ListOutdated shells out to cargo-install-update (the `cargo install
// cargo-update` plugin), the de facto standard for checking installed
// binary crates against crates.io, since stock cargo has no such command.
func (c *Cargo) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "cargo", "install-update", "--list")
	if err != nil {
		return nil, err
	}
	recs, err := cargo.ParseInstallUpdateList(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (c *Cargo) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "cargo", "install", target)
	return err
}

func (c *Cargo) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "cargo", "uninstall", target)
	return err
}

func (c *Cargo) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "cargo", "install-update", "--all")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "cargo", "install", "--force", target)
	return err
}
