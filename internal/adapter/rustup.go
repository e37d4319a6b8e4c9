package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/rustup"
)

// Rustup wires the Rust toolchain installer. No ListOutdated: `rustup
// update` always re-pulls the tracked channel, so there is nothing
// meaningful to diff ahead of time.
type Rustup struct{ Base }

// NewRustup returns the rustup adapter.
func NewRustup() *Rustup {
	return &Rustup{Base{Meta: model.ManagerMeta{
		ID:          "rustup",
		DisplayName: "rustup",
		Category:    model.CategoryToolchain,
		Authority:   model.AuthorityAuthoritative,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapUpgrade, model.CapSelfUpdate,
		),
	}}}
}

func (r *Rustup) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "rustup", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "rustup"}, nil
	}
	return rustup.ParseDetection(out), nil
}

func (r *Rustup) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "rustup", "toolchain", "list", "-v")
	if err != nil {
		return nil, err
	}
	return rustup.ParseListInstalled(out)
}

func (r *Rustup) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "rustup", "update")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "rustup", "update", target)
	return err
}

func (r *Rustup) SelfUpdate(ctx Context) error {
	_, err := runLong(ctx, "rustup", "self", "update")
	return err
}
