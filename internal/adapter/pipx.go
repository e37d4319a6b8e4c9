package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/pipx"
)

// Pipx wires pipx's isolated-venv CLI tool manager. No ListOutdated: pipx
// itself has no "outdated" command (`pipx upgrade-all` just re-resolves
// and is a no-op when already current), so staleness checking is left to
// Upgrade's own idempotence.
type Pipx struct{ Base }

// NewPipx returns the pipx adapter.
func NewPipx() *Pipx {
	return &Pipx{Base{Meta: model.ManagerMeta{
		ID:          "pipx",
		DisplayName: "pipx",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapInstall,
			model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (p *Pipx) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "pipx", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "pipx"}, nil
	}
	return pipx.ParseDetection(out), nil
}

func (p *Pipx) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "pipx", "list", "--json")
	if err != nil {
		return nil, err
	}
	return pipx.ParseListInstalled(out)
}

func (p *Pipx) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pipx", "install", target)
	return err
}

func (p *Pipx) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pipx", "uninstall", target)
	return err
}

func (p *Pipx) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "pipx", "upgrade-all")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pipx", "upgrade", target)
	return err
}
