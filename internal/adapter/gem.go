package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/gem"
)

// Gem wires RubyGems' gem manager for user-installed gems.
type Gem struct{ Base }

// NewGem returns the gem adapter.
func NewGem() *Gem {
	return &Gem{Base{Meta: model.ManagerMeta{
		ID:          "gem",
		DisplayName: "RubyGems",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (g *Gem) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "gem", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "gem"}, nil
	}
	return gem.ParseDetection(out), nil
}

func (g *Gem) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "gem", "list", "--local")
	if err != nil {
		return nil, err
	}
	return gem.ParseListInstalled(out)
}

func (g *Gem) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "gem", "outdated")
	if err != nil {
		return nil, err
	}
	recs, err := gem.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (g *Gem) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "gem", "install", "--user-install", target)
	return err
}

func (g *Gem) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "gem", "uninstall", target)
	return err
}

func (g *Gem) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "gem", "update", "--user-install")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "gem", "update", "--user-install", target)
	return err
}
