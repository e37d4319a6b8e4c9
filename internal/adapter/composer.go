package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/composer"
)

// Composer wires PHP Composer's global package manager.
type Composer struct{ Base }

// NewComposer returns the composer adapter.
func NewComposer() *Composer {
	return &Composer{Base{Meta: model.ManagerMeta{
		ID:          "composer",
		DisplayName: "Composer",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (c *Composer) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "composer", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "composer"}, nil
	}
	return composer.ParseDetection(out), nil
}

func (c *Composer) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "composer", "global", "show", "--format=json")
	if err != nil {
		return nil, err
	}
	return composer.ParseListInstalled(out)
}

func (c *Composer) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "composer", "global", "outdated", "--format=json")
	if err != nil {
		return nil, err
	}
	recs, err := composer.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (c *Composer) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "composer", "global", "require", target)
	return err
}

func (c *Composer) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "composer", "global", "remove", target)
	return err
}

func (c *Composer) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "composer", "global", "update")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "composer", "global", "update", target)
	return err
}
