package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/mise"
)

// Mise wires the mise polyglot toolchain manager (https://mise.jdx.dev).
// Authoritative: it can install and pin language runtimes that other
// language-level managers (npm, pip...) then discover underneath it.
type Mise struct{ Base }

// NewMise returns the mise adapter.
func NewMise() *Mise {
	return &Mise{Base{Meta: model.ManagerMeta{
		ID:          "mise",
		DisplayName: "mise",
		Category:    model.CategoryToolchain,
		Authority:   model.AuthorityAuthoritative,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUpgrade, model.CapUninstall, model.CapSelfUpdate,
		),
	}}}
}

func (m *Mise) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "mise", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "mise"}, nil
	}
	return mise.ParseDetection(out), nil
}

func (m *Mise) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "mise", "list", "--json")
	if err != nil {
		return nil, err
	}
	return mise.ParseListInstalled(out)
}

func (m *Mise) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "mise", "outdated", "--json")
	if err != nil {
		return nil, err
	}
	recs, err := mise.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (m *Mise) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "mise", "install", target)
	return err
}

func (m *Mise) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "mise", "uninstall", target)
	return err
}

func (m *Mise) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "mise", "upgrade")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "mise", "upgrade", target)
	return err
}

func (m *Mise) SelfUpdate(ctx Context) error {
	_, err := runLong(ctx, "mise", "self-update", "--yes")
	return err
}
