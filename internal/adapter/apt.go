package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/apt"
)

// Apt wires Debian/Ubuntu's apt package manager. Guarded: it mutates
// system packages directly. Pin/Unpin dispatch to `apt-mark hold`/`unhold`,
// apt's native equivalent of a version pin.
type Apt struct{ Base }

// NewApt returns the apt adapter.
func NewApt() *Apt {
	return &Apt{Base{Meta: model.ManagerMeta{
		ID:          "apt",
		DisplayName: "APT",
		Category:    model.CategorySystem,
		Authority:   model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapSearch, model.CapInstall, model.CapUninstall, model.CapUpgrade,
			model.CapPin, model.CapUnpin,
		),
	}}}
}

func (a *Apt) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "apt-get", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "apt"}, nil
	}
	return apt.ParseDetection(out), nil
}

func (a *Apt) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "apt", "list", "--installed")
	if err != nil {
		return nil, err
	}
	return apt.ParseListInstalled(out)
}

func (a *Apt) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "apt", "list", "--upgradable")
	if err != nil {
		return nil, err
	}
	recs, err := apt.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (a *Apt) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "apt-cache", "search", query)
	if err != nil {
		return nil, err
	}
	return apt.ParseSearch(out, query), nil
}

func (a *Apt) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "apt-get", "install", "-y", target)
	return err
}

func (a *Apt) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "apt-get", "remove", "-y", target)
	return err
}

func (a *Apt) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "apt-get", "upgrade", "-y")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "apt-get", "install", "--only-upgrade", "-y", target)
	return err
}

func (a *Apt) Pin(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := run(ctx, "apt-mark", "hold", target)
	return err
}

func (a *Apt) Unpin(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := run(ctx, "apt-mark", "unhold", target)
	return err
}
