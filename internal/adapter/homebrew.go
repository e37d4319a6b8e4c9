package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/homebrew"
)

// Homebrew wires the Homebrew package manager. Guarded: it can touch
// OS-level toolchains and shared libraries, so Safe Mode gates its
// mutating operations. It has a native pin primitive (`brew pin`/`brew
// unpin`), as apt does, so Pin/Unpin dispatch straight to the tool instead
// of the engine's virtual-pin overlay.
type Homebrew struct{ Base }

// NewHomebrew returns the homebrew adapter.
func NewHomebrew() *Homebrew {
	return &Homebrew{Base{Meta: model.ManagerMeta{
		ID:          "homebrew",
		DisplayName: "Homebrew",
		Category:    model.CategorySystem,
		Authority:   model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapSearch, model.CapInstall, model.CapUninstall, model.CapUpgrade,
			model.CapPin, model.CapUnpin, model.CapSelfUpdate,
		),
	}}}
}

func (h *Homebrew) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "brew", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "homebrew"}, nil
	}
	return homebrew.ParseDetection(out), nil
}

func (h *Homebrew) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "brew", "list", "--versions")
	if err != nil {
		return nil, err
	}
	return homebrew.ParseListInstalled(out)
}

func (h *Homebrew) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "brew", "outdated", "--json=v2")
	if err != nil {
		return nil, err
	}
	recs, err := homebrew.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

func (h *Homebrew) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "brew", "search", "--formula", "--json", query)
	if err != nil {
		return nil, err
	}
	return homebrew.ParseSearch(out, query)
}

func (h *Homebrew) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "brew", "install", target)
	return err
}

func (h *Homebrew) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "brew", "uninstall", target)
	return err
}

func (h *Homebrew) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "brew", "upgrade")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "brew", "upgrade", target)
	return err
}

func (h *Homebrew) Pin(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := run(ctx, "brew", "pin", target)
	return err
}

func (h *Homebrew) Unpin(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := run(ctx, "brew", "unpin", target)
	return err
}

func (h *Homebrew) SelfUpdate(ctx Context) error {
	_, err := runLong(ctx, "brew", "update")
	return err
}
