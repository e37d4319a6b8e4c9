package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/flatpak"
)

// Flatpak wires the Flatpak app sandboxing/distribution manager.
type Flatpak struct{ Base }

// NewFlatpak returns the flatpak adapter.
func NewFlatpak() *Flatpak {
	return &Flatpak{Base{Meta: model.ManagerMeta{
		ID:          "flatpak",
		DisplayName: "Flatpak",
		Category:    model.CategoryApp,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapSearch, model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (f *Flatpak) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "flatpak", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "flatpak"}, nil
	}
	return flatpak.ParseDetection(out), nil
}

func (f *Flatpak) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "flatpak", "list", "--app", "--columns=application,version")
	if err != nil {
		return nil, err
	}
	return flatpak.ParseListInstalled(out)
}

func (f *Flatpak) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	installed, err := f.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(installed))
	for _, rec := range installed {
		byName[rec.Name] = rec.InstalledVersion
	}
	out, err := run(ctx, "flatpak", "remote-ls", "--updates", "--app", "--columns=application,version")
	if err != nil {
		return nil, err
	}
	recs, err := flatpak.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].InstalledVersion = byName[recs[i].Name]
	}
	return filterHasUpdate(recs), nil
}

func (f *Flatpak) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "flatpak", "search", "--columns=application,name,version", query)
	if err != nil {
		return nil, err
	}
	return flatpak.ParseSearch(out)
}

func (f *Flatpak) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "flatpak", "install", "-y", "flathub", target)
	return err
}

func (f *Flatpak) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "flatpak", "uninstall", "-y", target)
	return err
}

func (f *Flatpak) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "flatpak", "update", "-y")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "flatpak", "update", "-y", target)
	return err
}
