package adapter

import (
	"strings"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/dnf"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// Dnf wires Fedora/RHEL's dnf package manager. Guarded: it mutates system
// packages directly. No native pin primitive is wired (dnf's
// versionlock plugin is not universally installed), so pin/unpin for dnf
// falls back to the engine's own virtual-pin overlay at the policy layer.
type Dnf struct{ Base }

// NewDnf returns the dnf adapter.
func NewDnf() *Dnf {
	return &Dnf{Base{Meta: model.ManagerMeta{
		ID:          "dnf",
		DisplayName: "DNF",
		Category:    model.CategorySystem,
		Authority:   model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapSearch, model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (d *Dnf) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "dnf", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "dnf"}, nil
	}
	return dnf.ParseDetection(out), nil
}

func (d *Dnf) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "dnf", "list", "--installed")
	if err != nil {
		return nil, err
	}
	return dnf.ParseListInstalled(out)
}

func (d *Dnf) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	installed, err := d.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(installed))
	for _, rec := range installed {
		byName[rec.Name] = rec.InstalledVersion
	}
	out, err := run(ctx, "dnf", "list", "--upgrades")
	if err != nil {
		return nil, err
	}
	upgrades, err := dnf.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	for i := range upgrades {
		upgrades[i].InstalledVersion = byName[upgrades[i].Name]
	}
	return filterHasUpdate(upgrades), nil
}

func (d *Dnf) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "dnf", "search", query)
	if err != nil {
		return nil, err
	}
	var results []model.SearchResult
	for _, line := range parseutil.Lines(out) {
		if !strings.Contains(line, ".") || !strings.Contains(line, " : ") {
			continue
		}
		name, desc, _ := strings.Cut(line, " : ")
		name, _, _ = strings.Cut(name, ".")
		results = append(results, model.SearchResult{
			ManagerID:   "dnf",
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(desc),
			Query:       query,
		})
	}
	return results, nil
}

func (d *Dnf) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "dnf", "install", "-y", target)
	return err
}

func (d *Dnf) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "dnf", "remove", "-y", target)
	return err
}

func (d *Dnf) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "dnf", "upgrade", "-y")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "dnf", "upgrade", "-y", target)
	return err
}
