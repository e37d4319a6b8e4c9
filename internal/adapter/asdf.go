package adapter

import (
	"strings"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/asdf"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// Asdf wires the asdf version manager. Unlike mise, asdf has no single
// command that lists every installed version across every plugin, so
// ListInstalled/ListOutdated fan out per plugin (`asdf plugin list`, then
// `asdf list <plugin>` / `asdf list all <plugin>` per plugin).
type Asdf struct{ Base }

// NewAsdf returns the asdf adapter.
func NewAsdf() *Asdf {
	return &Asdf{Base{Meta: model.ManagerMeta{
		ID:          "asdf",
		DisplayName: "asdf",
		Category:    model.CategoryToolchain,
		Authority:   model.AuthorityAuthoritative,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUpgrade, model.CapUninstall,
		),
	}}}
}

func (a *Asdf) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "asdf", "version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "asdf"}, nil
	}
	return asdf.ParseDetection(out), nil
}

func (a *Asdf) plugins(ctx Context) ([]string, error) {
	out, err := run(ctx, "asdf", "plugin", "list")
	if err != nil {
		return nil, err
	}
	return parseutil.Lines(out), nil
}

func (a *Asdf) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	plugins, err := a.plugins(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for _, plugin := range plugins {
		listed, err := run(ctx, "asdf", "list", plugin)
		if err != nil {
			continue // plugin installed but no versions yet; not a hard failure
		}
		recs, err := asdf.ParseListInstalled(plugin, listed)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (a *Asdf) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	plugins, err := a.plugins(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for _, plugin := range plugins {
		current, err := run(ctx, "asdf", "current", plugin)
		if err != nil {
			continue
		}
		fields := strings.Fields(string(current))
		if len(fields) < 2 {
			continue
		}
		currentVersion := fields[1]

		all, err := run(ctx, "asdf", "list", "all", plugin)
		if err != nil {
			continue
		}
		latest := asdf.ParseLatestAvailable(all)
		out = append(out, filterHasUpdate(asdf.ParseListOutdated(plugin, currentVersion, latest))...)
	}
	return out, nil
}

func (a *Asdf) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	plugin, version, _ := strings.Cut(target, "@")
	args := []string{"install", plugin}
	if version != "" {
		args = append(args, version)
	}
	_, err := runLong(ctx, "asdf", args...)
	return err
}

func (a *Asdf) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	plugin, version, ok := strings.Cut(target, "@")
	if !ok {
		return a.Base.Unsupported(model.CapUninstall)
	}
	_, err := runLong(ctx, "asdf", "uninstall", plugin, version)
	return err
}

func (a *Asdf) Upgrade(ctx Context, target string) error {
	if target != "" {
		if err := ValidateIdentifier(target); err != nil {
			return err
		}
		return a.Install(ctx, target)
	}
	outdated, err := a.ListOutdated(ctx)
	if err != nil {
		return err
	}
	for _, rec := range outdated {
		if err := a.Install(ctx, rec.Name+"@"+rec.LatestVersion); err != nil {
			return err
		}
	}
	return nil
}
