package adapter

import (
	"strings"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/yarn"
)

// Yarn wires Yarn Classic's global package manager.
type Yarn struct{ Base }

// NewYarn returns the yarn adapter.
func NewYarn() *Yarn {
	return &Yarn{Base{Meta: model.ManagerMeta{
		ID:          "yarn",
		DisplayName: "Yarn",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (y *Yarn) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "yarn", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "yarn"}, nil
	}
	return yarn.ParseDetection(out), nil
}

func (y *Yarn) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "yarn", "global", "list", "--json")
	if err != nil {
		return nil, err
	}
	return yarn.ParseListInstalled(out)
}

// ListOutdated fills the gap left by Yarn Classic, which has no global
// "outdated" command: for each globally installed package, it queries the
// npm registry directly (`npm view <name> version`) for the latest
// published version, since Yarn's own registry client exposes no
// standalone query subcommand.
func (y *Yarn) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	installed, err := y.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for _, rec := range installed {
		latest, err := run(ctx, "npm", "view", rec.Name, "version")
		if err != nil {
			continue
		}
		rec.LatestVersion = strings.TrimSpace(string(latest))
		out = append(out, rec)
	}
	return filterHasUpdate(out), nil
}

func (y *Yarn) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "yarn", "global", "add", target)
	return err
}

func (y *Yarn) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "yarn", "global", "remove", target)
	return err
}

func (y *Yarn) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "yarn", "global", "upgrade")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "yarn", "global", "upgrade", target)
	return err
}
