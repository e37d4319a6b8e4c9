package adapter

import (
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/pnpm"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Pnpm wires pnpm's global package manager.
type Pnpm struct{ Base }

// NewPnpm returns the pnpm adapter.
func NewPnpm() *Pnpm {
	return &Pnpm{Base{Meta: model.ManagerMeta{
		ID:          "pnpm",
		DisplayName: "pnpm",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (p *Pnpm) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "pnpm", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "pnpm"}, nil
	}
	return pnpm.ParseDetection(out), nil
}

func (p *Pnpm) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "pnpm", "list", "-g", "--json")
	if err != nil {
		return nil, err
	}
	return pnpm.ParseListInstalled(out)
}

// ListOutdated tolerates pnpm's convention of exiting non-zero when
// outdated packages exist (shared with npm, which pnpm's CLI mirrors).
func (p *Pnpm) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	res, err := ctx.Executor.Run(ctx.Context, executor.CommandSpec{
		Program: "pnpm",
		Args:    []string{"outdated", "-g", "--format", "json"},
		Timeout: ctx.WithTimeout(defaultCommandTimeout),
	})
	if err != nil && pkgerr.KindOf(err) != pkgerr.KindExecutionNonZeroExit {
		return nil, err
	}
	recs, parseErr := pnpm.ParseListOutdated(res.Stdout)
	if parseErr != nil {
		return nil, parseErr
	}
	return filterHasUpdate(recs), nil
}

func (p *Pnpm) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pnpm", "add", "-g", target)
	return err
}

func (p *Pnpm) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pnpm", "remove", "-g", target)
	return err
}

func (p *Pnpm) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "pnpm", "update", "-g")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pnpm", "update", "-g", target)
	return err
}
