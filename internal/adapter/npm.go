package adapter

import (
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/npm"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Npm wires Node's npm package manager (global installs only; this engine
// does not reach into project-local node_modules trees).
type Npm struct{ Base }

// NewNpm returns the npm adapter.
func NewNpm() *Npm {
	return &Npm{Base{Meta: model.ManagerMeta{
		ID:          "npm",
		DisplayName: "npm",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapSearch, model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (n *Npm) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "npm", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "npm"}, nil
	}
	return npm.ParseDetection(out), nil
}

func (n *Npm) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "npm", "list", "-g", "--depth=0", "--json")
	if err != nil {
		return nil, err
	}
	return npm.ParseListInstalled(out)
}

// ListOutdated tolerates npm's well-known quirk of exiting 1 when it finds
// outdated packages (the presence of outdated packages is not, itself, a
// failure); any other non-zero-exit classification is still propagated.
func (n *Npm) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	res, err := ctx.Executor.Run(ctx.Context, executor.CommandSpec{
		Program: "npm",
		Args:    []string{"outdated", "-g", "--json"},
		Timeout: ctx.WithTimeout(defaultCommandTimeout),
	})
	if err != nil && pkgerr.KindOf(err) != pkgerr.KindExecutionNonZeroExit {
		return nil, err
	}
	recs, parseErr := npm.ParseListOutdated(res.Stdout)
	if parseErr != nil {
		return nil, parseErr
	}
	return filterHasUpdate(recs), nil
}

func (n *Npm) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "npm", "search", query, "--json")
	if err != nil {
		return nil, err
	}
	return npm.ParseSearch(out)
}

func (n *Npm) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "npm", "install", "-g", target)
	return err
}

func (n *Npm) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "npm", "uninstall", "-g", target)
	return err
}

func (n *Npm) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "npm", "update", "-g")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "npm", "update", "-g", target)
	return err
}
