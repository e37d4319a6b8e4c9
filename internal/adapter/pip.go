package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/pip"
)

// Pip wires Python's pip package manager (user-site installs; this engine
// never touches a project's own virtualenv).
type Pip struct{ Base }

// NewPip returns the pip adapter.
func NewPip() *Pip {
	return &Pip{Base{Meta: model.ManagerMeta{
		ID:          "pip",
		DisplayName: "pip",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapSearch, model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (p *Pip) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "pip", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "pip"}, nil
	}
	return pip.ParseDetection(out), nil
}

func (p *Pip) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "pip", "list", "--user", "--format=json")
	if err != nil {
		return nil, err
	}
	return pip.ParseListInstalled(out)
}

func (p *Pip) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "pip", "list", "--user", "--outdated", "--format=json")
	if err != nil {
		return nil, err
	}
	recs, err := pip.ParseListOutdated(out)
	if err != nil {
		return nil, err
	}
	return filterHasUpdate(recs), nil
}

// Search uses `pip index versions <query>` rather than the removed `pip
// search` (PyPI disabled the XML-RPC search endpoint that command relied
// on): it resolves an exact distribution name to its available versions,
// which is a narrower match than a free-text search but is the closest
// capability pip's own CLI still exposes.
func (p *Pip) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "pip", "index", "versions", query)
	if err != nil {
		return nil, err
	}
	return pip.ParseSearch(query, out)
}

func (p *Pip) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pip", "install", "--user", target)
	return err
}

func (p *Pip) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pip", "uninstall", "-y", target)
	return err
}

func (p *Pip) Upgrade(ctx Context, target string) error {
	if target == "" {
		outdated, err := p.ListOutdated(ctx)
		if err != nil {
			return err
		}
		for _, rec := range outdated {
			if err := p.Upgrade(ctx, rec.Name); err != nil {
				return err
			}
		}
		return nil
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pip", "install", "--user", "--upgrade", target)
	return err
}
