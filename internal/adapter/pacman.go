package adapter

import (
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/pacman"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// Pacman wires Arch Linux's pacman package manager. Guarded: it mutates
// system packages directly. No Search: pacman's own `-Ss` needs a synced
// package database the engine does not manage, so search is left to the
// user's own `pacman -Sy` cadence rather than implicitly triggered here.
type Pacman struct{ Base }

// NewPacman returns the pacman adapter.
func NewPacman() *Pacman {
	return &Pacman{Base{Meta: model.ManagerMeta{
		ID:          "pacman",
		DisplayName: "pacman",
		Category:    model.CategorySystem,
		Authority:   model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapListOutdated,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (p *Pacman) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "pacman", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "pacman"}, nil
	}
	return pacman.ParseDetection(out), nil
}

func (p *Pacman) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "pacman", "-Q")
	if err != nil {
		return nil, err
	}
	return pacman.ParseListInstalled(out)
}

// ListOutdated tolerates pacman's convention of exiting 1 when `-Qu` finds
// nothing to report (an empty upgrade set is not a failure).
func (p *Pacman) ListOutdated(ctx Context) ([]model.PackageRecord, error) {
	res, err := ctx.Executor.Run(ctx.Context, executor.CommandSpec{
		Program: "pacman",
		Args:    []string{"-Qu"},
		Timeout: ctx.WithTimeout(defaultCommandTimeout),
	})
	if err != nil && pkgerr.KindOf(err) != pkgerr.KindExecutionNonZeroExit {
		return nil, err
	}
	recs, parseErr := pacman.ParseListOutdated(res.Stdout)
	if parseErr != nil {
		return nil, parseErr
	}
	return filterHasUpdate(recs), nil
}

func (p *Pacman) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pacman", "-S", "--noconfirm", target)
	return err
}

func (p *Pacman) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pacman", "-R", "--noconfirm", target)
	return err
}

func (p *Pacman) Upgrade(ctx Context, target string) error {
	if target == "" {
		_, err := runLong(ctx, "pacman", "-Su", "--noconfirm")
		return err
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "pacman", "-S", "--noconfirm", target)
	return err
}
