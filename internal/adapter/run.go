package adapter

import (
	"time"

	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/model"
)

// filterHasUpdate applies the HasUpdate invariant to records a parser
// passed through faithfully (some managers, e.g. Homebrew, include
// not-actually-outdated entries in their own "outdated" output). Filtering
// happens here, at the adapter/orchestrator boundary, never inside the
// parser itself.
func filterHasUpdate(recs []model.PackageRecord) []model.PackageRecord {
	out := make([]model.PackageRecord, 0, len(recs))
	for _, r := range recs {
		if r.HasUpdate() {
			out = append(out, r)
		}
	}
	return out
}

// defaultCommandTimeout bounds an adapter command when ctx carries no Timeout,
// generous enough for cold package-manager caches (first `brew outdated`
// after a tap update) without letting one wedged CLI process starve the
// per-manager queue indefinitely.
const defaultCommandTimeout = 2 * time.Minute

// run executes program with args under ctx's ambient timeout and returns
// stdout, classifying a non-zero exit or spawn failure as a pkgerr error.
func run(ctx Context, program string, args ...string) ([]byte, error) {
	res, err := ctx.Executor.Run(ctx.Context, executor.CommandSpec{
		Program: program,
		Args:    args,
		Timeout: ctx.WithTimeout(defaultCommandTimeout),
	})
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// runLong is like run but, when ctx carries no Timeout, falls back to a
// timeout generous enough for operations that legitimately take minutes
// (Install, Upgrade, SelfUpdate).
func runLong(ctx Context, program string, args ...string) ([]byte, error) {
	res, err := ctx.Executor.Run(ctx.Context, executor.CommandSpec{
		Program: program,
		Args:    args,
		Timeout: ctx.WithTimeout(10 * time.Minute),
	})
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}
