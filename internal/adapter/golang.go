package adapter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/golang"
)

// Go wires the Go toolchain's `go install` binary management. No
// ListOutdated: `go version -m` reports the installed module version but
// there is no standard command that reports the latest available one
// without a network round trip per binary, so only Detect/ListInstalled/
// Install/Upgrade are declared.
type Go struct{ Base }

// NewGo returns the go adapter.
func NewGo() *Go {
	return &Go{Base{Meta: model.ManagerMeta{
		ID:          "go",
		DisplayName: "Go",
		Category:    model.CategoryLanguage,
		Authority:   model.AuthorityStandard,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapInstall, model.CapUpgrade,
		),
	}}}
}

func (g *Go) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "go", "version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "go"}, nil
	}
	return golang.ParseDetection(out), nil
}

func (g *Go) gobin(ctx Context) (string, error) {
	out, err := run(ctx, "go", "env", "GOBIN")
	if err != nil {
		return "", err
	}
	gobin := strings.TrimSpace(string(out))
	if gobin == "" {
		home, err := run(ctx, "go", "env", "GOPATH")
		if err != nil {
			return "", err
		}
		gobin = strings.TrimSpace(string(home)) + "/bin"
	}
	return gobin, nil
}

// ListInstalled enumerates GOBIN directly (no shell globbing) and runs
// `go version -m` across every regular file found there in one invocation,
// keeping with the executor's literal-argv-only contract.
func (g *Go) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	gobin, err := g.gobin(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(gobin)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var binaries []string
	for _, e := range entries {
		if !e.IsDir() {
			binaries = append(binaries, filepath.Join(gobin, e.Name()))
		}
	}
	if len(binaries) == 0 {
		return nil, nil
	}
	out, err := run(ctx, "go", append([]string{"version", "-m"}, binaries...)...)
	if err != nil {
		return nil, err
	}
	return golang.ParseListInstalled(out)
}

func (g *Go) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "go", "install", target)
	return err
}

func (g *Go) Upgrade(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "go", "install", target+"@latest")
	return err
}
