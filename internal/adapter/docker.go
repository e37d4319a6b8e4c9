package adapter

import (
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/docker"
)

// Docker wires the Docker Engine image manager. Guarded: removing or
// upgrading an image can affect running containers. No ListOutdated:
// image tags aren't versioned in a way the engine can diff, so the
// manager table declares this gap rather than faking a comparison.
type Docker struct{ Base }

// NewDocker returns the docker adapter.
func NewDocker() *Docker {
	return &Docker{Base{Meta: model.ManagerMeta{
		ID:          "docker",
		DisplayName: "Docker",
		Category:    model.CategoryContainer,
		Authority:   model.AuthorityGuarded,
		Capabilities: model.NewCapabilitySet(
			model.CapDetect, model.CapListInstalled, model.CapSearch,
			model.CapInstall, model.CapUninstall, model.CapUpgrade,
		),
	}}}
}

func (d *Docker) Detect(ctx Context) (model.DetectionRecord, error) {
	out, err := run(ctx, "docker", "--version")
	if err != nil {
		return model.DetectionRecord{ManagerID: "docker"}, nil
	}
	return docker.ParseDetection(out), nil
}

func (d *Docker) ListInstalled(ctx Context) ([]model.PackageRecord, error) {
	out, err := run(ctx, "docker", "image", "ls", "--format", "{{json .}}")
	if err != nil {
		return nil, err
	}
	return docker.ParseListInstalled(out)
}

func (d *Docker) Search(ctx Context, query string) ([]model.SearchResult, error) {
	out, err := run(ctx, "docker", "search", "--format", "{{json .}}", query)
	if err != nil {
		return nil, err
	}
	return docker.ParseSearch(out)
}

func (d *Docker) Install(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "docker", "pull", target)
	return err
}

func (d *Docker) Uninstall(ctx Context, target string) error {
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "docker", "image", "rm", target)
	return err
}

// Upgrade re-pulls target's tag, the closest docker equivalent of an
// upgrade since the CLI has no "upgrade this image" verb of its own. A
// bulk upgrade (target == "") is rejected: with no ListOutdated, there is
// no outdated set to iterate, only every locally cached image, and
// re-pulling all of them unconditionally is not what "upgrade all" means
// elsewhere in this engine.
func (d *Docker) Upgrade(ctx Context, target string) error {
	if target == "" {
		return d.Base.Unsupported(model.CapUpgrade)
	}
	if err := ValidateIdentifier(target); err != nil {
		return err
	}
	_, err := runLong(ctx, "docker", "pull", target)
	return err
}
