// Package pipx parses pipx's JSON venv listing. pipx has no dedicated
// outdated command; ListOutdated is implemented by the adapter diffing
// ParseListInstalled against PyPI lookups, so this package carries only
// ParseListInstalled and ParseDetection.
package pipx

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

type pipxVenv struct {
	Metadata struct {
		MainPackage struct {
			Package        string `json:"package"`
			PackageVersion string `json:"package_version"`
		} `json:"main_package"`
	} `json:"metadata"`
}

type pipxListOutput struct {
	Venvs map[string]pipxVenv `json:"venvs"`
}

// ParseListInstalled parses `pipx list --json` output.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out pipxListOutput
	if err := parseutil.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	recs := make([]model.PackageRecord, 0, len(out.Venvs))
	for name, venv := range out.Venvs {
		pkgName := venv.Metadata.MainPackage.Package
		if pkgName == "" {
			pkgName = name
		}
		recs = append(recs, model.PackageRecord{
			ManagerID:        "pipx",
			Name:             pkgName,
			InstalledVersion: venv.Metadata.MainPackage.PackageVersion,
		})
	}
	return recs, nil
}

// ParseDetection parses `pipx --version` output, a bare version string.
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "pipx", DetectedAt: time.Now()}
	version := strings.TrimSpace(string(raw))
	if version == "" {
		return rec
	}
	rec.Installed = true
	rec.Version = version
	return rec
}
