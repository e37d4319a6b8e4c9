// Package composer parses PHP Composer's global-package JSON output.
package composer

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

type composerPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Latest  string `json:"latest"`
}

type composerListOutput struct {
	Installed []composerPackage `json:"installed"`
}

// ParseListInstalled parses `composer global show --format=json` output.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out composerListOutput
	if err := parseutil.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	recs := make([]model.PackageRecord, 0, len(out.Installed))
	for _, pkg := range out.Installed {
		recs = append(recs, model.PackageRecord{
			ManagerID:        "composer",
			Name:             pkg.Name,
			InstalledVersion: strings.TrimPrefix(pkg.Version, "v"),
		})
	}
	return recs, nil
}

// ParseListOutdated parses `composer global outdated --format=json` output,
// which carries the same shape as the list command but with "latest" filled in.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out composerListOutput
	if err := parseutil.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	recs := make([]model.PackageRecord, 0, len(out.Installed))
	for _, pkg := range out.Installed {
		recs = append(recs, model.PackageRecord{
			ManagerID:        "composer",
			Name:             pkg.Name,
			InstalledVersion: strings.TrimPrefix(pkg.Version, "v"),
			LatestVersion:    strings.TrimPrefix(pkg.Latest, "v"),
		})
	}
	return recs, nil
}

// ParseDetection parses `composer --version` output, e.g.
// "Composer version 2.7.1 2024-02-09 15:26:28".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "composer", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	fields := parseutil.Fields(line)
	rec.Installed = true
	if len(fields) >= 3 {
		rec.Version = fields[2]
	}
	return rec
}
