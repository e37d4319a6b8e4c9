// Package gem parses the output of RubyGems' gem manager.
package gem

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `gem list --local` output:
//
//	bundler (2.5.6)
//	rake (13.1.0, 13.0.6)
//
// The first version listed is the newest installed version.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		name, versions, ok := strings.Cut(line, " (")
		if !ok {
			continue
		}
		versions = strings.TrimSuffix(versions, ")")
		first := strings.TrimSpace(strings.Split(versions, ",")[0])
		out = append(out, model.PackageRecord{
			ManagerID:        "gem",
			Name:             strings.TrimSpace(name),
			InstalledVersion: first,
		})
	}
	return out, nil
}

// ParseListOutdated parses `gem outdated` output:
//
//	bundler (2.5.6 < 2.5.7)
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		name, rest, ok := strings.Cut(line, " (")
		if !ok {
			continue
		}
		rest = strings.TrimSuffix(rest, ")")
		parts := strings.Split(rest, "<")
		if len(parts) != 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "gem",
			Name:             strings.TrimSpace(name),
			InstalledVersion: strings.TrimSpace(parts[0]),
			LatestVersion:    strings.TrimSpace(parts[1]),
		})
	}
	return out, nil
}

// ParseDetection parses `gem --version` output, e.g. "3.5.7".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "gem", DetectedAt: time.Now()}
	version := strings.TrimSpace(string(raw))
	if version == "" {
		return rec
	}
	rec.Installed = true
	rec.Version = version
	return rec
}
