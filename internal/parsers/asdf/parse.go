// Package asdf parses the asdf version manager's plugin-scoped text output.
package asdf

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `asdf list <plugin>` output, one installed
// version per line, with a leading "*" marking the globally selected one:
//
//	 18.19.0
//	*20.11.1
func ParseListInstalled(plugin string, raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, rawLine := range strings.Split(string(raw), "\n") {
		line := strings.TrimSpace(rawLine)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "asdf",
			Name:             plugin,
			InstalledVersion: line,
		})
	}
	return out, nil
}

// ParseListOutdated compares the currently selected version (the
// "*"-prefixed line from `asdf list`, also exposed by `asdf current`) to
// the newest entry returned by `asdf list all <plugin>`, since asdf has no
// single command that reports both in one shot.
func ParseListOutdated(plugin, currentVersion, latestVersion string) []model.PackageRecord {
	if currentVersion == "" || latestVersion == "" {
		return nil
	}
	return []model.PackageRecord{{
		ManagerID:        "asdf",
		Name:             plugin,
		InstalledVersion: currentVersion,
		LatestVersion:    latestVersion,
	}}
}

// ParseLatestAvailable parses `asdf list all <plugin>` output and returns
// the last listed (newest) version.
func ParseLatestAvailable(raw []byte) string {
	lines := parseutil.Lines(raw)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// ParseDetection parses `asdf version` output, e.g. "v0.14.0-xyz".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "asdf", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	rec.Installed = true
	rec.Version = strings.TrimPrefix(parseutil.Fields(line)[0], "v")
	return rec
}
