// Package snap parses Canonical's snap package manager text output.
package snap

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `snap list` output:
//
//	Name     Version   Rev    Tracking       Publisher   Notes
//	core20   20231027  2264   latest/stable  canonical✓  base
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	lines := parseutil.Lines(raw)
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "Name") {
			continue
		}
		fields := parseutil.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "snap",
			Name:             fields[0],
			InstalledVersion: fields[1],
		})
	}
	return out, nil
}

// ParseListOutdated parses `snap refresh --list` output, which shares
// `snap list`'s columnar shape but lists only packages pending refresh;
// the adapter supplies InstalledVersion from a prior ListInstalled call.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	lines := parseutil.Lines(raw)
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "Name") {
			continue
		}
		fields := parseutil.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:     "snap",
			Name:          fields[0],
			LatestVersion: fields[1],
		})
	}
	return out, nil
}

// ParseDetection parses `snap --version` output, whose first line is e.g.
// "snap    2.61.3".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "snap", DetectedAt: time.Now()}
	lines := parseutil.Lines(raw)
	if len(lines) == 0 {
		return rec
	}
	fields := parseutil.Fields(lines[0])
	if len(fields) < 2 {
		return rec
	}
	rec.Installed = true
	rec.Version = fields[1]
	return rec
}
