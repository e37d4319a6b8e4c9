// Package pacman parses Arch Linux's pacman package manager text output.
package pacman

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `pacman -Q` output:
//
//	ripgrep 14.1.0-1
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		fields := parseutil.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "pacman",
			Name:             fields[0],
			InstalledVersion: fields[1],
		})
	}
	return out, nil
}

// ParseListOutdated parses `pacman -Qu` output:
//
//	ripgrep 14.1.0-1 -> 14.1.1-1
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		fields := parseutil.Fields(line)
		if len(fields) < 4 || fields[2] != "->" {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "pacman",
			Name:             fields[0],
			InstalledVersion: fields[1],
			LatestVersion:    fields[3],
		})
	}
	return out, nil
}

// ParseDetection parses `pacman --version` output; the version appears on
// a line such as "Pacman v6.0.2 - libalpm v13.0.2".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "pacman", DetectedAt: time.Now()}
	for _, line := range parseutil.Lines(raw) {
		fields := parseutil.Fields(line)
		for _, f := range fields {
			if strings.HasPrefix(f, "v") && strings.Contains(f, ".") {
				rec.Installed = true
				rec.Version = strings.TrimPrefix(f, "v")
				return rec
			}
		}
	}
	return rec
}
