// Package cargo parses the output of Rust's cargo install manager.
package cargo

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `cargo install --list` output:
//
//	ripgrep v14.1.0:
//	    rg
//	bat v0.24.0:
//	    bat
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		if strings.HasPrefix(line, " ") || !strings.Contains(line, " v") {
			continue
		}
		fields := parseutil.Fields(strings.TrimSuffix(line, ":"))
		if len(fields) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "cargo",
			Name:             fields[0],
			InstalledVersion: strings.TrimPrefix(fields[1], "v"),
		})
	}
	return out, nil
}

// ParseInstallUpdateList parses `cargo install-update --list` output:
//
//	Installed Packages
//	v       Name        Project  Installed  Latest  Needs update
//	        ripgrep                14.1.0    14.1.1  Yes
//	        bat                    0.24.0    0.24.0  No
func ParseInstallUpdateList(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range strings.Split(string(raw), "\n") {
		fields := parseutil.Fields(line)
		if len(fields) < 4 || fields[len(fields)-1] != "Yes" && fields[len(fields)-1] != "No" {
			continue
		}
		name := fields[0]
		if name == "Name" {
			continue
		}
		installed := fields[len(fields)-3]
		latest := fields[len(fields)-2]
		out = append(out, model.PackageRecord{
			ManagerID:        "cargo",
			Name:             name,
			InstalledVersion: installed,
			LatestVersion:    latest,
		})
	}
	return out, nil
}

// ParseDetection parses `cargo --version` output, e.g. "cargo 1.76.0 (...)"
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "cargo", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	fields := parseutil.Fields(line)
	rec.Installed = true
	if len(fields) >= 2 {
		rec.Version = fields[1]
	}
	return rec
}
