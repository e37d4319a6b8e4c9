// Package dnf parses Fedora/RHEL's dnf package manager text output.
package dnf

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `dnf list --installed` output:
//
//	Installed Packages
//	vim-enhanced.x86_64    2:8.2.2637-1.fc35    @updates
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		fields := parseutil.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], ".") {
			continue
		}
		name, _, _ := strings.Cut(fields[0], ".")
		out = append(out, model.PackageRecord{
			ManagerID:        "dnf",
			Name:             name,
			InstalledVersion: fields[1],
		})
	}
	return out, nil
}

// ParseListOutdated parses `dnf list --upgrades` output, which shares the
// same columnar shape as ParseListInstalled but lists only upgradable
// packages' new versions; the adapter supplies the currently installed
// version separately since dnf does not print it in this command.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		fields := parseutil.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], ".") {
			continue
		}
		name, _, _ := strings.Cut(fields[0], ".")
		out = append(out, model.PackageRecord{
			ManagerID:     "dnf",
			Name:          name,
			LatestVersion: fields[1],
		})
	}
	return out, nil
}

// ParseDetection parses `dnf --version` output, whose first line is a bare
// version string, e.g. "4.14.0".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "dnf", DetectedAt: time.Now()}
	lines := parseutil.Lines(raw)
	if len(lines) == 0 {
		return rec
	}
	rec.Installed = true
	rec.Version = lines[0]
	return rec
}
