// Package flatpak parses Flatpak's tab-separated columnar output.
package flatpak

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
)

// ParseListInstalled parses `flatpak list --app --columns=application,version`
// tab-separated output.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "flatpak",
			Name:             strings.TrimSpace(cols[0]),
			InstalledVersion: strings.TrimSpace(cols[1]),
		})
	}
	return out, nil
}

// ParseListOutdated parses `flatpak remote-ls --updates --app
// --columns=application,version` output; flatpak does not print the
// currently installed version in this command, so the adapter fills
// InstalledVersion in from a prior ParseListInstalled pass.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:     "flatpak",
			Name:          strings.TrimSpace(cols[0]),
			LatestVersion: strings.TrimSpace(cols[1]),
		})
	}
	return out, nil
}

// ParseSearch parses `flatpak search --columns=application,name,version` output.
func ParseSearch(raw []byte) ([]model.SearchResult, error) {
	var out []model.SearchResult
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		out = append(out, model.SearchResult{
			ManagerID: "flatpak",
			Name:      strings.TrimSpace(cols[0]),
		})
	}
	return out, nil
}

// ParseDetection parses `flatpak --version` output, e.g. "Flatpak 1.14.4".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "flatpak", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	fields := strings.Fields(line)
	rec.Installed = true
	if len(fields) >= 2 {
		rec.Version = fields[1]
	}
	return rec
}
