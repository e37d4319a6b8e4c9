// Package apt parses Debian/Ubuntu's apt package manager output: `apt list
// --installed` and `apt list --upgradable` listings, `apt-cache search`
// results and `apt-get --version`.
package apt

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `apt list --installed` output:
//
//	vim/jammy,now 2:8.2.3995-1ubuntu2.15 amd64 [installed]
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		if strings.HasPrefix(line, "Listing...") {
			continue
		}
		fields := parseutil.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, _, _ := strings.Cut(fields[0], "/")
		out = append(out, model.PackageRecord{
			ManagerID:        "apt",
			Name:             name,
			InstalledVersion: fields[1],
		})
	}
	return out, nil
}

// ParseListOutdated parses `apt list --upgradable` output:
//
//	vim/jammy-updates 2:8.2.3995-1ubuntu2.17 amd64 [upgradable from: 2:8.2.3995-1ubuntu2.15]
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		if strings.HasPrefix(line, "Listing...") {
			continue
		}
		fields := parseutil.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, _, _ := strings.Cut(fields[0], "/")
		latest := fields[1]
		current := latest
		if idx := strings.Index(line, "upgradable from: "); idx >= 0 {
			rest := line[idx+len("upgradable from: "):]
			current = strings.TrimSuffix(rest, "]")
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "apt",
			Name:             name,
			InstalledVersion: current,
			LatestVersion:    latest,
		})
	}
	return out, nil
}

// ParseSearch parses `apt-cache search <query>` output:
//
//	vim - Vi IMproved - enhanced vi editor
func ParseSearch(raw []byte, query string) []model.SearchResult {
	var out []model.SearchResult
	for _, line := range parseutil.Lines(raw) {
		name, desc, _ := strings.Cut(line, " - ")
		out = append(out, model.SearchResult{
			ManagerID:   "apt",
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(desc),
			Query:       query,
		})
	}
	return out
}

// ParseDetection parses `apt-get --version` output, whose first line is
// e.g. "apt 2.4.13 (amd64)".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "apt", DetectedAt: time.Now()}
	lines := parseutil.Lines(raw)
	if len(lines) == 0 {
		return rec
	}
	fields := parseutil.Fields(lines[0])
	rec.Installed = true
	if len(fields) >= 2 {
		rec.Version = fields[1]
	}
	return rec
}
